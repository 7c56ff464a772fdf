package dsl

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames = invertSymbols(dslLexer.Symbols())

	newlineToken = mustTokenType("Newline")
	lbraceToken  = mustTokenType("LBrace")
	rbraceToken  = mustTokenType("RBrace")
	symbolToken  = mustTokenType("Symbol")
	stringToken  = mustTokenType("String")
)

// Lexeme 是命令参数或表达式中的单个词法单元。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if endsArgs(lex.Peek()) {
		return participle.NextMatch
	}
	lexeme, err := consumeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *lexeme
	return nil
}

// IsIdent reports whether the lexeme is a bare identifier.
func (l *Lexeme) IsIdent() bool { return l != nil && l.Type == "Ident" }

// IsNumber reports whether the lexeme is a number, optionally with a unit.
func (l *Lexeme) IsNumber() bool { return l != nil && l.Type == "Number" }

// consumeLexeme 读取下一个 token 并转换为 Lexeme，字符串会被反转义。
func consumeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	val := tok.Value
	if tok.Type == stringToken {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: 字符串无法解析: %w", tok.Pos, err)
		}
		val = unquoted
	}
	return &Lexeme{Type: name, Value: val, Raw: tok.Value, Pos: tok.Pos}, nil
}

// endsArgs 判断命令参数是否在此结束：换行、花括号或分号。
func endsArgs(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineToken, rbraceToken, lbraceToken:
		return true
	case symbolToken:
		return tok.Value == ";"
	}
	return false
}

// endsExpression 判断表达式是否结束；括号内的换行与逗号不结束表达式。
func endsExpression(tok *lexer.Token, parens, brackets int) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	nested := parens > 0 || brackets > 0
	switch tok.Type {
	case newlineToken, rbraceToken, lbraceToken:
		return !nested
	case symbolToken:
		switch tok.Value {
		case ";", ",":
			return !nested
		case "]":
			return brackets == 0
		}
	}
	return false
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}

func mustTokenType(name string) lexer.TokenType {
	tt, ok := dslLexer.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
