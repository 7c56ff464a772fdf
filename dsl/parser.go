// Package dsl 解析 linefold 文档描述语言。
package dsl

import (
	"io"

	"github.com/alecthomas/participle/v2"
)

var documentParser = participle.MustBuild[Document](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
)

// Parse parses a document from r.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a document held in a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
