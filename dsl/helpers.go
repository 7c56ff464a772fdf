package dsl

import "strings"

// Commands returns the commands named name directly inside b, in order.
func (b *Block) Commands(name string) []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, st := range b.Statements {
		if st.Command != nil && st.Command.Name == name {
			out = append(out, st.Command)
		}
	}
	return out
}

// Texts 拼接 b 中直接出现的文本字面量（不含子命令中的文本）。
func (b *Block) Texts() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, st := range b.Statements {
		if st.Text != nil {
			sb.WriteString(string(st.Text.Value))
		}
	}
	return sb.String()
}

// Attrs 将参数拆成可选的样式名与 key/value 属性。
// 当 allowStyle 为真、参数个数为奇数且首个参数是标识符时，首个参数视为样式名。
// 末尾落单的 key 会被忽略。
func (c *Command) Attrs(allowStyle bool) (string, map[string]string) {
	attrs := map[string]string{}
	if c == nil || len(c.Args) == 0 {
		return "", attrs
	}
	args := c.Args
	var style string
	if allowStyle && len(args)%2 == 1 && args[0].IsIdent() {
		style = args[0].Value
		args = args[1:]
	}
	for i := 0; i+1 < len(args); i += 2 {
		attrs[args[i].Value] = args[i+1].Value
	}
	return style, attrs
}

// Arg returns the value of the i-th argument or "" when absent.
func (c *Command) Arg(i int) string {
	if c == nil || i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i].Value
}
