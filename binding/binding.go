// Package binding 将 ${path} 占位符替换为数据中的值。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Interpolate 将 text 中的 ${a.b[0].c} 替换为 data 中对应的值。
// data 为空或路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholder.FindStringSubmatch(match)[1]
		if path == "" {
			return match
		}
		val, ok := Lookup(data, path)
		if !ok {
			return match
		}
		return format(val)
	})
}

// Lookup 按点号与下标路径在 JSON 风格的数据（map[string]any / []any）中取值。
func Lookup(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, s := range steps {
		switch c := current.(type) {
		case map[string]any:
			if s.index >= 0 {
				return nil, false
			}
			if current, ok = c[s.key]; !ok {
				return nil, false
			}
		case []any:
			if s.index < 0 || s.index >= len(c) {
				return nil, false
			}
			current = c[s.index]
		default:
			return nil, false
		}
	}
	return current, true
}

// step 是路径中的一步：键名或数组下标（index >= 0）。
type step struct {
	key   string
	index int
}

func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		}
		if rest == "" {
			if name == "" {
				return nil, false
			}
			continue
		}
		for _, part := range strings.Split("["+rest, "[")[1:] {
			raw, tail, found := strings.Cut(part, "]")
			if !found || tail != "" {
				return nil, false
			}
			idx, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || idx < 0 {
				return nil, false
			}
			steps = append(steps, step{index: idx})
		}
	}
	return steps, len(steps) > 0
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
