package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/layout/inline"
)

// commandAttrs 解析命令参数并合并样式属性（行内属性优先）。
func commandAttrs(cmd *dsl.Command, allowStyle bool, styles map[string]Style) (string, map[string]string) {
	style, attrs := cmd.Attrs(allowStyle)
	return style, mergeStyleAttributes(style, attrs, styles)
}

func mergeStyleAttributes(style string, attrs map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string, len(attrs))
	if s, ok := styles[style]; ok {
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// parseLength 将长度字符串转为毫米，无单位按毫米处理，无法解析时返回 0。
func parseLength(value string) float64 {
	return ParseRawLengthStr(value).ToMM()
}

// isLength 判断 value 是否为合法长度（用于 margin 等可变参数的截止判断）。
func isLength(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, s := range unitSuffixes {
		v = strings.TrimSuffix(v, s.suffix)
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// parseDimension 支持百分比（相对 reference）与绝对长度。
func parseDimension(value string, reference float64) float64 {
	if num, ok := strings.CutSuffix(strings.TrimSpace(value), "%"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		return reference * f / 100
	}
	return parseLength(value)
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch normalizeAlign(align) {
	case "center":
		return (container - width) / 2
	case "right":
		return container - width
	}
	return 0
}

// normalizeAlign 规范化对齐方式，无法识别时返回空字符串。
func normalizeAlign(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	if v == "middle" {
		v = "center"
	}
	a, err := inline.ParseAlignment(v)
	if err != nil {
		return ""
	}
	return a.String()
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	case "normal":
		return "normal"
	default:
		return "anywhere"
	}
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	rgb, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(rgb >> 16 & 0xff), G: int(rgb >> 8 & 0xff), B: int(rgb & 0xff)}, nil
}

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// resolveColor 优先查找命名颜色，其次解析 #hex，失败时返回 fallback。
func resolveColor(value string, res ResourceSet, fallback Color) Color {
	if value == "" {
		return fallback
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if c, err := parseColor(value); err == nil {
		return c
	}
	return fallback
}

func valueToString(val *dsl.Value) string {
	switch {
	case val == nil:
		return ""
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var sb strings.Builder
		for _, part := range val.Expr.Parts {
			sb.WriteString(part.Value)
		}
		return sb.String()
	}
	return ""
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array == nil {
		if s := valueToString(val); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		if s := valueToString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
