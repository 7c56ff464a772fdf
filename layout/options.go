package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与日志。
type BuildOptions struct {
	Typesetter Typesetter
	Debug      DebugOptions
	// Logger 为空时不输出任何日志。
	Logger *log.Logger
	// Processor 选择段落断行器，默认 auto。
	Processor ProcessorMode
	// Align/Wrap 是未声明 align/wrap 的段落所使用的默认值。
	Align string
	Wrap  string
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// ProcessorMode 决定段落使用哪个断行器。
type ProcessorMode string

const (
	// ProcessorAuto 在左对齐、单段且没有超宽单词时使用快速断行器。
	ProcessorAuto ProcessorMode = "auto"
	// ProcessorFull 总是使用支持全部对齐方式的断行器。
	ProcessorFull ProcessorMode = "full"
	// ProcessorFast 在条件允许时总是使用快速断行器。
	ProcessorFast ProcessorMode = "fast"
)

// ParseProcessorMode 解析配置或 DSL 中的断行器名称，空字符串视为 auto。
func ParseProcessorMode(s string) (ProcessorMode, error) {
	switch m := ProcessorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ProcessorAuto, nil
	case ProcessorAuto, ProcessorFull, ProcessorFast:
		return m, nil
	}
	return ProcessorAuto, fmt.Errorf("未知的断行器 %q（可选 auto/full/fast）", s)
}

// LineMetrics 是某个字体与字号下的行度量（mm）。
type LineMetrics struct {
	Ascent  float64
	Descent float64
	Height  float64
}

// Typesetter 提供文本测量能力，断行与对齐由 layout/inline 完成。
type Typesetter interface {
	// MeasureText 返回给定字体与字号（mm）下测量字符串宽度（mm）的函数。
	MeasureText(font FontResource, fontSize float64) (func(string) float64, error)
	// LineMetrics 返回给定字体与字号（mm）下的行度量。
	LineMetrics(font FontResource, fontSize float64) (LineMetrics, error)
}

func (o BuildOptions) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}
