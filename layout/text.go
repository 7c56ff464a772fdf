package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/linefold/binding"
	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/layout/inline"
)

// typesetContext 保存一次 Build 中所有段落共用的依赖。
type typesetContext struct {
	res       ResourceSet
	data      any
	ts        Typesetter
	debug     DebugOptions
	logger    *log.Logger
	processor ProcessorMode
	align     string
	wrap      string
}

func newTypesetContext(res ResourceSet, data any, opts BuildOptions) (*typesetContext, error) {
	mode, err := ParseProcessorMode(string(opts.Processor))
	if err != nil {
		return nil, err
	}
	return &typesetContext{
		res:       res,
		data:      data,
		ts:        opts.Typesetter,
		debug:     opts.Debug,
		logger:    opts.logger(),
		processor: mode,
		align:     normalizeAlign(opts.Align),
		wrap:      normalizeWrap(opts.Wrap),
	}, nil
}

func (env *typesetContext) interpolate(s string) string {
	if env.data == nil {
		return s
	}
	return binding.Interpolate(s, env.data)
}

// runStyle 是一段行内内容的字体、字号与颜色，以及对应的测量函数。
type runStyle struct {
	font       string
	fontRes    FontResource
	size       float64 // mm
	lineHeight float64 // mm
	color      Color
	background *Color
	metrics    LineMetrics
	measure    func(string) float64
}

// units 以定点单位测量 s，供 inline 包使用。
func (r *runStyle) units(s string) int64 {
	return inline.FromMM(r.measure(s))
}

// resolveRun 由样式属性得出 run；parent 为空时使用文档默认值。
// 未声明的属性从 parent 继承。
func (env *typesetContext) resolveRun(style string, attrs map[string]string, parent *runStyle) (*runStyle, error) {
	run := &runStyle{font: defaultFontName, size: defaultFontSize, color: defaultTextColor}
	if parent != nil {
		*run = *parent
		run.background = nil
	}

	switch {
	case attrs["font"] != "":
		run.font = attrs["font"]
	case style != "" && env.res.Fonts[style].Name != "":
		run.font = style
	}
	if v := parseLength(attrs["size"]); v > 0 {
		run.size = v
	}
	if spec, ok := ParseLineHeight(attrs["line-height"]); ok {
		run.lineHeight = spec.Resolve(Length{Value: run.size, Unit: UnitMM}, UnitMM)
	} else if parent == nil || attrs["size"] != "" {
		run.lineHeight = run.size * defaultLineHeightFactor
	}
	run.color = resolveColor(attrs["color"], env.res, run.color)
	if v := attrs["background"]; v != "" {
		c := resolveColor(v, env.res, Color{R: 255, G: 255, B: 255})
		run.background = &c
	}

	fontRes, err := resolveFontResource(run.font, env.res)
	if err != nil {
		return nil, err
	}
	run.font, run.fontRes = fontRes.Name, fontRes
	if run.measure, err = env.ts.MeasureText(fontRes, run.size); err != nil {
		return nil, fmt.Errorf("测量字体 %s 失败: %w", run.font, err)
	}
	if run.metrics, err = env.ts.LineMetrics(fontRes, run.size); err != nil {
		return nil, fmt.Errorf("读取字体 %s 度量失败: %w", run.font, err)
	}
	if run.metrics.Height <= 0 {
		run.metrics.Height = run.size
	}
	return run, nil
}

// textSource 是段落内容：DSL 文本块，或一段纯文本。
type textSource struct {
	block   *dsl.Block
	content string
}

// paragraphSettings 是段落级别的排版参数。
type paragraphSettings struct {
	width     float64
	align     inline.Alignment
	wrap      string
	segments  int
	overflowX bool
	mode      ProcessorMode
	ws        inline.Style
}

func (env *typesetContext) settings(attrs map[string]string, width float64, wrap string) (paragraphSettings, error) {
	s := paragraphSettings{width: width, wrap: wrap, segments: 1, mode: env.processor}
	align := normalizeAlign(attrs["align"])
	if align == "" {
		align = env.align
	}
	s.align, _ = inline.ParseAlignment(align)
	if v := attrs["segments"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return s, fmt.Errorf("segments 必须是正整数：%s", v)
		}
		s.segments = n
	}
	s.overflowX = strings.EqualFold(attrs["overflow"], "visible")
	if v := attrs["processor"]; v != "" {
		mode, err := ParseProcessorMode(v)
		if err != nil {
			return s, err
		}
		s.mode = mode
	}
	switch strings.ToLower(attrs["white-space"]) {
	case "pre":
		s.ws = inline.Style{PreserveWhitespace: true}
	case "pre-trim":
		s.ws = inline.Style{PreserveWhitespace: true, TrimContent: true}
	}
	return s, nil
}

// composeTextBox 构建段落并完成断行，返回文本框与总高度（mm）。
func (env *typesetContext) composeTextBox(style string, attrs map[string]string, src textSource, x, y, width float64, wrap string) (TextBox, float64, error) {
	base, err := env.resolveRun(style, attrs, nil)
	if err != nil {
		return TextBox{}, 0, err
	}
	settings, err := env.settings(attrs, width, wrap)
	if err != nil {
		return TextBox{}, 0, err
	}

	pb := newParagraphBuilder(env, base, settings)
	if src.block != nil {
		err = pb.block(src.block, base)
	} else {
		pb.text(env.interpolate(src.content), base)
	}
	if err != nil {
		return TextBox{}, 0, err
	}
	lines, used, err := env.layoutParagraph(pb.finish(), base, settings)
	if err != nil {
		return TextBox{}, 0, err
	}

	total := 0.0
	for i := range lines {
		if i > 0 {
			lines[i].GapBefore = math.Max(base.lineHeight-lines[i].Height, 0)
		}
		total += lines[i].GapBefore + lines[i].Height
	}

	tb := TextBox{
		Content:    pb.plain.String(),
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: base.lineHeight,
		Font:       base.font,
		FontSize:   base.size,
		Color:      base.color,
		Lines:      lines,
		Height:     total,
		Align:      settings.align.String(),
		Wrap:       wrap,
		Segments:   settings.segments,
		Processor:  used,
	}
	if env.debug.RawUnits {
		tb.Debug = &TextBoxDebug{RawUnits: rawUnits(attrs)}
	}
	return tb, total, nil
}

// rawUnits 记录作者书写的字号与行高原始单位。
func rawUnits(attrs map[string]string) *RawUnits {
	size := RawLengthJSON{Value: 12, Unit: "pt"}
	if l := ParseRawLengthStr(attrs["size"]); l.Unit != UnitNone && l.Value > 0 {
		size = RawLengthJSON{Value: l.Value, Unit: UnitToString(l.Unit)}
	}
	lh := RawLineHeightJSON{Kind: "factor", Factor: defaultLineHeightFactor}
	if spec, ok := ParseLineHeight(attrs["line-height"]); ok {
		switch spec.Kind {
		case LineHeightFactor:
			lh = RawLineHeightJSON{Kind: "factor", Factor: spec.Factor}
		case LineHeightAbsolute:
			lh = RawLineHeightJSON{Kind: "absolute", Value: spec.Len.Value, Unit: UnitToString(spec.Len.Unit)}
		}
	}
	return &RawUnits{FontSize: &size, LineHeight: &lh}
}

// naturalWidth 返回文本不折行时最宽一行的宽度（mm）。
func (env *typesetContext) naturalWidth(style string, attrs map[string]string, block *dsl.Block) (float64, error) {
	base, err := env.resolveRun(style, attrs, nil)
	if err != nil {
		return 0, err
	}
	settings, err := env.settings(attrs, 0, "nowrap")
	if err != nil {
		return 0, err
	}
	pb := newParagraphBuilder(env, base, settings)
	if err := pb.block(block, base); err != nil {
		return 0, err
	}
	var widest int64
	for _, seq := range pb.finish() {
		total, _ := chunkWidths(seq)
		widest = max(widest, total)
	}
	return inline.ToMM(widest), nil
}
