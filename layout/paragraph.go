package layout

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/layout/inline"
)

// blockPayload 是行内块（box 命令）携带的内容。
type blockPayload struct {
	content string
	run     *runStyle
}

// paragraphBuilder 把文本块转换为 inline.Sequence，每个强制换行开始一个新序列。
type paragraphBuilder struct {
	env      *typesetContext
	settings paragraphSettings
	seqs     []*inline.Sequence
	cur      *inline.Sequence
	open     []*inline.Box // 当前打开的盒子，open[0] 为段落盒
	plain    strings.Builder
}

func newParagraphBuilder(env *typesetContext, base *runStyle, settings paragraphSettings) *paragraphBuilder {
	root := inline.NewBox("p", settings.ws)
	root.Payload = base
	return &paragraphBuilder{
		env:      env,
		settings: settings,
		cur:      inline.NewSequence().Start(root),
		open:     []*inline.Box{root},
	}
}

// block 依次处理文本字面量与行内命令 span/box/space/br，其余命令忽略。
func (pb *paragraphBuilder) block(b *dsl.Block, run *runStyle) error {
	if b == nil {
		return nil
	}
	for _, st := range b.Statements {
		if st.Text != nil {
			pb.text(pb.env.interpolate(string(st.Text.Value)), run)
			continue
		}
		cmd := st.Command
		if cmd == nil {
			continue
		}
		var err error
		switch cmd.Name {
		case "span":
			err = pb.span(cmd, run)
		case "box":
			err = pb.inlineBlock(cmd, run)
		case "space":
			w := parseDimension(cmd.Arg(0), pb.settings.width)
			if w <= 0 {
				return fmt.Errorf("%s: space 需要正的宽度", cmd.Pos)
			}
			sp := inline.NewSpacer(inline.FromMM(w), pb.settings.ws)
			sp.Payload = run
			pb.cur.Content(sp)
			pb.plain.WriteByte(' ')
		case "br":
			pb.hardBreak()
			pb.plain.WriteByte('\n')
		default:
			pb.env.logger.Debug("ignoring inline command", "name", cmd.Name, "pos", cmd.Pos)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (pb *paragraphBuilder) span(cmd *dsl.Command, parent *runStyle) error {
	style, attrs := commandAttrs(cmd, true, pb.env.res.Styles)
	run, err := pb.env.resolveRun(style, attrs, parent)
	if err != nil {
		return fmt.Errorf("%s: span: %w", cmd.Pos, err)
	}
	box := inline.NewBox("span", pb.settings.ws)
	box.Payload = run
	applyInsets(box, attrs)
	pb.cur.Start(box)
	pb.open = append(pb.open, box)
	if err := pb.block(cmd.Block, run); err != nil {
		return err
	}
	// 中途的强制换行可能已把盒子替换为续接盒
	pb.cur.End(pb.open[len(pb.open)-1])
	pb.open = pb.open[:len(pb.open)-1]
	return nil
}

func (pb *paragraphBuilder) inlineBlock(cmd *dsl.Command, parent *runStyle) error {
	style, attrs := commandAttrs(cmd, true, pb.env.res.Styles)
	run, err := pb.env.resolveRun(style, attrs, parent)
	if err != nil {
		return fmt.Errorf("%s: box: %w", cmd.Pos, err)
	}
	content := norm.NFC.String(pb.env.interpolate(cmd.Block.Texts()))
	width := parseDimension(attrs["width"], pb.settings.width)
	if width <= 0 {
		width = run.measure(content)
	}
	if width <= 0 {
		return fmt.Errorf("%s: box 需要内容或正的 width", cmd.Pos)
	}
	box := inline.NewInlineBlock("box", 0, pb.settings.ws)
	box.Payload = &blockPayload{content: content, run: run}
	applyInsets(box, attrs)
	box.SetWidth(inline.FromMM(width) + box.LeadingInset() + box.TrailingInset())
	pb.cur.Content(box)
	pb.plain.WriteString(content)
	return nil
}

// applyInsets 读取 margin/border/padding，左右两侧取相同的值。
func applyInsets(b *inline.Box, attrs map[string]string) {
	side := func(key string) inline.Insets {
		v := inline.FromMM(parseLength(attrs[key]))
		return inline.Insets{Left: v, Right: v}
	}
	b.Margin = side("margin")
	b.Border = side("border")
	b.Padding = side("padding")
}

// text 将一段文本按 UAX #14 断行机会切成单词与空白。
func (pb *paragraphBuilder) text(s string, run *runStyle) {
	s = norm.NFC.String(s)
	pb.plain.WriteString(s)
	if pb.settings.wrap == "break-word" {
		pb.graphemes(s, run)
		return
	}
	state := -1
	for len(s) > 0 {
		var segment string
		segment, s, _, state = uniseg.FirstLineSegmentInString(s, state)
		word := strings.TrimRightFunc(segment, isBreakingSpace)
		gap := segment[len(word):]
		if word != "" {
			pb.word(word, run)
		}
		if blank := strings.TrimRightFunc(gap, isNewline); blank != "" {
			pb.space(blank, run)
		}
		if strings.IndexFunc(gap, isNewline) >= 0 {
			pb.hardBreak()
		}
	}
}

// graphemes 逐个字素簇放置，任意两个字素之间都可以断行。
func (pb *paragraphBuilder) graphemes(s string, run *runStyle) {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		if strings.IndexFunc(cluster, isNewline) >= 0 {
			pb.hardBreak()
			continue
		}
		t := inline.NewText(cluster, run.units(cluster), pb.settings.ws)
		t.Payload = run
		pb.cur.Content(t)
	}
}

func (pb *paragraphBuilder) word(w string, run *runStyle) {
	var t *inline.Text
	if pb.settings.wrap == "anywhere" {
		t = inline.NewMeasuredText(w, pb.settings.ws, run.units)
	} else {
		t = inline.NewText(w, run.units(w), pb.settings.ws)
	}
	t.Payload = run
	pb.cur.Content(t)
}

// space 追加空白；非保留空白模式下连续空白折叠为一个空格宽度。
func (pb *paragraphBuilder) space(blank string, run *runStyle) {
	if !pb.settings.ws.PreserveWhitespace {
		if n := pb.cur.Len(); n > 0 && pb.cur.Node(n-1).Kind() == inline.KindSpacer {
			return
		}
		blank = " "
	}
	sp := inline.NewSpacer(run.units(blank), pb.settings.ws)
	sp.Payload = run
	pb.cur.Content(sp)
}

// hardBreak 结束当前序列：关闭所有打开的盒子，并在新序列中以续接盒重新打开。
func (pb *paragraphBuilder) hardBreak() {
	for i := len(pb.open) - 1; i >= 0; i-- {
		pb.cur.End(pb.open[i])
	}
	pb.seqs = append(pb.seqs, pb.cur)
	pb.cur = inline.NewSequence()
	for i, b := range pb.open {
		pb.open[i] = b.Split()
		pb.cur.Start(pb.open[i])
	}
}

// finish 关闭段落并返回所有序列。
func (pb *paragraphBuilder) finish() []*inline.Sequence {
	for i := len(pb.open) - 1; i >= 0; i-- {
		pb.cur.End(pb.open[i])
	}
	pb.open = nil
	return append(pb.seqs, pb.cur)
}

func isNewline(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isBreakingSpace 不包含不换行空格。
func isBreakingSpace(r rune) bool {
	return unicode.IsSpace(r) && r != '\u00a0' && r != '\u2007' && r != '\u202f'
}

// chunkWidths 返回序列所有块的总宽度与最宽的块。
func chunkWidths(seq *inline.Sequence) (total, widest int64) {
	for it := inline.NewChunkIterator(seq, 0); it.HasNext(); {
		c := it.Next()
		total += c.Width()
		widest = max(widest, c.Width())
	}
	return total, widest
}

// layoutParagraph 对每个序列断行并生成行，返回实际使用的断行器名称。
func (env *typesetContext) layoutParagraph(seqs []*inline.Sequence, base *runStyle, s paragraphSettings) ([]TextLine, string, error) {
	end := inline.FromMM(s.width)
	widest := int64(0)
	natural := int64(0)
	for _, seq := range seqs {
		total, w := chunkWidths(seq)
		widest = max(widest, w)
		natural = max(natural, total)
	}
	if s.wrap == "nowrap" {
		end = max(end, natural)
	}

	lp, name := env.lineProcessor(s, widest, end)
	meta := inline.Metadata{Logger: env.logger}
	var grid inline.PageGrid = inline.Grid{}
	if s.segments > 1 {
		grid = inline.UniformGrid(0, end, s.segments)
	}

	var out []TextLine
	for _, seq := range seqs {
		if err := lp.Initialize(meta, seq, 0, end, grid, s.overflowX); err != nil {
			return nil, name, err
		}
		boxes, err := inline.CollectLines(lp)
		lp.Deinitialize()
		if err != nil {
			return nil, name, fmt.Errorf("段落断行失败: %w", err)
		}
		for _, box := range boxes {
			out = append(out, toTextLine(box, base))
		}
	}
	env.logger.Debug("paragraph laid out", "lines", len(out), "processor", name, "align", s.align, "segments", s.segments)
	return out, name, nil
}

// lineProcessor 选择断行器：左对齐、单段且没有超宽块时可以使用快速断行器。
// 快速断行器不接受恰好落在行尾的块，nowrap 只用完整断行器。
func (env *typesetContext) lineProcessor(s paragraphSettings, widest, end int64) (inline.LineProcessor, string) {
	eligible := s.align == inline.AlignLeft && s.segments <= 1 && s.wrap != "nowrap"
	switch {
	case eligible && s.mode == ProcessorFast:
		return inline.NewFastProcessor(), "fast"
	case eligible && s.mode == ProcessorAuto && widest < end:
		return inline.NewFastProcessor(), "fast"
	case s.mode == ProcessorFast:
		env.logger.Debug("fast processor unavailable, using full", "align", s.align, "segments", s.segments, "wrap", s.wrap)
	}
	return inline.NewProcessor(s.align), "full"
}

// toTextLine 将行盒树展平为带坐标的片段。
func toTextLine(line *inline.Box, base *runStyle) TextLine {
	var (
		tl    TextLine
		words strings.Builder
		seen  bool
	)
	measure := func(run *runStyle) {
		tl.Height = max(tl.Height, run.metrics.Height)
		tl.Ascent = max(tl.Ascent, run.metrics.Ascent)
		seen = true
	}
	line.Walk(func(n inline.Node, depth int) bool {
		switch v := n.(type) {
		case *inline.Text:
			run := v.Payload.(*runStyle)
			tl.Fragments = append(tl.Fragments, TextFragment{
				Kind:     FragmentText,
				Content:  v.Value,
				X:        inline.ToMM(v.X()),
				Width:    inline.ToMM(v.Width()),
				Font:     run.font,
				FontSize: run.size,
				Color:    run.color,
			})
			words.WriteString(v.Value)
			measure(run)
		case *inline.Spacer:
			if words.Len() > 0 {
				words.WriteByte(' ')
			}
		case *inline.Box:
			if blk, ok := v.Payload.(*blockPayload); ok {
				tl.Fragments = append(tl.Fragments, TextFragment{
					Kind:          FragmentBlock,
					Content:       blk.content,
					X:             inline.ToMM(v.X() + v.Margin.Left),
					Width:         inline.ToMM(v.Width() - v.Margin.Left - v.Margin.Right),
					Font:          blk.run.font,
					FontSize:      blk.run.size,
					Color:         blk.run.color,
					Background:    blk.run.background,
					Border:        inline.ToMM(v.Border.Left),
					ContentOffset: inline.ToMM(v.Border.Left + v.Padding.Left),
				})
				words.WriteString(blk.content)
				measure(blk.run)
				return false
			}
			if run, ok := v.Payload.(*runStyle); ok && run.background != nil && v.Width() > 0 {
				tl.Fragments = append(tl.Fragments, TextFragment{
					Kind:       FragmentSpan,
					X:          inline.ToMM(v.X() + v.Margin.Left),
					Width:      inline.ToMM(v.Width() - v.Margin.Left - v.Margin.Right),
					Color:      run.color,
					Background: run.background,
					Continued:  v.Continued,
				})
			}
		}
		return true
	})
	if !seen {
		measure(base)
	}
	for _, f := range tl.Fragments {
		tl.Width = max(tl.Width, f.X+f.Width)
	}
	tl.Content = strings.TrimRight(words.String(), " ")
	return tl
}
