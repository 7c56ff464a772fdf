package layout

// pageAccumulator 收集同一页上的元素。
type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	tables []TableBox
}

type pageCollector struct {
	width  float64
	height float64
	margin Margin
	accs   []*pageAccumulator
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{width: width, height: height, margin: margin}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	return pc.accs[len(pc.accs)-1]
}

// contentBottom 是可用内容区域的底部（页面高度减下边距）。
func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Images: acc.images,
			Tables: acc.tables,
		}
	}
	return out
}

// flowContext 是纵向排版的游标，flow/absolute 会派生子上下文。
type flowContext struct {
	env            *typesetContext
	baseX          float64
	baseY          float64
	width          float64
	cursorY        float64
	parent         *flowContext
	collector      *pageCollector
	margin         Margin
	allowPageBreak bool
	// textAlign/textWrap 供未显式声明 align/wrap 的子 text 继承。
	textAlign string
	textWrap  string
}

func (ctx *flowContext) child(x, y, width float64) *flowContext {
	return &flowContext{
		env:            ctx.env,
		baseX:          x,
		baseY:          y,
		width:          width,
		cursorY:        y,
		parent:         ctx,
		collector:      ctx.collector,
		margin:         ctx.margin,
		allowPageBreak: ctx.allowPageBreak,
		textAlign:      ctx.textAlign,
		textWrap:       ctx.textWrap,
	}
}

// ensureSpace 在剩余空间不足 height 时换页；位于页顶时不再换页。
func (ctx *flowContext) ensureSpace(height float64) {
	if !ctx.allowPageBreak || ctx.cursorY+height <= ctx.collector.contentBottom() {
		return
	}
	if ctx.cursorY <= ctx.margin.Top {
		return
	}
	ctx.pageBreak()
}

func (ctx *flowContext) pageBreak() {
	if ctx.parent != nil {
		ctx.parent.pageBreak()
		ctx.baseY = ctx.parent.cursorY
		ctx.cursorY = ctx.baseY
		return
	}
	ctx.collector.newPage()
	ctx.env.logger.Debug("page break", "page", len(ctx.collector.accs))
	ctx.baseX = ctx.margin.Left
	ctx.baseY = ctx.margin.Top
	ctx.cursorY = ctx.baseY
}

func (ctx *flowContext) acc() *pageAccumulator {
	return ctx.collector.curr()
}
