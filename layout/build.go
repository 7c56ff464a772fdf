package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ByLCY/linefold/dsl"
)

const blockSpacing = 3.0

// Build 根据 DSL AST 生成页面、段落、图片与表格的布局结果。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	section := firstPage(doc)
	if section == nil {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	env, err := newTypesetContext(res, data, opts)
	if err != nil {
		return nil, err
	}

	pages, err := buildPages(section, env)
	if err != nil {
		return nil, err
	}
	env.logger.Info("layout finished", "doc", doc.Name, "pages", len(pages))
	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      collectMeta(doc),
	}, nil
}

func buildPages(section *dsl.PageSection, env *typesetContext) ([]Page, error) {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return nil, err
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}
	margin := resolveMargin(section.Spec.Params)
	collector := newPageCollector(width, height, margin)

	root := &flowContext{
		env:            env,
		baseX:          margin.Left,
		baseY:          margin.Top,
		width:          width - margin.Left - margin.Right,
		cursorY:        margin.Top,
		collector:      collector,
		margin:         margin,
		allowPageBreak: true,
		textAlign:      env.align,
		textWrap:       env.wrap,
	}
	if err := processBlock(section.Block, root); err != nil {
		return nil, err
	}
	return collector.pages(), nil
}

// processBlock 依次处理 block 内的 flow、absolute、text、image、table 命令，其余命令忽略。
func processBlock(block *dsl.Block, ctx *flowContext) error {
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		var err error
		switch cmd.Name {
		case "flow":
			err = handleFlow(cmd, ctx)
		case "absolute":
			err = handleAbsolute(cmd, ctx)
		case "text":
			err = handleText(cmd, ctx)
		case "image":
			err = handleImage(cmd, ctx)
		case "table":
			err = handleTable(cmd, ctx)
		default:
			ctx.env.logger.Debug("ignoring command", "name", cmd.Name, "pos", cmd.Pos)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func handleFlow(cmd *dsl.Command, parent *flowContext) error {
	if cmd.Block == nil {
		return fmt.Errorf("flow 语句缺少子内容")
	}
	_, attrs := commandAttrs(cmd, false, parent.env.res.Styles)
	align := normalizeAlign(attrs["align"])
	width := parent.width
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, parent.width); w > 0 && w <= parent.width {
			width = w
		}
	} else if align == "center" || align == "right" {
		inferred, err := inferFlowWidth(cmd.Block, parent)
		if err != nil {
			return err
		}
		if inferred > 0 {
			width = math.Min(inferred, parent.width)
		}
	}

	child := parent.child(parent.baseX+alignOffset(parent.width, width, align), parent.cursorY, width)
	if align != "" {
		child.textAlign = align
	}
	if v := attrs["wrap"]; v != "" {
		child.textWrap = normalizeWrap(v)
	}
	if err := processBlock(cmd.Block, child); err != nil {
		return err
	}
	if child.cursorY > parent.cursorY {
		parent.cursorY = child.cursorY + blockSpacing
	}
	return nil
}

func handleAbsolute(cmd *dsl.Command, parent *flowContext) error {
	if cmd.Block == nil {
		return fmt.Errorf("absolute 语句缺少子内容")
	}
	_, attrs := commandAttrs(cmd, false, parent.env.res.Styles)
	width := parent.width
	if w := parseDimension(attrs["width"], parent.width); w > 0 {
		width = w
	}
	x := parent.baseX + parseDimension(attrs["x"], parent.width)
	y := parent.baseY + parseDimension(attrs["y"], parent.width)
	child := parent.child(x, y, width)
	child.allowPageBreak = false
	return processBlock(cmd.Block, child)
}

func handleText(cmd *dsl.Command, ctx *flowContext) error {
	if cmd.Block == nil || len(cmd.Block.Statements) == 0 {
		return fmt.Errorf("%s: text 语句缺少文本内容", cmd.Pos)
	}
	style, attrs := commandAttrs(cmd, true, ctx.env.res.Styles)
	if normalizeAlign(attrs["align"]) == "" && ctx.textAlign != "" {
		attrs["align"] = ctx.textAlign
	}
	wrap := ctx.textWrap
	if v := attrs["wrap"]; v != "" {
		wrap = normalizeWrap(v)
	}
	width := ctx.width
	if w := parseDimension(attrs["width"], ctx.width); w > 0 && w < width {
		width = w
	}

	tb, height, err := ctx.env.composeTextBox(style, attrs, textSource{block: cmd.Block}, ctx.baseX, ctx.cursorY, width, wrap)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Pos, err)
	}
	ctx.ensureSpace(height)
	tb.X, tb.Y = ctx.baseX, ctx.cursorY
	ctx.acc().texts = append(ctx.acc().texts, tb)
	ctx.cursorY += height + blockSpacing
	return nil
}

func handleImage(cmd *dsl.Command, ctx *flowContext) error {
	name, attrs := commandAttrs(cmd, true, ctx.env.res.Styles)
	if v := attrs["image"]; v != "" {
		name = v
	}
	if v := attrs["src"]; v != "" {
		name = v
	}
	if name == "" {
		name = cmd.Arg(0)
	}

	img := ImageBox{Path: name, Fit: attrs["fit"], Opacity: 1}
	if v, err := strconv.ParseFloat(attrs["opacity"], 64); err == nil {
		img.Opacity = v
	}
	if r, ok := ctx.env.res.Images[name]; ok {
		if r.Src != "" {
			img.Path = r.Src
		}
		img.Width, img.Height = r.Width, r.Height
	}
	if w := parseDimension(attrs["width"], ctx.width); w > 0 {
		img.Width = w
	}
	if h := parseDimension(attrs["height"], ctx.width); h > 0 {
		img.Height = h
	}
	if img.Width == 0 {
		img.Width = ctx.width
		if img.Width <= 0 {
			img.Width = 40
		}
	}
	if img.Height == 0 {
		img.Height = img.Width * 0.6
	}
	if img.Path == "" {
		return fmt.Errorf("%s: image 语句缺少资源或 src", cmd.Pos)
	}

	ctx.ensureSpace(img.Height)
	img.X, img.Y = ctx.baseX, ctx.cursorY
	ctx.acc().images = append(ctx.acc().images, img)
	ctx.cursorY += img.Height + blockSpacing
	return nil
}

// inferFlowWidth 估算 flow 内容的自然宽度，用于居中/右对齐的 flow 收缩宽度。
func inferFlowWidth(block *dsl.Block, ctx *flowContext) (float64, error) {
	if block == nil {
		return 0, nil
	}
	var width float64
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		var w float64
		switch cmd.Name {
		case "text":
			style, attrs := commandAttrs(cmd, true, ctx.env.res.Styles)
			if v := attrs["width"]; v != "" {
				w = parseDimension(v, ctx.width)
				break
			}
			var err error
			if w, err = ctx.env.naturalWidth(style, attrs, cmd.Block); err != nil {
				return 0, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
		case "flow":
			var err error
			if w, err = inferFlowWidth(cmd.Block, ctx); err != nil {
				return 0, err
			}
		case "image", "table":
			_, attrs := cmd.Attrs(cmd.Name == "image")
			w = parseDimension(attrs["width"], ctx.width)
		}
		width = max(width, w)
	}
	return width, nil
}
