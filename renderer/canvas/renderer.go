package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/linefold/fonts"
	"github.com/ByLCY/linefold/layout"
	"github.com/ByLCY/linefold/renderer"
)

const tableBorderWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	logger     *log.Logger
	fontStore  *assetStore
	imageStore *assetStore

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Logger  *log.Logger
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{
		logger:       logger,
		fontStore:    newFontStore(opts.BaseDir, opts.Fonts, logger),
		imageStore:   newImageStore(opts.BaseDir, opts.Images, logger),
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// MeasureText 实现 layout.Typesetter：返回给定字体与字号（mm）下的文本宽度函数（mm）。
// canvas 的字体面以 pt 创建，TextWidth 的结果已经是 mm。
func (r *Renderer) MeasureText(font layout.FontResource, fontSize float64) (func(string) float64, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return nil, err
	}
	return face.TextWidth, nil
}

// LineMetrics 实现 layout.Typesetter：返回字体的上升部、下降部与行高（mm）。
func (r *Renderer) LineMetrics(font layout.FontResource, fontSize float64) (layout.LineMetrics, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return layout.LineMetrics{}, err
	}
	m := face.Metrics()
	height := m.LineHeight
	if height <= 0 {
		height = fontSize
	}
	return layout.LineMetrics{Ascent: m.Ascent, Descent: math.Abs(m.Descent), Height: height}, nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	for _, textBox := range page.Texts {
		if err := r.drawTextBox(ctx, textBox, resources.Fonts); err != nil {
			return err
		}
	}
	if err := r.drawImages(ctx, page.Images); err != nil {
		return err
	}
	return r.drawTables(ctx, page.Tables, resources.Fonts)
}

// drawTextBox 按行绘制已定位的片段：先画行内盒背景，再画文字。
// 片段 X 相对 TextBox.X，基线为行顶加该行的上升部。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fonts map[string]layout.FontResource) error {
	cursorY := tb.Y
	for _, line := range tb.Lines {
		cursorY += line.GapBefore
		baseline := cursorY + line.Ascent
		for _, frag := range line.Fragments {
			x := tb.X + frag.X
			switch frag.Kind {
			case layout.FragmentSpan:
				if frag.Background != nil {
					fillRect(ctx, x, cursorY, frag.Width, line.Height, *frag.Background)
				}
			case layout.FragmentBlock:
				if frag.Background != nil {
					fillRect(ctx, x, cursorY, frag.Width, line.Height, *frag.Background)
				}
				if frag.Border > 0 {
					ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
					ctx.SetStrokeColor(colorFromLayout(frag.Color))
					ctx.SetStrokeWidth(frag.Border)
					ctx.DrawPath(x+frag.Border/2, cursorY+frag.Border/2, canvas.Rectangle(frag.Width-frag.Border, line.Height-frag.Border))
				}
				if err := r.drawRun(ctx, frag, x+frag.ContentOffset, baseline, fonts); err != nil {
					return err
				}
			default:
				if err := r.drawRun(ctx, frag, x, baseline, fonts); err != nil {
					return err
				}
			}
		}
		cursorY += line.Height
	}
	return nil
}

func (r *Renderer) drawRun(ctx *canvas.Context, frag layout.TextFragment, x, baseline float64, fonts map[string]layout.FontResource) error {
	if frag.Content == "" {
		return nil
	}
	face, err := r.fontFace(resolveFontResource(frag.Font, fonts), toPt(frag.FontSize), frag.Color)
	if err != nil {
		return err
	}
	ctx.DrawText(x, baseline, canvas.NewTextLine(face, frag.Content, canvas.Left))
	return nil
}

func fillRect(ctx *canvas.Context, x, y, w, h float64, c layout.Color) {
	ctx.SetFillColor(colorFromLayout(c))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, img := range images {
		if img.Path == "" {
			continue
		}
		data, err := r.decodeImage(img.Path)
		if err != nil {
			return err
		}
		// 未指定宽度时按 4 像素/mm 计算
		width := img.Width
		if width <= 0 {
			width = 40.0
			if px := data.Bounds().Dx(); px > 0 {
				width = float64(px) / 4.0
			}
		}
		dpmm := float64(data.Bounds().Dx()) / width
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(img.X, img.Y, data, canvas.DPMM(dpmm))
	}
	return nil
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox, fonts map[string]layout.FontResource) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		for _, row := range table.Rows {
			x := table.X
			for idx, cell := range row.Cells {
				colIdx := idx
				if colIdx >= len(table.ColumnWidths) {
					colIdx = len(table.ColumnWidths) - 1
				}
				colWidth := table.ColumnWidths[colIdx]
				fill := canvas.White
				if row.IsHeader {
					fill = canvas.Hex("#f8f8f8")
				}
				ctx.SetFillColor(fill)
				ctx.SetStrokeColor(colorFromLayout(table.BorderColor))
				ctx.SetStrokeWidth(tableBorderWidth)
				ctx.DrawPath(x, row.Y, canvas.Rectangle(colWidth, row.Height))

				textBox := cell.Text
				textBox.X += tableBorderWidth
				textBox.Y += tableBorderWidth
				if err := r.drawTextBox(ctx, textBox, fonts); err != nil {
					return err
				}
				x += colWidth
			}
		}
	}
	return nil
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback(font.Fallback)
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.logger.Warn("font unavailable, using fallback", "font", font.Name, "src", font.Src, "fallback", font.Fallback, "err", err)
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

// fallback 加载内嵌的后备字体；name 为空或无法加载时使用默认字体。
func (r *Renderer) fallback(name string) (*canvas.FontFamily, canvas.FontStyle, error) {
	if name != "" {
		if data, err := fonts.Load(name); err == nil {
			family := canvas.NewFontFamily(name)
			if err := family.LoadFont(data, 0, canvas.FontRegular); err == nil {
				return family, canvas.FontRegular, nil
			}
		}
	}
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("linefold-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func resolveFontResource(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	for _, font := range fonts {
		return font
	}
	return layout.FontResource{}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") || strings.Contains(style, "I") {
		result |= canvas.FontItalic
	}
	if strings.Contains(style, "B") && !strings.Contains(s, "bold") {
		result = canvas.FontBold | (result & canvas.FontItalic)
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
