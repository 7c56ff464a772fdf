package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ByLCY/linefold/fonts"
)

// EncodeDebugJSON 将布局结果以缩进 JSON 写入 w，便于调试或可视化。
func EncodeDebugJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteDebugJSON 将布局结果写入 path，必要时创建目录。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	if err := EncodeDebugJSON(f, res); err != nil {
		f.Close()
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return f.Close()
}

// TextRequest 描述一段脱离文档单独排版的纯文本，长度单位为 mm。
type TextRequest struct {
	Content    string
	Width      float64
	Font       FontResource
	Size       float64
	LineHeight string // 例如 1.2x 或 6mm，空值为 1.4x
	Align      string
	Wrap       string
	Segments   int
	OverflowX  bool
}

// ComposeText 对单段文本断行，用于调试断行与对齐结果。
func ComposeText(req TextRequest, opts BuildOptions) (TextBox, error) {
	if opts.Typesetter == nil {
		return TextBox{}, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if req.Width <= 0 {
		return TextBox{}, fmt.Errorf("宽度必须大于 0")
	}
	font := req.Font
	if font.Src == "" {
		font.Src = "embed:" + fonts.Default
	}
	font.Name = defaultFontName
	res := ResourceSet{
		Fonts:  map[string]FontResource{defaultFontName: font},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	env, err := newTypesetContext(res, nil, opts)
	if err != nil {
		return TextBox{}, err
	}

	attrs := map[string]string{"align": req.Align, "line-height": req.LineHeight}
	if req.Size > 0 {
		attrs["size"] = strconv.FormatFloat(req.Size, 'f', -1, 64) + "mm"
	}
	if req.Segments > 1 {
		attrs["segments"] = strconv.Itoa(req.Segments)
	}
	if req.OverflowX {
		attrs["overflow"] = "visible"
	}
	wrap := env.wrap
	if req.Wrap != "" {
		wrap = normalizeWrap(req.Wrap)
	}
	tb, _, err := env.composeTextBox("", attrs, textSource{content: req.Content}, 0, 0, req.Width, wrap)
	return tb, err
}
