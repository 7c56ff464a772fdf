package canvasrenderer

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/layout"
)

var bodyFont = layout.FontResource{Name: "Body", Src: "embed:lmroman10-regular"}

func TestMeasureTextScalesWithSize(t *testing.T) {
	r := NewRenderer(".")
	small, err := r.MeasureText(bodyFont, 12*layout.PtToMm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := r.MeasureText(bodyFont, 24*layout.PtToMm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := small("hello world")
	if w <= 0 {
		t.Fatalf("expected positive width, got %g", w)
	}
	if ratio := large("hello world") / w; math.Abs(ratio-2) > 0.05 {
		t.Fatalf("width should scale with font size, ratio=%g", ratio)
	}
	if small("") != 0 {
		t.Fatalf("empty text must have zero width")
	}
}

// TestLineMetricsInvariant 验证：行高不小于上升部与下降部之和的近似值，且均为正。
func TestLineMetricsInvariant(t *testing.T) {
	r := NewRenderer(".")
	sizeMM := 12 * layout.PtToMm
	m, err := r.LineMetrics(bodyFont, sizeMM)
	if err != nil {
		t.Fatalf("LineMetrics error: %v", err)
	}
	if m.Ascent <= 0 || m.Descent <= 0 || m.Height <= 0 {
		t.Fatalf("metrics must be positive: %+v", m)
	}
	if m.Ascent >= m.Height {
		t.Fatalf("ascent %g should be below line height %g", m.Ascent, m.Height)
	}
	if m.Height > 2*sizeMM {
		t.Fatalf("line height %g too large for %gmm font", m.Height, sizeMM)
	}
}

func TestFontFallback(t *testing.T) {
	r := NewRenderer("")
	font := layout.FontResource{Name: "Missing", Src: "embed:not-a-font", Fallback: "lmsans10-regular"}
	measure, err := r.MeasureText(font, 4)
	if err != nil {
		t.Fatalf("fallback font should be used: %v", err)
	}
	if measure("abc") <= 0 {
		t.Fatalf("fallback font should measure text")
	}

	if _, err := r.loadFontBytes(layout.FontResource{Name: "Rel", Src: "fonts/body.ttf"}); err == nil {
		t.Fatalf("relative font path without base dir must fail")
	}
	if _, err := r.loadFontBytes(layout.FontResource{Name: "NoSrc"}); err == nil {
		t.Fatalf("font without src must fail")
	}
}

func TestBuiltinFontResource(t *testing.T) {
	r := NewRenderer(".")
	data, err := r.loadFontBytes(bodyFont)
	if err != nil {
		t.Fatalf("embed font: %v", err)
	}
	r = NewRendererWithOptions(Options{Fonts: map[string]Resource{"custom": {Bytes: data}}})
	if _, err := r.LineMetrics(layout.FontResource{Name: "Custom", Src: "built-in:custom"}, 4); err != nil {
		t.Fatalf("built-in font: %v", err)
	}
}

func TestImageResources(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}

	r := NewRendererWithOptions(Options{
		BaseDir: dir,
		Images:  map[string]Resource{"logo": {Bytes: buf.Bytes()}, "missing": {Path: filepath.Join(dir, "nope.png")}},
	})
	for _, src := range []string{"logo.png", "built-in:logo", "builtin:logo"} {
		img, err := r.decodeImage(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if img.Bounds().Dx() != 8 {
			t.Fatalf("%s: width %d, want 8", src, img.Bounds().Dx())
		}
	}
	for _, src := range []string{"embed:logo", "built-in:missing", "nope.png"} {
		if _, err := r.decodeImage(src); err == nil {
			t.Fatalf("%s should fail", src)
		}
	}
	if _, err := NewRenderer("").decodeImage("logo.png"); err == nil {
		t.Fatalf("relative image path without base dir must fail")
	}
}

const renderDSL = `doc Render v1 {
  meta {
    title: "Render test"
  }
  resources {
    font Body { src: "embed:lmroman10-regular" }
    font Bold { src: "embed:lmroman10-bold" }
    color Accent #0F62FE
  }
  page A5 portrait margin 12mm {
    flow {
      text align justify {
        "Inline layout places words, "
        span font Bold background #FFEEAA { "highlighted spans" }
        " and boxes like "
        box padding 1mm border 0.3mm { "this" }
        " on lines that end flush with the right margin."
        br
        "Forced break."
      }
      table {
        header { cell { "name" } cell { "value" } }
        row { cell { "align" } cell align right { "right" } }
      }
    }
  }
}`

func TestRenderDocument(t *testing.T) {
	doc, err := dsl.ParseString(renderDSL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := NewRenderer(".")
	res, err := layout.Build(doc, nil, layout.BuildOptions{Typesetter: r})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	tb := res.Pages[0].Texts[0]
	if len(tb.Lines) < 3 {
		t.Fatalf("expected wrapped paragraph, got %d lines", len(tb.Lines))
	}
	for i, ln := range tb.Lines[:len(tb.Lines)-2] {
		if diff := math.Abs(ln.Width - tb.Width); diff > 1e-3 {
			t.Fatalf("justified line %d should end on the margin: width=%g want=%g", i, ln.Width, tb.Width)
		}
	}

	pdf, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("empty result must fail")
	}
}
