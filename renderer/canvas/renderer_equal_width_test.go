package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/linefold/layout"
)

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * layout.PtToMm

	first := "SAMPLE"
	measure, err := r.MeasureText(bodyFont, fontSizeMM)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	limit := measure(first)
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	// 构造恰好等宽 + 显式换行 + 下一行内容
	tb, err := layout.ComposeText(layout.TextRequest{
		Content: first + "\n" + "NEXT",
		Width:   limit,
		Font:    bodyFont,
		Size:    fontSizeMM,
	}, layout.BuildOptions{Typesetter: r})
	if err != nil {
		t.Fatalf("ComposeText error: %v", err)
	}
	if got := len(tb.Lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
	if tb.Lines[0].Content != first {
		t.Fatalf("first line mismatch: got=%q want=%q", tb.Lines[0].Content, first)
	}
	if tb.Lines[1].Content != "NEXT" {
		t.Fatalf("second line mismatch: got=%q want=%q", tb.Lines[1].Content, "NEXT")
	}
}
