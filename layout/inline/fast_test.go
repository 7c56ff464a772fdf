package inline

import (
	"testing"

	"github.com/tdewolff/test"
)

func newFast(t *testing.T, seq *Sequence, start, end int64) *FastProcessor {
	t.Helper()
	p := NewFastProcessor()
	test.Error(t, p.Initialize(Metadata{}, seq, start, end, Grid{}, false))
	return p
}

func TestFastStrictEnd(t *testing.T) {
	seq := paragraph(text("A", 50), text("B", 50))

	// a chunk ending exactly on the line end goes to the next line
	lines, err := CollectLines(newFast(t, seq, 0, 100))
	test.Error(t, err)
	test.T(t, len(lines), 2)
	test.String(t, texts(lines[0]), "A")
	test.String(t, texts(lines[1]), "B")
	test.T(t, xs(lines[1]), []int64{0})

	// the full processor accepts it
	lines, err = CollectLines(newProcessor(t, AlignLeft, seq, 0, 100, nil))
	test.Error(t, err)
	test.T(t, len(lines), 1)
}

func TestFastWrapping(t *testing.T) {
	seq := paragraph(text("one", 30), space(10), text("two", 30), space(10), text("six", 30))
	lines, err := CollectLines(newFast(t, seq, 10, 90))
	test.Error(t, err)
	test.T(t, len(lines), 2)
	test.String(t, texts(lines[0]), "one two")
	test.T(t, xs(lines[0]), []int64{10, 40, 50})
	test.String(t, texts(lines[1]), "six")
	test.T(t, xs(lines[1]), []int64{10})

	test.That(t, lines[0].Continued)
	test.That(t, lines[1].Continuation)
	test.T(t, lines[0].Width(), int64(70))
	test.T(t, lines[1].Width(), int64(30))
}

func TestFastFirstChunkForced(t *testing.T) {
	p := newFast(t, paragraph(text("wide", 150), space(10), text("x", 10)), 0, 100)
	line, err := p.Next()
	test.Error(t, err)
	test.T(t, widths(line), []int64{150})
	test.That(t, p.HasNext())

	line, err = p.Next()
	test.Error(t, err)
	test.String(t, texts(line), "x")
	test.T(t, xs(line), []int64{0})
	test.That(t, !p.HasNext())

	line, err = p.Next()
	test.Error(t, err)
	test.That(t, line == nil)
}

func TestFastOpenBoxes(t *testing.T) {
	p := NewBox("p", Style{})
	em := NewBox("em", Style{})
	em.Margin = Insets{Left: 4, Right: 6}
	seq := NewSequence().
		Start(p).
		Content(text("aa", 20)).Content(space(10)).
		Start(em).
		Content(text("bb", 20)).Content(space(10)).Content(text("cc", 20)).
		End(em).
		End(p)

	lines, err := CollectLines(newFast(t, seq, 0, 60))
	test.Error(t, err)
	test.T(t, len(lines), 2)

	first := lines[0].Children[2].(*Box)
	test.T(t, first.X(), int64(30))
	test.T(t, first.Width(), int64(24))
	test.T(t, first.Margin, Insets{Left: 4})
	test.That(t, first.Continued)

	second := lines[1].Children[0].(*Box)
	test.That(t, second.Continuation)
	test.T(t, second.Margin, Insets{Right: 6})
	test.T(t, xs(lines[1]), []int64{0})
	test.T(t, second.Width(), int64(26))

	// the input sequence is left alone
	test.T(t, seq.Len(), 9)
	test.T(t, em.Margin, Insets{Left: 4, Right: 6})
}

func TestFastMatchesLeft(t *testing.T) {
	build := func() *Sequence {
		return paragraph(text("a", 12), space(3), text("b", 25), space(3), text("c", 7), space(3), text("d", 31))
	}
	fast, err := CollectLines(newFast(t, build(), 0, 47))
	test.Error(t, err)
	left, err := CollectLines(newProcessor(t, AlignLeft, build(), 0, 47, nil))
	test.Error(t, err)
	test.T(t, len(fast), len(left))
	for i := range fast {
		test.T(t, xs(fast[i]), xs(left[i]), i)
		test.T(t, widths(fast[i]), widths(left[i]), i)
	}
}

func TestFastTrailingSpacer(t *testing.T) {
	var tests = []struct {
		seq   *Sequence
		lines []string
		width int64
	}{
		{paragraph(text("a", 90), space(10)), []string{"a"}, 90},
		{paragraph(text("a", 95), space(10)), []string{"a"}, 95},
		{paragraph(text("a", 90), space(10), space(5)), []string{"a"}, 90},
		{paragraph(text("a", 90), space(10), text("b", 5)), []string{"a", "b"}, 90},
	}
	for i, tt := range tests {
		lines, err := CollectLines(newFast(t, tt.seq, 0, 100))
		test.Error(t, err)
		var got []string
		for _, line := range lines {
			got = append(got, texts(line))
		}
		test.T(t, got, tt.lines, i)
		test.T(t, lines[0].Width(), tt.width, i)
		test.That(t, !lines[0].Continued || len(tt.lines) > 1, i)
	}
}
