package inline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Alignment is the horizontal alignment of the lines of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// ParseAlignment accepts left, right, center (or centre) and justify.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "right", "end":
		return AlignRight, nil
	case "center", "centre":
		return AlignCenter, nil
	case "justify":
		return AlignJustify, nil
	}
	return AlignLeft, fmt.Errorf("inline: unknown alignment %q", s)
}

// Metadata carries the collaborators of a processor.
type Metadata struct {
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

var discard = log.New(io.Discard)

func (m Metadata) logger() *log.Logger {
	if m.Logger == nil {
		return discard
	}
	return m.Logger
}

// LineProcessor breaks a sequence into lines. A processor is not safe for
// concurrent use; returned boxes stay valid after the next call.
type LineProcessor interface {
	Initialize(meta Metadata, seq *Sequence, start, end int64, grid PageGrid, overflowX bool) error
	HasNext() bool
	// Next returns the next line or nil once the sequence is exhausted.
	Next() (*Box, error)
	Deinitialize()
}

// Processor is the line breaker for every alignment. It supports lines made
// of several page segments.
type Processor struct {
	align  Alignment
	handle runHandler
	finish lineFinisher
	b      lineBuilder
}

var _ LineProcessor = (*Processor)(nil)

// NewProcessor returns a processor for alignment a.
func NewProcessor(a Alignment) *Processor {
	p := &Processor{align: a}
	switch a {
	case AlignRight:
		p.handle = alignRight
	case AlignCenter:
		p.handle = alignCenter
	case AlignJustify:
		p.handle = alignLeft
		p.finish = justifyLine
	default:
		p.align = AlignLeft
		p.handle = alignLeft
	}
	return p
}

func (p *Processor) Alignment() Alignment { return p.align }

// Initialize loads seq for lines spanning [start, end]. Breaks of grid that
// fall strictly inside the line cut it into segments. With overflowX the last
// break of grid is ignored.
func (p *Processor) Initialize(meta Metadata, seq *Sequence, start, end int64, grid PageGrid, overflowX bool) error {
	return p.b.initialize(meta, seq, start, end, grid, overflowX)
}

// setBounds changes the horizontal extent of the following lines.
func (p *Processor) setBounds(start, end int64) error {
	return p.b.setBounds(start, end)
}

func (p *Processor) HasNext() bool {
	return p.b.fill > 0
}

// Next builds the next line. When nothing fits, a splittable element is
// split; failing that the line overflows, left aligned.
func (p *Processor) Next() (*Box, error) {
	b := &p.b
	if b.err != nil {
		return nil, b.err
	}
	b.cleanFirstSpacers()
	if b.fill == 0 {
		return nil, nil
	}

	var last int
	for {
		b.clearOutput()
		last = b.iterate(p.handle, b.fill)
		if b.err != nil {
			return nil, b.err
		}
		if last > 0 || !b.splitBreakableIfPossible() {
			break
		}
	}

	switch {
	case last > 0:
		if p.finish != nil && b.mode == ModeNormal {
			p.finish(b, last)
		}
	case b.skipIndex > 0:
		skip := b.skipIndex
		last = b.skipAlign(skip)
		b.logger.Debug("overflowing line", "elements", skip, "width", b.contentRight(last)-b.start, "limit", b.lineWidth())
	default:
		b.logger.Warn("nothing fits the line, forcing the remaining content onto it",
			"elements", b.fill, "start", b.start, "end", b.end, "align", p.align)
		last = b.skipAlign(b.fill)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.materialize(last)
}

// PerformLastLineAlignment places all remaining content on one line. Content
// that does not fit is left aligned and may overflow the line end.
func (p *Processor) PerformLastLineAlignment() (*Box, error) {
	b := &p.b
	if b.err != nil {
		return nil, b.err
	}
	b.cleanFirstSpacers()
	if b.fill == 0 {
		return nil, nil
	}
	b.clearOutput()
	last := b.iterate(p.handle, b.fill)
	if b.err != nil {
		return nil, b.err
	}
	if last < b.fill && b.mode == ModeNormal {
		b.setMode(ModeLastLine)
		b.clearOutput()
		last = b.iterate(alignLeft, b.fill)
		b.setMode(ModeNormal)
		if b.err != nil {
			return nil, b.err
		}
	}
	if last < b.fill {
		last = b.skipAlign(b.fill)
		if b.err != nil {
			return nil, b.err
		}
	}
	return b.materialize(last)
}

// remainingFits reports whether the rest of the buffer fits one line.
func (p *Processor) remainingFits() bool {
	b := &p.b
	if b.err != nil || b.fill == 0 {
		return false
	}
	b.cleanFirstSpacers()
	b.clearOutput()
	return b.iterate(p.handle, b.fill) == b.fill && b.err == nil
}

// Deinitialize drops the sequence and the grid. Buffers keep their capacity.
func (p *Processor) Deinitialize() {
	p.b.release()
	p.b.err = nil
}

type lastLineAligner interface {
	remainingFits() bool
	PerformLastLineAlignment() (*Box, error)
}

// CollectLines drains lp. The last line of a Processor goes through
// PerformLastLineAlignment.
func CollectLines(lp LineProcessor) ([]*Box, error) {
	var lines []*Box
	last, _ := lp.(lastLineAligner)
	for lp.HasNext() {
		var (
			line *Box
			err  error
		)
		if last != nil && last.remainingFits() {
			line, err = last.PerformLastLineAlignment()
		} else {
			line, err = lp.Next()
		}
		if err != nil {
			return lines, err
		}
		if line == nil {
			break
		}
		lines = append(lines, line)
	}
	return lines, nil
}
