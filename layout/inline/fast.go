package inline

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// FastProcessor is a greedy left-aligned line breaker. It never backtracks,
// ignores page breaks inside the line and does not split content.
type FastProcessor struct {
	logger *log.Logger
	seq    *Sequence
	it     *ChunkIterator
	start  int64
	end    int64
	tree   boxStack
	err    error
}

var _ LineProcessor = (*FastProcessor)(nil)

func NewFastProcessor() *FastProcessor {
	return &FastProcessor{}
}

// Initialize loads seq for lines spanning [start, end]. The grid is only
// checked for presence; overflowX has no effect.
func (p *FastProcessor) Initialize(meta Metadata, seq *Sequence, start, end int64, grid PageGrid, overflowX bool) error {
	if seq == nil || grid == nil {
		return ErrNilInput
	}
	if end < start {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidLineBounds, start, end)
	}
	p.logger = meta.logger()
	p.seq = seq
	p.it = NewChunkIterator(seq, 0)
	p.start, p.end = start, end
	p.tree.reset()
	p.err = nil
	return nil
}

func (p *FastProcessor) HasNext() bool {
	return p.it != nil && p.it.HasNext()
}

// Next takes chunks while they end strictly before the line end. The first
// chunk of a line is always taken. Boxes left open are split and their
// remainders start the next line.
func (p *FastProcessor) Next() (*Box, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.HasNext() {
		return nil, nil
	}
	t := &p.tree
	t.reset()
	x := p.start
	empty := true
	for p.it.HasNext() {
		chunk := p.it.Next()
		width := chunk.Width()
		if empty {
			width -= p.leadingSpace(chunk)
		}
		if !empty && x+width >= p.end {
			if p.closesOnly(chunk.Start()) {
				return p.closeLine(chunk.Start(), x)
			}
			carry := t.splitAll(x)
			root := t.root()
			p.seq = CreatePadding(carry, p.seq, chunk.Start())
			p.it = NewChunkIterator(p.seq, 0)
			return root, nil
		}
		var err error
		x, empty, err = p.accept(chunk, x, empty)
		if err != nil {
			p.err = err
			return nil, err
		}
	}
	if x > p.end {
		p.logger.Debug("overflowing line", "width", x-p.start, "limit", p.end-p.start)
	}
	t.closeAll(x)
	return t.root(), nil
}

func (p *FastProcessor) closesOnly(from int) bool {
	for i := from; i < p.seq.Len(); i++ {
		if e := p.seq.Element(i); e.Classification() != End && !droppable(e, p.seq.Node(i)) {
			return false
		}
	}
	return true
}

// closeLine ends the paragraph on the current line: the droppable content
// from index from on is left out and the END elements close their boxes.
func (p *FastProcessor) closeLine(from int, x int64) (*Box, error) {
	t := &p.tree
	for i := from; i < p.seq.Len(); i++ {
		if p.seq.Element(i).Classification() != End {
			continue
		}
		x += p.seq.MinimumLength(i)
		if err := t.close(x); err != nil {
			p.err = fmt.Errorf("%w: END at element %d", err, i)
			return nil, p.err
		}
	}
	t.closeAll(x)
	p.it = NewChunkIterator(p.seq, p.seq.Len())
	return t.root(), nil
}

// leadingSpace is the width of the collapsible spacers a chunk loses when it
// starts a line.
func (p *FastProcessor) leadingSpace(c AlignmentChunk) int64 {
	var w int64
	for i := c.Start(); i < c.End(); i++ {
		e, n := p.seq.Element(i), p.seq.Node(i)
		if removableSpacer(e, n) {
			w += p.seq.MinimumLength(i)
			continue
		}
		if e.Classification() != Start {
			break
		}
	}
	return w
}

func (p *FastProcessor) accept(c AlignmentChunk, x int64, empty bool) (int64, bool, error) {
	t := &p.tree
	for i := c.Start(); i < c.End(); i++ {
		e, n := p.seq.Element(i), p.seq.Node(i)
		w := p.seq.MinimumLength(i)
		switch e.Classification() {
		case Start:
			box, ok := n.(*Box)
			if !ok {
				return x, empty, fmt.Errorf("inline: START element %d is a %s", i, n.Kind())
			}
			t.open(box, x)
			x += w
		case End:
			x += w
			if err := t.close(x); err != nil {
				return x, empty, fmt.Errorf("%w: END at element %d", err, i)
			}
		default:
			if empty && removableSpacer(e, n) {
				continue
			}
			if err := t.add(n, x, w); err != nil {
				return x, empty, fmt.Errorf("%w: element %d", err, i)
			}
			x += w
			empty = false
		}
	}
	return x, empty, nil
}

// Deinitialize drops the sequence.
func (p *FastProcessor) Deinitialize() {
	p.seq = nil
	p.it = nil
	p.tree.reset()
	p.err = nil
}
