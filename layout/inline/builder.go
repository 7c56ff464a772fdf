package inline

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// LineMode selects how the page breaks of a line are computed.
type LineMode int

const (
	// ModeNormal uses the grid breaks inside the line and the line end.
	ModeNormal LineMode = iota
	// ModeLastLine keeps the inner breaks but lets the last segment run open.
	ModeLastLine
	// ModeSkipOverflow ignores the grid; everything fits on one segment.
	ModeSkipOverflow
)

func (m LineMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeLastLine:
		return "last-line"
	case ModeSkipOverflow:
		return "skip-overflow"
	default:
		return "unknown"
	}
}

// runHandler places the run [start, start+count) and returns the index to
// continue from. A result <= start rejects the run.
type runHandler func(b *lineBuilder, start, count int) int

// lineFinisher adjusts the positions of [0, last) after a line was chosen.
type lineFinisher func(b *lineBuilder, last int)

// lineBuilder owns the buffers of one paragraph. Buffers grow on demand and
// are reused across lines; only [0, fill) is meaningful.
type lineBuilder struct {
	logger *log.Logger
	mode   LineMode

	elements []Element
	nodes    []Node
	fill     int

	positions  []int64
	dims       []int64
	scratchPos []int64

	start, end int64
	grid       PageGrid
	overflowX  bool
	pagebreaks []int64

	// hints of the last iterate call, only valid when it returned 0
	breakableIndex  int
	breakableExcess int64
	skipIndex       int

	// strategy state, reset by iterate
	cursor  int64
	segment int
	used    int64

	tree boxStack
	err  error
}

func (b *lineBuilder) ensureCapacity(n int) {
	if n <= len(b.elements) {
		return
	}
	size := 2 * len(b.elements)
	if size < n {
		size = n
	}
	elements := make([]Element, size)
	nodes := make([]Node, size)
	copy(elements, b.elements[:b.fill])
	copy(nodes, b.nodes[:b.fill])
	b.elements, b.nodes = elements, nodes
	b.positions = make([]int64, size)
	b.dims = make([]int64, size)
	b.scratchPos = make([]int64, size)
}

func (b *lineBuilder) initialize(meta Metadata, seq *Sequence, start, end int64, grid PageGrid, overflowX bool) error {
	if seq == nil || grid == nil {
		return ErrNilInput
	}
	if end < start {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidLineBounds, start, end)
	}
	b.logger = meta.logger()
	b.release()
	b.ensureCapacity(seq.Len())
	b.fill = copy(b.elements, seq.elements)
	copy(b.nodes, seq.nodes)
	b.clearOutput()
	b.start, b.end = start, end
	b.grid = grid
	b.overflowX = overflowX
	b.mode = ModeNormal
	b.err = nil
	b.updateBreaks()
	return nil
}

// setBounds moves the line to [start, end] for the following lines.
func (b *lineBuilder) setBounds(start, end int64) error {
	if end < start {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidLineBounds, start, end)
	}
	b.start, b.end = start, end
	b.updateBreaks()
	return nil
}

// release drops references held by the buffers. Capacity is kept.
func (b *lineBuilder) release() {
	clear(b.elements[:b.fill])
	clear(b.nodes[:b.fill])
	b.fill = 0
	b.grid = nil
	b.tree.reset()
}

func (b *lineBuilder) clearOutput() {
	clear(b.positions[:b.fill])
	clear(b.dims[:b.fill])
}

func (b *lineBuilder) setMode(m LineMode) {
	b.mode = m
	b.updateBreaks()
}

// updateBreaks computes the page breaks of the line for the current mode.
// The result is strictly increasing and never empty.
func (b *lineBuilder) updateBreaks() {
	b.pagebreaks = b.pagebreaks[:0]
	if b.mode == ModeSkipOverflow || b.grid == nil {
		b.pagebreaks = append(b.pagebreaks, Unbounded)
		return
	}
	breaks := b.grid.HorizontalBreaks()
	if b.overflowX && len(breaks) > 0 {
		breaks = breaks[:len(breaks)-1]
	}
	for _, x := range breaks {
		if x <= b.start || x >= b.end {
			continue
		}
		if n := len(b.pagebreaks); n > 0 && x <= b.pagebreaks[n-1] {
			continue
		}
		b.pagebreaks = append(b.pagebreaks, x)
	}
	if b.mode == ModeLastLine {
		b.pagebreaks = append(b.pagebreaks, Unbounded)
	} else {
		b.pagebreaks = append(b.pagebreaks, b.end)
	}
}

func (b *lineBuilder) lastBreak() int64 { return b.pagebreaks[len(b.pagebreaks)-1] }

// segmentStart is the left edge of segment k.
func (b *lineBuilder) segmentStart(k int) int64 {
	if k == 0 {
		return b.start
	}
	return b.pagebreaks[k-1]
}

// lineWidth is the distance between the line start and its last break.
func (b *lineBuilder) lineWidth() int64 { return b.lastBreak() - b.start }

func (b *lineBuilder) resetHints() {
	b.breakableIndex = -1
	b.breakableExcess = 0
	b.skipIndex = -1
}

// iterate walks [0, maxPos) run by run and hands every run to handle. It
// returns the index of the first element that did not fit, or maxPos.
func (b *lineBuilder) iterate(handle runHandler, maxPos int) int {
	b.resetHints()
	b.cursor = b.start
	b.segment = 0
	b.used = 0

	runStart := 0
	for i := 0; i < maxPos; i++ {
		if i+1 < maxPos && !breaksBetween(b.elements[i], b.nodes[i], b.elements[i+1]) {
			continue
		}
		next := handle(b, runStart, i+1-runStart)
		if b.err != nil {
			return 0
		}
		if next <= runStart {
			return next
		}
		runStart = next
		i = next - 1
	}
	return runStart
}

// measure writes the natural width of every element of [start, end) into
// dims. It returns the total and the index of the last CONTENT element.
func (b *lineBuilder) measure(start, end int) (int64, int) {
	var width int64
	content := -1
	for i := start; i < end; i++ {
		w := b.elements[i].MaximumWidth(b.nodes[i])
		if b.elements[i].Classification() == Content {
			content = i
			if b.nodes[i].Kind() == KindInlineBlock && !b.computeInlineBlock(i, w) {
				return width, content
			}
		}
		b.dims[i] = w
		width += w
	}
	return width, content
}

// place lays out [start, end) from x using the widths in dims.
func (b *lineBuilder) place(start, end int, x int64) int64 {
	for i := start; i < end; i++ {
		b.positions[i] = x
		x += b.dims[i]
	}
	return x
}

// computeInlineBlock sizes the inline block at i to the outer width w.
func (b *lineBuilder) computeInlineBlock(i int, w int64) bool {
	box, ok := b.nodes[i].(*Box)
	if !ok {
		return true
	}
	if w-box.LeadingInset()-box.TrailingInset() <= 0 {
		b.err = fmt.Errorf("%w: %q at element %d, outer width %d", ErrZeroWidthBlock, box.Name, i, w)
		return false
	}
	b.dims[i] = w
	return true
}

// overflow handles a run that ends behind the last break when placed at pos.
// Positions are recorded anyway so a forced line can show them.
func (b *lineBuilder) overflow(start, end, content int, width, pos int64) int {
	b.place(start, end, pos)
	if content >= 0 && isSplittable(b.nodes[content]) {
		b.breakableIndex = content
		b.breakableExcess = pos + width - b.lastBreak()
		b.skipIndex = end
		return start
	}
	if start != 0 {
		return start
	}
	if content >= 0 && b.nodes[content].Kind() == KindInlineBlock {
		allotted := b.lastBreak() - pos - (width - b.dims[content])
		if !b.computeInlineBlock(content, allotted) {
			return start
		}
		b.cursor = b.place(start, end, pos)
		b.used = b.cursor - b.start
		return end
	}
	b.skipIndex = end
	return start
}

// misfit handles a run that fits the width of the line but none of its
// segments. Past the first run it only ends the line; as the first run it
// overflows on its own line.
func (b *lineBuilder) misfit(start, end, content int, width int64) int {
	if start != 0 {
		return start
	}
	b.place(start, end, b.start)
	if content >= 0 && isSplittable(b.nodes[content]) {
		b.breakableIndex = content
		b.breakableExcess = width - b.widestSegment()
	}
	b.skipIndex = end
	return start
}

func (b *lineBuilder) widestSegment() int64 {
	var w int64
	for k := range b.pagebreaks {
		w = max(w, b.pagebreaks[k]-b.segmentStart(k))
	}
	return w
}

// splitBreakableIfPossible splits the element recorded by the last iterate
// call so that its left part takes breakableExcess less room.
func (b *lineBuilder) splitBreakableIfPossible() bool {
	idx := b.breakableIndex
	if idx < 0 || b.breakableExcess <= 0 {
		return false
	}
	s, ok := b.nodes[idx].(Splittable)
	if !ok || !s.CanSplit() {
		return false
	}
	allowed := b.dims[idx] - b.breakableExcess
	if b.dims[idx] <= 0 {
		allowed = s.MinimumWidth() - b.breakableExcess
	}
	if allowed <= 0 {
		return false
	}
	left, right, ok := s.Split(allowed)
	if !ok || left == nil || right == nil {
		return false
	}
	b.ensureCapacity(b.fill + 1)
	copy(b.elements[idx+1:b.fill+1], b.elements[idx:b.fill])
	copy(b.nodes[idx+1:b.fill+1], b.nodes[idx:b.fill])
	b.nodes[idx], b.nodes[idx+1] = left, right
	b.fill++
	b.logger.Debug("split element", "index", idx, "allowed", allowed, "excess", b.breakableExcess)
	return true
}

// cleanFirstSpacers removes collapsible spacers at the start of the buffer.
func (b *lineBuilder) cleanFirstSpacers() {
	b.elements, b.nodes, b.fill = compactLeadingSpacers(b.elements, b.nodes, b.fill)
}

func removableSpacer(e Element, n Node) bool {
	return isSpacerContent(e, n) && !n.Style().keepsWhitespace()
}

// compactLeadingSpacers drops the collapsible spacers found before the first
// element that is neither START nor such a spacer. When there is nothing to
// drop the input slices are returned as they are; otherwise the result is
// written to new slices of the same length.
func compactLeadingSpacers(elements []Element, nodes []Node, fill int) ([]Element, []Node, int) {
	head, removed := 0, 0
	for head < fill {
		e, n := elements[head], nodes[head]
		if removableSpacer(e, n) {
			removed++
		} else if e.Classification() != Start {
			break
		}
		head++
	}
	if removed == 0 {
		return elements, nodes, fill
	}
	outE := make([]Element, len(elements))
	outN := make([]Node, len(nodes))
	k := 0
	for i := 0; i < head; i++ {
		if removableSpacer(elements[i], nodes[i]) {
			continue
		}
		outE[k], outN[k] = elements[i], nodes[i]
		k++
	}
	copy(outE[k:], elements[head:fill])
	copy(outN[k:], nodes[head:fill])
	return outE, outN, fill - removed
}

// skipAlign lays out [0, maxPos) left aligned without any break.
func (b *lineBuilder) skipAlign(maxPos int) int {
	prev := b.mode
	b.setMode(ModeSkipOverflow)
	b.clearOutput()
	last := b.iterate(alignLeft, maxPos)
	b.setMode(prev)
	return last
}

// contentRight is the right edge of the last placed element before last.
func (b *lineBuilder) contentRight(last int) int64 {
	if last == 0 {
		return b.start
	}
	return b.positions[last-1] + b.dims[last-1]
}

// materialize builds the box tree of [0, last) and removes it from the
// buffer. Boxes still open are split; their remainders head the buffer.
func (b *lineBuilder) materialize(last int) (*Box, error) {
	t := &b.tree
	t.reset()
	for i := 0; i < last; i++ {
		n := b.nodes[i]
		switch b.elements[i].Classification() {
		case Start:
			box, ok := n.(*Box)
			if !ok {
				return nil, b.fail(fmt.Errorf("inline: START element %d is a %s", i, n.Kind()))
			}
			t.open(box, b.positions[i])
		case End:
			if err := t.close(b.positions[i] + b.dims[i]); err != nil {
				return nil, b.fail(fmt.Errorf("%w: END at element %d", err, i))
			}
		default:
			if err := t.add(n, b.positions[i], b.dims[i]); err != nil {
				return nil, b.fail(fmt.Errorf("%w: element %d", err, i))
			}
		}
	}

	next := last
	for next < b.fill && droppable(b.elements[next], b.nodes[next]) {
		next++
	}

	right := b.contentRight(last)
	var carry []*Box
	if b.closesOnly(next) {
		// nothing but closing elements is left; they end on this line
		for ; next < b.fill; next++ {
			if b.elements[next].Classification() != End {
				continue
			}
			right += b.elements[next].MaximumWidth(b.nodes[next])
			if err := t.close(right); err != nil {
				return nil, b.fail(fmt.Errorf("%w: END at element %d", err, next))
			}
		}
		t.closeAll(right)
	} else {
		carry = t.splitAll(right)
	}
	root := t.root()
	b.shift(next, carry)
	return root, nil
}

// closesOnly reports whether [from, fill) holds only END elements and
// droppable content.
func (b *lineBuilder) closesOnly(from int) bool {
	for i := from; i < b.fill; i++ {
		if b.elements[i].Classification() != End && !droppable(b.elements[i], b.nodes[i]) {
			return false
		}
	}
	return true
}

// droppable is ignorable content that may vanish at the end of a line.
func droppable(e Element, n Node) bool {
	return e.Classification() == Content && n.Ignorable() && !n.Style().keepsWhitespace()
}

// shift drops [0, from) from the buffers and puts a START element for each
// carried box in front of the rest.
func (b *lineBuilder) shift(from int, carry []*Box) {
	k := len(carry)
	rest := b.fill - from
	copy(b.elements[k:], b.elements[from:b.fill])
	copy(b.nodes[k:], b.nodes[from:b.fill])
	for i, c := range carry {
		b.elements[i] = StartMarker
		b.nodes[i] = c
	}
	newFill := k + rest
	clear(b.elements[newFill:b.fill])
	clear(b.nodes[newFill:b.fill])
	b.fill = newFill
}

func (b *lineBuilder) fail(err error) error {
	b.err = err
	return err
}
