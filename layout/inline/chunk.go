package inline

// AlignmentChunk is a view into a Sequence: a run of elements that is placed
// as one unit. Width is the sum of the elements' minimum lengths.
type AlignmentChunk struct {
	start  int
	length int
	width  int64
}

func (c AlignmentChunk) Start() int { return c.start }
func (c AlignmentChunk) Len() int { return c.length }
func (c AlignmentChunk) End() int { return c.start + c.length }
func (c AlignmentChunk) Width() int64 { return c.width }

// ChunkIterator walks a Sequence chunk by chunk. It is restarted by creating
// a new iterator at the desired index.
type ChunkIterator struct {
	seq *Sequence
	pos int
}

// NewChunkIterator returns an iterator over seq starting at element start.
func NewChunkIterator(seq *Sequence, start int) *ChunkIterator {
	return &ChunkIterator{seq: seq, pos: start}
}

func (it *ChunkIterator) HasNext() bool {
	return it.pos < it.seq.Len()
}

// Next returns the chunk at the current position and advances past it.
// A boundary is placed between i and i+1 only when breaksBetween holds.
func (it *ChunkIterator) Next() AlignmentChunk {
	seq := it.seq
	start := it.pos
	i := start
	width := seq.MinimumLength(i)
	for i+1 < seq.Len() {
		if breaksBetween(seq.Element(i), seq.Node(i), seq.Element(i+1)) {
			break
		}
		i++
		width += seq.MinimumLength(i)
	}
	it.pos = i + 1
	return AlignmentChunk{start: start, length: i + 1 - start, width: width}
}

// CreatePadding returns a new sequence made of a START element for each box,
// followed by seq from index start on.
func CreatePadding(boxes []*Box, seq *Sequence, start int) *Sequence {
	out := &Sequence{
		elements: make([]Element, 0, len(boxes)+seq.Len()-start),
		nodes:    make([]Node, 0, len(boxes)+seq.Len()-start),
	}
	for _, b := range boxes {
		out.Start(b)
	}
	out.elements = append(out.elements, seq.elements[start:]...)
	out.nodes = append(out.nodes, seq.nodes[start:]...)
	return out
}
