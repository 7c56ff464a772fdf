package inline

// newTestBuilder loads seq into a bare builder, bypassing Processor.
func newTestBuilder(seq *Sequence, start, end int64, breaks ...int64) *lineBuilder {
	b := &lineBuilder{}
	if err := b.initialize(Metadata{}, seq, start, end, Grid(breaks), false); err != nil {
		panic(err)
	}
	return b
}

// placed copies the output buffers of [0, n).
func (b *lineBuilder) placed(n int) (pos, dims []int64) {
	pos = append([]int64(nil), b.positions[:n]...)
	dims = append([]int64(nil), b.dims[:n]...)
	return pos, dims
}
