package inline

// alignRight accepts a run when the line still has room for it, then places
// everything accepted so far against the line end.
func alignRight(b *lineBuilder, start, count int) int {
	end := start + count
	width, content := b.measure(start, end)
	if b.err != nil {
		return start
	}
	if b.used+width > b.lineWidth() {
		return b.overflow(start, end, content, width, b.start+b.used)
	}
	if !b.rightAlign(end) {
		return b.misfit(start, end, content, width)
	}
	b.used += width
	return end
}

// rightAlign places [0, end) back to front. An element that does not fit the
// current segment moves to the end of the previous one. It reports false,
// leaving positions untouched, if the first segment runs out of room.
func (b *lineBuilder) rightAlign(end int) bool {
	seg := len(b.pagebreaks) - 1
	x := b.pagebreaks[seg]
	for i := end - 1; i >= 0; i-- {
		w := b.dims[i]
		for x-w < b.segmentStart(seg) {
			if seg == 0 {
				return false
			}
			seg--
			x = b.pagebreaks[seg]
		}
		x -= w
		b.scratchPos[i] = x
	}
	copy(b.positions[:end], b.scratchPos[:end])
	return true
}
