package inline

// alignLeft places runs one after another from the line start. A run that
// crosses an inner page break moves to the start of the next segment.
func alignLeft(b *lineBuilder, start, count int) int {
	end := start + count
	width, content := b.measure(start, end)
	if b.err != nil {
		return start
	}

	pos := b.cursor
	last := len(b.pagebreaks) - 1
	for b.segment < last && pos+width > b.pagebreaks[b.segment] {
		pos = b.pagebreaks[b.segment]
		b.segment++
	}
	if pos+width > b.lastBreak() {
		return b.overflow(start, end, content, width, pos)
	}
	if content >= 0 && b.nodes[content].Kind() == KindInlineBlock &&
		pos+width > b.end && start != 0 {
		// the block only fits the open end of a last line; it opens the next one instead
		b.place(start, end, pos)
		return start
	}

	b.cursor = b.place(start, end, pos)
	b.used = b.cursor - b.start
	return end
}
