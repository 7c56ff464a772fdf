package inline

// alignCenter is two-pass like alignRight: the run is accepted first, then
// everything accepted so far is centred.
func alignCenter(b *lineBuilder, start, count int) int {
	end := start + count
	width, content := b.measure(start, end)
	if b.err != nil {
		return start
	}
	if b.used+width > b.lineWidth() {
		return b.overflow(start, end, content, width, b.start+b.used)
	}
	if !b.performCenterAlignment(end, b.used+width) {
		return b.misfit(start, end, content, width)
	}
	b.used += width
	return end
}

// performCenterAlignment centres [0, end), used units wide. With a single
// segment the naive placement is final. Otherwise the elements left of the
// centre are packed against it backwards and the others forwards, each side
// moving on to further segments as needed.
func (b *lineBuilder) performCenterAlignment(end int, used int64) bool {
	lineWidth := b.lineWidth()
	x := b.start + (lineWidth-used)/2
	for i := 0; i < end; i++ {
		b.scratchPos[i] = x
		x += b.dims[i]
	}
	if len(b.pagebreaks) == 1 {
		copy(b.positions[:end], b.scratchPos[:end])
		return true
	}

	center := b.start + lineWidth/2
	split, splitX := end, x
	for i := 0; i < end; i++ {
		p, w := b.scratchPos[i], b.dims[i]
		if p+w <= center {
			continue
		}
		split = i
		if p < center && center-p > p+w-center {
			// the element sits mostly left of the centre
			split = i + 1
		}
		if split < end {
			splitX = b.scratchPos[split]
		} else {
			splitX = p + w
		}
		break
	}

	// left group, back to front
	seg := b.segmentAt(splitX, true)
	x = splitX
	for i := split - 1; i >= 0; i-- {
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

	// right group, front to back
	seg = b.segmentAt(splitX, false)
	x = splitX
	last := len(b.pagebreaks) - 1
	for i := split; i < end; i++ {
		w := b.dims[i]
		for x+w > b.pagebreaks[seg] {
			if seg == last {
				return false
			}
			seg++
			x = max(x, b.segmentStart(seg))
		}
		b.scratchPos[i] = x
		x += w
	}
	copy(b.positions[:end], b.scratchPos[:end])
	return true
}

// segmentAt returns the segment holding x. A break coordinate belongs to the
// segment it ends when closing is set and to the following one otherwise.
func (b *lineBuilder) segmentAt(x int64, closing bool) int {
	last := len(b.pagebreaks) - 1
	for k := 0; k < last; k++ {
		if x < b.pagebreaks[k] || (closing && x == b.pagebreaks[k]) {
			return k
		}
	}
	return last
}
