package inline

// justifyLine stretches the spacers of the last segment of a line so that
// its content ends on the last break. Each spacer gets a share of the slack
// proportional to its own width; the last one takes the rounding remainder.
func justifyLine(b *lineBuilder, last int) {
	if last == 0 {
		return
	}
	slack := b.lastBreak() - b.contentRight(last)
	if slack <= 0 {
		return
	}
	from := 0
	if seg := len(b.pagebreaks) - 1; seg > 0 {
		edge := b.segmentStart(seg)
		for from < last && b.positions[from] < edge {
			from++
		}
	}

	var total int64
	lastSpacer := -1
	for i := from; i < last; i++ {
		if isSpacerContent(b.elements[i], b.nodes[i]) && b.dims[i] > 0 {
			total += b.dims[i]
			lastSpacer = i
		}
	}
	if total == 0 {
		return
	}

	var shift, given int64
	for i := from; i < last; i++ {
		b.positions[i] += shift
		if i > lastSpacer || b.dims[i] <= 0 || !isSpacerContent(b.elements[i], b.nodes[i]) {
			continue
		}
		extra := slack * b.dims[i] / total
		if i == lastSpacer {
			extra = slack - given
		}
		given += extra
		b.dims[i] += extra
		shift += extra
	}
}
