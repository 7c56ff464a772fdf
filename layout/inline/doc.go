// Package inline turns a flat sequence of inline layout elements into
// positioned lines.
//
// A paragraph is handed to a processor as a Sequence: START and END markers
// for inline boxes (spans) and CONTENT elements for text runs, spacers and
// inline blocks. Every element is already measured; the processor only
// decides where lines end and where each element sits horizontally.
//
// Elements are grouped into chunks, the smallest units a line break may not
// fall into. A chunk boundary exists between elements i and i+1 unless
// element i opens a box, element i+1 closes one, or element i is a spacer.
//
// Processor implements left, right, center and justified alignment on lines
// that may consist of several horizontal segments (a page-break grid cutting
// the line into columns). FastProcessor is the greedy variant used when the
// line is a single segment and left aligned.
//
// Coordinates are fixed-point int64 values in micrometres, see FromMM.
//
//	seq := inline.NewSequence().
//		Start(para).
//		Content(inline.NewText("Hello", inline.FromMM(10), inline.Style{})).
//		Content(inline.NewSpacer(inline.FromMM(2), inline.Style{})).
//		Content(inline.NewText("world", inline.FromMM(11), inline.Style{})).
//		End(para)
//
//	p := inline.NewProcessor(inline.AlignJustify)
//	if err := p.Initialize(inline.Metadata{}, seq, 0, inline.FromMM(80), inline.Grid{}, false); err != nil {
//		return err
//	}
//	lines, err := inline.CollectLines(p)
package inline
