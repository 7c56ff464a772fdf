package inline

import "github.com/rivo/uniseg"

// Kind tags the type of a layout node.
type Kind int

const (
	KindBox         Kind = iota // inline box opened by START and closed by END
	KindInlineBlock             // atomic block placed as a single CONTENT element
	KindText                    // text run
	KindSpacer                  // collapsible white space
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindInlineBlock:
		return "inline-block"
	case KindText:
		return "text"
	case KindSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Style carries the white-space flags the processors consult.
type Style struct {
	PreserveWhitespace bool
	TrimContent        bool
}

// keepsWhitespace reports whether ignorable content must stay where it is.
func (s Style) keepsWhitespace() bool {
	return s.PreserveWhitespace && !s.TrimContent
}

// Node is a measured element of a line. X and Width are in fixed-point units.
type Node interface {
	Kind() Kind
	X() int64
	Width() int64
	SetX(x int64)
	SetWidth(w int64)
	Style() Style
	// Ignorable reports whether the node prints nothing.
	Ignorable() bool
	// Derive copies the node. A deep derive also copies child nodes.
	Derive(deep bool) Node
}

// Splittable is implemented by content that can divide itself into a part
// that fits a given width and a remainder for the next line.
type Splittable interface {
	Node
	CanSplit() bool
	MinimumWidth() int64
	// Split returns a left part no wider than width and the remainder.
	// ok is false when no such division exists.
	Split(width int64) (left, right Node, ok bool)
}

func isSplittable(n Node) bool {
	s, ok := n.(Splittable)
	return ok && s.CanSplit()
}

// Insets holds left and right extents of margins, borders or padding.
type Insets struct {
	Left  int64
	Right int64
}

// Box is an inline box or an inline block.
type Box struct {
	Name    string
	Payload any

	Margin  Insets
	Border  Insets
	Padding Insets

	// Continued is set on a box whose content goes on in the next line,
	// Continuation on the box that picks it up.
	Continued    bool
	Continuation bool

	Children []Node

	kind  Kind
	style Style
	x     int64
	width int64
}

// NewBox creates an inline box for START/END elements.
func NewBox(name string, style Style) *Box {
	return &Box{Name: name, kind: KindBox, style: style}
}

// NewInlineBlock creates an atomic inline block with the given preferred outer width.
func NewInlineBlock(name string, width int64, style Style) *Box {
	return &Box{Name: name, kind: KindInlineBlock, style: style, width: width}
}

func (b *Box) Kind() Kind { return b.kind }
func (b *Box) X() int64 { return b.x }
func (b *Box) Width() int64 { return b.width }
func (b *Box) SetX(x int64) { b.x = x }
func (b *Box) SetWidth(w int64) { b.width = w }
func (b *Box) Style() Style { return b.style }
func (b *Box) Ignorable() bool { return false }
func (b *Box) AddChild(n Node) { b.Children = append(b.Children, n) }

// LeadingInset is the width a START element contributes.
func (b *Box) LeadingInset() int64 {
	return b.Margin.Left + b.Border.Left + b.Padding.Left
}

func (b *Box) TrailingInset() int64 {
	return b.Margin.Right + b.Border.Right + b.Padding.Right
}

// ContentWidth is the width left for children once insets are subtracted.
func (b *Box) ContentWidth() int64 {
	return b.width - b.LeadingInset() - b.TrailingInset()
}

// Derive copies the box. Children are only copied for a deep derive.
func (b *Box) Derive(deep bool) Node {
	return b.derive(deep)
}

func (b *Box) derive(deep bool) *Box {
	c := *b
	c.Children = nil
	if deep && len(b.Children) > 0 {
		c.Children = make([]Node, len(b.Children))
		for i, child := range b.Children {
			c.Children[i] = child.Derive(true)
		}
	}
	return &c
}

// Split cuts the box at the horizontal axis. The receiver keeps its children
// and loses its right edge; the returned box has no children and no left edge.
func (b *Box) Split() *Box {
	right := b.derive(false)
	right.Margin.Left, right.Border.Left, right.Padding.Left = 0, 0, 0
	right.Continuation = true
	right.x = 0
	right.width = 0

	b.Margin.Right, b.Border.Right, b.Padding.Right = 0, 0, 0
	b.Continued = true
	return right
}

// Walk calls fn for the box and all descendants in document order.
// Returning false from fn skips the children of that node.
func (b *Box) Walk(fn func(n Node, depth int) bool) {
	b.walk(fn, 0)
}

func (b *Box) walk(fn func(n Node, depth int) bool, depth int) {
	if !fn(b, depth) {
		return
	}
	for _, child := range b.Children {
		if cb, ok := child.(*Box); ok {
			cb.walk(fn, depth+1)
			continue
		}
		fn(child, depth+1)
	}
}

// Measurer returns the width of s in fixed-point units.
type Measurer func(s string) int64

// Text is a run of text. It is splittable when created with a Measurer.
type Text struct {
	Value   string
	Payload any

	style   Style
	x       int64
	width   int64
	measure Measurer
}

// NewText creates a text run with a fixed width that never splits.
func NewText(value string, width int64, style Style) *Text {
	return &Text{Value: value, style: style, width: width}
}

// NewMeasuredText creates a text run measured by m. The run can be split at
// grapheme cluster boundaries.
func NewMeasuredText(value string, style Style, m Measurer) *Text {
	return &Text{Value: value, style: style, width: m(value), measure: m}
}

func (t *Text) Kind() Kind { return KindText }
func (t *Text) X() int64 { return t.x }
func (t *Text) Width() int64 { return t.width }
func (t *Text) SetX(x int64) { t.x = x }
func (t *Text) SetWidth(w int64) { t.width = w }
func (t *Text) Style() Style { return t.style }
func (t *Text) Ignorable() bool { return t.Value == "" }
func (t *Text) CanSplit() bool { return t.measure != nil && uniseg.GraphemeClusterCount(t.Value) > 1 }

func (t *Text) Derive(bool) Node {
	c := *t
	return &c
}

// MinimumWidth is the width of the first grapheme cluster.
func (t *Text) MinimumWidth() int64 {
	if t.measure == nil {
		return t.width
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(t.Value, -1)
	return t.measure(cluster)
}

// Split keeps as many leading grapheme clusters as fit into width.
func (t *Text) Split(width int64) (Node, Node, bool) {
	if !t.CanSplit() {
		return nil, nil, false
	}
	cut, cutWidth := 0, int64(0)
	g := uniseg.NewGraphemes(t.Value)
	for g.Next() {
		_, to := g.Positions()
		if to >= len(t.Value) {
			break
		}
		w := t.measure(t.Value[:to])
		if w > width {
			break
		}
		cut, cutWidth = to, w
	}
	if cut == 0 {
		return nil, nil, false
	}
	left := *t
	left.Value, left.width = t.Value[:cut], cutWidth
	right := *t
	right.Value = t.Value[cut:]
	right.width = t.measure(right.Value)
	return &left, &right, true
}

// Spacer is breakable white space. Spacers are dropped at line starts and ends.
type Spacer struct {
	Payload any

	style Style
	x     int64
	width int64
}

// NewSpacer creates a spacer of the given width.
func NewSpacer(width int64, style Style) *Spacer {
	return &Spacer{style: style, width: width}
}

func (s *Spacer) Kind() Kind { return KindSpacer }
func (s *Spacer) X() int64 { return s.x }
func (s *Spacer) Width() int64 { return s.width }
func (s *Spacer) SetX(x int64) { s.x = x }
func (s *Spacer) SetWidth(w int64) { s.width = w }
func (s *Spacer) Style() Style { return s.style }
func (s *Spacer) Ignorable() bool { return true }

func (s *Spacer) Derive(bool) Node {
	c := *s
	return &c
}
