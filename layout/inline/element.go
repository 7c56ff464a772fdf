package inline

// Classification tells how an element of a sequence is interpreted.
type Classification int

const (
	Start   Classification = iota // opens an inline box
	Content                       // text run, spacer or inline block
	End                           // closes an inline box
)

func (c Classification) String() string {
	switch c {
	case Start:
		return "START"
	case Content:
		return "CONTENT"
	case End:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// Element classifies a node of a sequence and reports its width contribution.
type Element interface {
	Classification() Classification
	MaximumWidth(n Node) int64
}

// StartElement opens the box held by the matching node.
type StartElement struct{}

// EndElement closes the box held by the matching node.
type EndElement struct{}

// ContentElement places the matching node as a leaf.
type ContentElement struct{}

var (
	StartMarker   Element = StartElement{}
	EndMarker     Element = EndElement{}
	ContentMarker Element = ContentElement{}
)

func (StartElement) Classification() Classification { return Start }

// MaximumWidth of a START is the left edge of its box.
func (StartElement) MaximumWidth(n Node) int64 {
	if b, ok := n.(*Box); ok {
		return b.LeadingInset()
	}
	return 0
}

func (EndElement) Classification() Classification { return End }

// MaximumWidth of an END is the right edge of its box.
func (EndElement) MaximumWidth(n Node) int64 {
	if b, ok := n.(*Box); ok {
		return b.TrailingInset()
	}
	return 0
}

func (ContentElement) Classification() Classification { return Content }

func (ContentElement) MaximumWidth(n Node) int64 {
	return n.Width()
}

func isSpacerContent(e Element, n Node) bool {
	return e.Classification() == Content && n.Kind() == KindSpacer
}

// breaksBetween reports whether a chunk boundary lies between element prev
// (backed by prevNode) and element next. ChunkIterator and the processors'
// iterate share this rule.
func breaksBetween(prev Element, prevNode Node, next Element) bool {
	return !isSpacerContent(prev, prevNode) &&
		prev.Classification() != Start &&
		next.Classification() != End
}
