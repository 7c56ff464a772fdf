package inline

// Sequence is the flat, measured content of a paragraph: parallel lists of
// elements and the nodes backing them.
type Sequence struct {
	elements []Element
	nodes    []Node
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Add appends an element and its node.
func (s *Sequence) Add(e Element, n Node) *Sequence {
	s.elements = append(s.elements, e)
	s.nodes = append(s.nodes, n)
	return s
}

// Start appends a START element for b.
func (s *Sequence) Start(b *Box) *Sequence { return s.Add(StartMarker, b) }

// End appends an END element for b.
func (s *Sequence) End(b *Box) *Sequence { return s.Add(EndMarker, b) }

// Content appends a CONTENT element for n.
func (s *Sequence) Content(n Node) *Sequence { return s.Add(ContentMarker, n) }

func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elements)
}

func (s *Sequence) Element(i int) Element { return s.elements[i] }

func (s *Sequence) Node(i int) Node { return s.nodes[i] }

// MinimumLength is the width element i needs on a line.
func (s *Sequence) MinimumLength(i int) int64 {
	return s.elements[i].MaximumWidth(s.nodes[i])
}
