package inline

// boxStack turns placed elements back into a box tree. It mirrors the open
// START elements of the line being materialised.
type boxStack struct {
	contexts []*Box
	pending  []Node
	roots    []*Box
}

func (s *boxStack) reset() {
	clear(s.contexts)
	clear(s.pending)
	clear(s.roots)
	s.contexts = s.contexts[:0]
	s.pending = s.pending[:0]
	s.roots = s.roots[:0]
}

func (s *boxStack) top() *Box {
	if len(s.contexts) == 0 {
		return nil
	}
	return s.contexts[len(s.contexts)-1]
}

// open pushes a derived box positioned at x. Pending ignorable content of
// the enclosing box is flushed first.
func (s *boxStack) open(b *Box, x int64) {
	s.flush()
	c := b.derive(false)
	c.x = x
	c.width = 0
	s.contexts = append(s.contexts, c)
}

// close pops the innermost box and gives it the right edge right.
// Trailing ignorable content of the box is dropped.
func (s *boxStack) close(right int64) error {
	c := s.top()
	if c == nil {
		return ErrContentOutsideBox
	}
	s.pending = s.pending[:0]
	s.contexts = s.contexts[:len(s.contexts)-1]
	c.width = right - c.x
	s.attach(c)
	return nil
}

func (s *boxStack) attach(c *Box) {
	if parent := s.top(); parent != nil {
		parent.AddChild(c)
		return
	}
	s.roots = append(s.roots, c)
}

// add derives n, places it at x with width w and attaches it to the open box.
func (s *boxStack) add(n Node, x, w int64) error {
	parent := s.top()
	if parent == nil {
		return ErrContentOutsideBox
	}
	c := n.Derive(true)
	c.SetX(x)
	c.SetWidth(w)
	if parent.style.keepsWhitespace() {
		parent.AddChild(c)
		return nil
	}
	if c.Ignorable() {
		s.pending = append(s.pending, c)
		return nil
	}
	s.flush()
	parent.AddChild(c)
	return nil
}

func (s *boxStack) flush() {
	if parent := s.top(); parent != nil {
		for _, n := range s.pending {
			parent.AddChild(n)
		}
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}

// closeAll closes every open box at the right edge right.
func (s *boxStack) closeAll(right int64) {
	for len(s.contexts) > 0 {
		_ = s.close(right)
	}
}

// splitAll cuts every open box at right. The open boxes are closed and the
// remainders, outermost first, are returned for the next line.
func (s *boxStack) splitAll(right int64) []*Box {
	if len(s.contexts) == 0 {
		return nil
	}
	rest := make([]*Box, len(s.contexts))
	for i, c := range s.contexts {
		rest[i] = c.Split()
	}
	s.closeAll(right)
	return rest
}

// root returns the line box. Several top level boxes are wrapped into an
// anonymous line box.
func (s *boxStack) root() *Box {
	switch len(s.roots) {
	case 0:
		return nil
	case 1:
		return s.roots[0]
	}
	first, last := s.roots[0], s.roots[len(s.roots)-1]
	line := NewBox("", Style{})
	line.x = first.x
	line.width = last.x + last.width - first.x
	for _, r := range s.roots {
		line.AddChild(r)
	}
	return line
}
