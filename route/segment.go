package route

import "golang.org/x/net/html"

const wildcard = "*"

// Segment is a mounted node of the nested route tree.
type Segment struct {
	anchor   *html.Node
	pattern  func() string
	parent   *Segment
	children []*Segment
}

func (s *Segment) Anchor() *html.Node {
	return s.anchor
}

// Pattern is a literal path component, "*" for any component, or "/" for the
// root. Segments without a path attribute match nothing.
func (s *Segment) Pattern() string {
	return s.pattern()
}

func (s *Segment) Parent() *Segment {
	return s.parent
}

func (s *Segment) Children() []*Segment {
	return append([]*Segment(nil), s.children...)
}

// Slot is the child segment nested content renders into: the most recently
// registered one.
func (s *Segment) Slot() *Segment {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[len(s.children)-1]
}

// childFor picks the child matching part. A literal match beats a wildcard.
func (s *Segment) childFor(part string) *Segment {
	var wild *Segment
	for i := len(s.children) - 1; i >= 0; i-- {
		c := s.children[i]
		switch c.Pattern() {
		case part:
			return c
		case wildcard:
			if wild == nil {
				wild = c
			}
		}
	}
	return wild
}

func (s *Segment) claim(child *Segment) {
	child.parent = s
	s.children = append(s.children, child)
}

func (s *Segment) release(child *Segment) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i:i], s.children[i+1:]...)
			break
		}
	}
	if child.parent == s {
		child.parent = nil
	}
}
