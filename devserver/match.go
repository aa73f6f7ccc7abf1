package devserver

import (
	"fmt"
	"strings"
)

type node struct {
	literal map[string]*node
	wild    *node
	route   *Route
}

func components(path string) []string {
	var out []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) insert(r *Route) error {
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("pattern %q: %w", r.Pattern, ErrBadPattern)
	}
	cur := n
	for _, c := range components(r.Pattern) {
		if c == "*" {
			if cur.wild == nil {
				cur.wild = &node{}
			}
			cur = cur.wild
			continue
		}
		if cur.literal == nil {
			cur.literal = map[string]*node{}
		}
		next, ok := cur.literal[c]
		if !ok {
			next = &node{}
			cur.literal[c] = next
		}
		cur = next
	}
	if cur.route != nil {
		return fmt.Errorf("pattern %q: %w", r.Pattern, ErrDuplicatePattern)
	}
	cur.route = r
	return nil
}

// lookup prefers literal components, falling back to wildcards.
func (n *node) lookup(comps []string) *Route {
	if len(comps) == 0 {
		return n.route
	}
	if next, ok := n.literal[comps[0]]; ok {
		if r := next.lookup(comps[1:]); r != nil {
			return r
		}
	}
	if n.wild != nil {
		return n.wild.lookup(comps[1:])
	}
	return nil
}

// component is the pattern component r was registered under at depth,
// the literal from the request when r is nil.
func component(r *Route, comps []string, depth int) string {
	if r == nil {
		return comps[depth]
	}
	pc := components(r.Pattern)
	if depth < len(pc) {
		return pc[depth]
	}
	return comps[depth]
}
