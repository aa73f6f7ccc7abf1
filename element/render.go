package element

import (
	"fmt"

	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/reactive"
	"golang.org/x/net/html"
)

// Child is rendered by Host.Render. Accepted kinds are string, *html.Node,
// func() string and func() *html.Node; functions re-render whenever a cell
// they read changes, replacing only their own node.
type Child any

// Render replaces the host's children.
func (h *Host) Render(children ...Child) {
	nodes := make([]*html.Node, 0, len(children))
	for _, c := range children {
		var node *html.Node
		reactive.OnChange(h.reg.tr, func() *html.Node {
			node = toNode(c)
			return node
		}, func(cur, prev *html.Node) {
			if cur != prev {
				h.doc.ReplaceWith(prev, cur)
			}
		})
		nodes = append(nodes, node)
	}
	h.doc.ReplaceChildren(h.node, nodes...)
}

func toNode(c Child) *html.Node {
	switch c := c.(type) {
	case nil:
		return dom.NewText("")
	case string:
		return dom.NewText(c)
	case *html.Node:
		return c
	case func() string:
		return dom.NewText(c())
	case func() *html.Node:
		if n := c(); n != nil {
			return n
		}
		return dom.NewText("")
	case fmt.Stringer:
		return dom.NewText(c.String())
	default:
		return dom.NewText(fmt.Sprint(c))
	}
}
