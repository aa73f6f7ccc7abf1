package route

import (
	"github.com/delaneyj/classic/browser"
	"github.com/delaneyj/classic/dom"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// navContext exists while the routed document has at least one segment.
type navContext struct {
	doc      *dom.Document
	root     *Segment
	segments map[*html.Node]*Segment
	flights  *singleflight.Group
	gen      uint64
	unbind   []func()
}

func (r *Router) ensureContext(doc *dom.Document) *navContext {
	if r.nav != nil {
		if r.nav.doc == doc {
			return r.nav
		}
		r.teardown()
	}

	body := doc.Body()
	nav := &navContext{
		doc: doc,
		root: &Segment{
			anchor:  body,
			pattern: func() string { return "/" },
		},
		segments: map[*html.Node]*Segment{},
		flights:  &singleflight.Group{},
	}
	nav.unbind = []func(){
		doc.Listen(body, "click", r.onClick),
		doc.Listen(body, "submit", r.onSubmit),
		r.win.Listen("popstate", r.onPopState),
	}
	r.nav = nav
	r.log.Debug().Msg("navigation context created")
	return nav
}

func (r *Router) teardown() {
	for _, fn := range r.nav.unbind {
		fn()
	}
	r.nav = nil
	r.log.Debug().Msg("navigation context released")
}

// nearest is the closest segment enclosing n, or the root.
func (nav *navContext) nearest(n *html.Node) *Segment {
	for p := n.Parent; p != nil; p = p.Parent {
		if s, ok := nav.segments[p]; ok {
			return s
		}
	}
	return nav.root
}

func (r *Router) onClick(e *dom.Event) {
	if e.DefaultPrevented() || e.Button != 0 || e.Ctrl || e.Shift || e.Meta || e.Alt {
		return
	}
	a := dom.Closest(e.Target, "a")
	if a == nil {
		return
	}
	href, ok := dom.Attr(a, "href")
	if !ok {
		return
	}
	if _, ok := dom.Attr(a, "download"); ok {
		return
	}
	if t := dom.AttrOr(a, "target", "_self"); t != "" && t != "_self" {
		return
	}
	u, err := r.win.Resolve(href)
	if err != nil || !dom.SameOrigin(u, r.win.Location()) {
		return
	}
	e.PreventDefault()
	r.spawn(u.String())
}

func (r *Router) onSubmit(e *dom.Event) {
	form := e.Target
	if e.DefaultPrevented() || !dom.IsElement(form, "form") || browser.FormMethod(form) != "get" {
		return
	}
	loc := r.win.Location()
	u, err := browser.FormURL(form, loc)
	if err != nil || !dom.SameOrigin(u, loc) {
		return
	}
	e.PreventDefault()
	r.spawn(u.String())
}

func (r *Router) onPopState(*dom.Event) {
	r.spawn(r.win.Location().String())
}
