package route

import (
	"net/url"
	"strings"

	"github.com/delaneyj/classic/dom"
	"golang.org/x/net/html"
)

// apply swaps target for the body of a fetched document and returns the slot
// the next document goes into, or nil when the inserted content hosts none.
// Main thread only.
func (r *Router) apply(nav *navContext, src *dom.Document, target *Segment) *Segment {
	doc := nav.doc
	if !doc.Contains(target.anchor) {
		return nil
	}
	if title := src.Title(); title != "" {
		doc.SetTitle(title)
	}
	r.mergeHead(doc, src)

	var nodes []*html.Node
	if body := src.Body(); body != nil {
		for _, c := range dom.Children(body) {
			nodes = append(nodes, dom.Clone(c))
		}
	}
	doc.ReplaceWith(target.anchor, nodes...)
	doc.ReviveScripts(nodes...)

	if len(nodes) == 0 {
		return nil
	}
	seg, ok := nav.segments[nodes[0]]
	if !ok {
		return nil
	}
	return seg.Slot()
}

// mergeHead appends the links and scripts of src's head that doc's head does
// not already carry.
func (r *Router) mergeHead(doc, src *dom.Document) {
	head, srcHead := doc.Head(), src.Head()
	if head == nil || srcHead == nil {
		return
	}
	base := r.win.Location()

	seen := map[string]struct{}{}
	for _, el := range dom.Children(head) {
		if key, ok := headKey(base, el); ok {
			seen[key] = struct{}{}
		}
	}

	var added []*html.Node
	for _, el := range dom.Children(srcHead) {
		key, ok := headKey(base, el)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		added = append(added, dom.Clone(el))
	}
	if len(added) == 0 {
		return
	}
	doc.AppendChild(head, added...)
	doc.ReviveScripts(added...)
}

// headKey identifies a link by its href and a script by its src, resolved
// against base. Inline scripts are keyed by their text.
func headKey(base *url.URL, el *html.Node) (string, bool) {
	var attr string
	switch el.Data {
	case "link":
		attr = "href"
	case "script":
		attr = "src"
	default:
		return "", false
	}
	tag := strings.ToUpper(el.Data)

	ref, ok := dom.Attr(el, attr)
	if !ok || ref == "" {
		if el.Data == "script" {
			return tag + ":inline:" + strings.TrimSpace(dom.TextContent(el)), true
		}
		return tag + ":", true
	}
	if u, err := dom.ResolveURL(base, ref); err == nil {
		ref = u.String()
	}
	return tag + ":" + ref, true
}
