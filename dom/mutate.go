package dom

import (
	"golang.org/x/net/html"
)

func (d *Document) begin() {
	d.depth++
}

func (d *Document) end() {
	d.depth--
	if d.depth > 0 {
		return
	}
	for _, e := range d.snapshotObservers() {
		e.o.Settled(d)
	}
}

func (d *Document) snapshotObservers() []*observerEntry {
	return append([]*observerEntry(nil), d.observers...)
}

// elements lists the element nodes of the subtree rooted at n in tree order.
func elements(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (d *Document) notifyConnected(roots []*html.Node) {
	var els []*html.Node
	for _, r := range roots {
		els = append(els, elements(r)...)
	}
	for _, el := range els {
		for _, e := range d.snapshotObservers() {
			// an earlier callback may have moved it out again
			if !d.Contains(el) {
				break
			}
			e.o.Connected(d, el)
		}
	}
}

func (d *Document) notifyDisconnected(roots []*html.Node) {
	var els []*html.Node
	for _, r := range roots {
		els = append(els, elements(r)...)
	}
	for _, el := range els {
		for _, e := range d.snapshotObservers() {
			e.o.Disconnected(d, el)
		}
	}
}

// detach unlinks n from its parent, reporting whether it was connected here.
func (d *Document) detach(n *html.Node) bool {
	if n.Parent == nil {
		return false
	}
	connected := d.Contains(n)
	n.Parent.RemoveChild(n)
	return connected
}

func (d *Document) insert(parent, before *html.Node, nodes []*html.Node) {
	var moved []*html.Node
	for _, n := range nodes {
		if n == before {
			continue
		}
		if d.detach(n) {
			moved = append(moved, n)
		}
	}
	if len(moved) > 0 {
		d.notifyDisconnected(moved)
	}
	for _, n := range nodes {
		if n == before {
			continue
		}
		parent.InsertBefore(n, before)
	}
	if d.Contains(parent) {
		d.notifyConnected(nodes)
	}
}

// AppendChild appends nodes to parent, moving them out of any previous parent.
func (d *Document) AppendChild(parent *html.Node, nodes ...*html.Node) {
	d.begin()
	defer d.end()
	d.insert(parent, nil, nodes)
}

// InsertBefore inserts nodes before ref, which must be a child of parent.
func (d *Document) InsertBefore(parent, ref *html.Node, nodes ...*html.Node) {
	d.begin()
	defer d.end()
	d.insert(parent, ref, nodes)
}

// Remove detaches n from the tree.
func (d *Document) Remove(n *html.Node) {
	d.begin()
	defer d.end()
	if d.detach(n) {
		d.notifyDisconnected([]*html.Node{n})
	}
}

// ReplaceWith puts nodes where old was. old is disconnected before any of
// nodes is connected.
func (d *Document) ReplaceWith(old *html.Node, nodes ...*html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	d.begin()
	defer d.end()

	for _, n := range nodes {
		if n.Parent != nil && n != old {
			if d.detach(n) {
				d.notifyDisconnected([]*html.Node{n})
			}
		}
	}
	anchor := old.NextSibling
	wasConnected := d.detach(old)
	if wasConnected {
		d.notifyDisconnected([]*html.Node{old})
	}
	for _, n := range nodes {
		parent.InsertBefore(n, anchor)
	}
	if d.Contains(parent) {
		d.notifyConnected(nodes)
	}
}

// ReplaceChildren removes every child of parent and appends nodes.
func (d *Document) ReplaceChildren(parent *html.Node, nodes ...*html.Node) {
	d.begin()
	defer d.end()

	var removed []*html.Node
	connected := d.Contains(parent)
	for c := parent.FirstChild; c != nil; c = parent.FirstChild {
		parent.RemoveChild(c)
		removed = append(removed, c)
	}
	if connected && len(removed) > 0 {
		d.notifyDisconnected(removed)
	}
	d.insert(parent, nil, nodes)
}

// SetAttr sets an attribute and notifies observers.
func (d *Document) SetAttr(el *html.Node, name, value string) {
	d.begin()
	defer d.end()
	SetAttr(el, name, value)
	if d.Contains(el) {
		for _, e := range d.snapshotObservers() {
			e.o.AttributeChanged(d, el, name)
		}
	}
}

// RemoveAttr deletes an attribute and notifies observers.
func (d *Document) RemoveAttr(el *html.Node, name string) {
	d.begin()
	defer d.end()
	RemoveAttr(el, name)
	if d.Contains(el) {
		for _, e := range d.snapshotObservers() {
			e.o.AttributeChanged(d, el, name)
		}
	}
}

// ConnectAll reports every element of the document as connected. Used once
// after a document is loaded into a window.
func (d *Document) ConnectAll() {
	d.begin()
	defer d.end()
	d.notifyConnected([]*html.Node{d.root})
}

// DisconnectAll reports every element as disconnected, for a document that is
// being unloaded.
func (d *Document) DisconnectAll() {
	d.begin()
	defer d.end()
	d.notifyDisconnected([]*html.Node{d.root})
}
