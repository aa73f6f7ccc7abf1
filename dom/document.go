package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MutationObserver is notified about structural changes of a Document.
// Connected and Disconnected are called for every element of an inserted or
// removed subtree, parents before children. Settled follows the outermost
// mutation once all nested notifications have been delivered.
type MutationObserver interface {
	Connected(doc *Document, el *html.Node)
	Disconnected(doc *Document, el *html.Node)
	AttributeChanged(doc *Document, el *html.Node, name string)
	Settled(doc *Document)
}

// ScriptRunner receives script elements that were freshly inserted and would
// execute in a browser.
type ScriptRunner func(doc *Document, script *html.Node)

type Document struct {
	root      *html.Node
	observers []*observerEntry
	listeners map[*html.Node]map[string][]*listener
	scripts   ScriptRunner
	depth     int
}

type observerEntry struct {
	o MutationObserver
}

const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// NewDocument returns an empty document with head and body.
func NewDocument() *Document {
	d, err := Parse(blankDocument)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse builds a document from markup. Missing html, head and body elements
// are synthesized by the parser.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:      root,
		listeners: map[*html.Node]map[string][]*listener{},
	}, nil
}

// Root is the html.DocumentNode.
func (d *Document) Root() *html.Node {
	return d.root
}

func (d *Document) documentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

func (d *Document) child(a atom.Atom) *html.Node {
	el := d.documentElement()
	if el == nil {
		return nil
	}
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func (d *Document) Head() *html.Node {
	return d.child(atom.Head)
}

func (d *Document) Body() *html.Node {
	return d.child(atom.Body)
}

// Title returns the text of the first title element in head.
func (d *Document) Title() string {
	head := d.Head()
	if head == nil {
		return ""
	}
	t := Query(head, "title")
	if t == nil {
		return ""
	}
	return strings.TrimSpace(TextContent(t))
}

// SetTitle replaces the title text, creating the element when absent.
func (d *Document) SetTitle(title string) {
	head := d.Head()
	if head == nil {
		return
	}
	t := Query(head, "title")
	if t == nil {
		t = NewElement("title")
		t.AppendChild(NewText(title))
		d.AppendChild(head, t)
		return
	}
	for c := t.FirstChild; c != nil; c = t.FirstChild {
		t.RemoveChild(c)
	}
	t.AppendChild(NewText(title))
}

// Observe registers o until the returned function is called.
func (d *Document) Observe(o MutationObserver) (cancel func()) {
	e := &observerEntry{o: o}
	d.observers = append(d.observers, e)
	return func() {
		for i, existing := range d.observers {
			if existing == e {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) SetScriptRunner(run ScriptRunner) {
	d.scripts = run
}

// Contains reports whether n is attached to this document's tree.
func (d *Document) Contains(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

// Render serializes the whole document.
func (d *Document) Render() string {
	return Render(d.root)
}
