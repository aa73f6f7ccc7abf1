// Package element registers custom element tags with a document lifecycle.
//
// Props of a defined element are reactive cells initialised from their
// hyphenated attribute and kept in sync with later attribute writes.
package element

import (
	"errors"
	"fmt"
	"strings"

	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/reactive"
	"golang.org/x/net/html"
)

var (
	ErrInvalidTag     = errors.New("custom element tag must contain a hyphen")
	ErrAlreadyDefined = errors.New("custom element already defined")
)

// Definition describes a custom element.
type Definition struct {
	// Props are camelCase names, observed through their hyphenated attribute.
	Props []string
	// Setup runs every time an element of this tag connects.
	Setup func(h *Host)
}

type Registry struct {
	tr      *reactive.Tracker
	defs    map[string]*definition
	hosts   map[*html.Node]*Host
	docs    map[*dom.Document]func()
	settled []*settledHook
}

type definition struct {
	Definition
	attrToProp map[string]string
	propToAttr map[string]string
}

type settledHook struct {
	fn func(doc *dom.Document)
}

func NewRegistry(tr *reactive.Tracker) *Registry {
	return &Registry{
		tr:    tr,
		defs:  map[string]*definition{},
		hosts: map[*html.Node]*Host{},
		docs:  map[*dom.Document]func(){},
	}
}

func (r *Registry) Tracker() *reactive.Tracker {
	return r.tr
}

// Define registers tag. Elements with that tag already connected in an
// attached document are upgraded immediately.
func (r *Registry) Define(tag string, def Definition) error {
	tag = strings.ToLower(tag)
	if !strings.Contains(tag, "-") {
		return fmt.Errorf("define %q: %w", tag, ErrInvalidTag)
	}
	if _, ok := r.defs[tag]; ok {
		return fmt.Errorf("define %q: %w", tag, ErrAlreadyDefined)
	}

	d := &definition{
		Definition: def,
		attrToProp: map[string]string{},
		propToAttr: map[string]string{},
	}
	for _, prop := range def.Props {
		attr := Hyphenize(prop)
		d.attrToProp[attr] = prop
		d.propToAttr[prop] = attr
	}
	r.defs[tag] = d

	for doc := range r.docs {
		for _, el := range dom.QueryAll(doc.Root(), tag) {
			r.Connected(doc, el)
		}
	}
	return nil
}

func (r *Registry) Defined(tag string) bool {
	_, ok := r.defs[strings.ToLower(tag)]
	return ok
}

// Attach starts observing doc and connects the elements it already holds.
func (r *Registry) Attach(doc *dom.Document) {
	if _, ok := r.docs[doc]; ok {
		return
	}
	r.docs[doc] = doc.Observe(r)
	doc.ConnectAll()
}

// Detach disconnects every element of doc and stops observing it.
func (r *Registry) Detach(doc *dom.Document) {
	cancel, ok := r.docs[doc]
	if !ok {
		return
	}
	doc.DisconnectAll()
	cancel()
	delete(r.docs, doc)
}

// Host returns the upgraded element behind n.
func (r *Registry) Host(n *html.Node) (*Host, bool) {
	h, ok := r.hosts[n]
	return h, ok
}

// OnSettled calls fn after each outermost mutation of an attached document.
func (r *Registry) OnSettled(fn func(doc *dom.Document)) (cancel func()) {
	hook := &settledHook{fn: fn}
	r.settled = append(r.settled, hook)
	return func() {
		for i, existing := range r.settled {
			if existing == hook {
				r.settled = append(r.settled[:i:i], r.settled[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) Connected(doc *dom.Document, el *html.Node) {
	def, ok := r.defs[el.Data]
	if !ok {
		return
	}
	if _, upgraded := r.hosts[el]; upgraded {
		return
	}
	h := newHost(r, doc, el, def)
	r.hosts[el] = h
	if def.Setup != nil {
		def.Setup(h)
	}
}

func (r *Registry) Disconnected(_ *dom.Document, el *html.Node) {
	h, ok := r.hosts[el]
	if !ok {
		return
	}
	delete(r.hosts, el)
	h.disconnect()
}

func (r *Registry) AttributeChanged(_ *dom.Document, el *html.Node, name string) {
	h, ok := r.hosts[el]
	if !ok {
		return
	}
	h.attributeChanged(name)
}

func (r *Registry) Settled(doc *dom.Document) {
	hooks := append([]*settledHook(nil), r.settled...)
	for _, hook := range hooks {
		hook.fn(doc)
	}
}

// Hyphenize maps a camelCase prop name to its attribute name.
func Hyphenize(camel string) string {
	var sb strings.Builder
	for _, r := range camel {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
