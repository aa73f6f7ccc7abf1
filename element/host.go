package element

import (
	"fmt"

	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/reactive"
	"golang.org/x/net/html"
)

// Host is a connected instance of a defined element.
type Host struct {
	reg   *Registry
	doc   *dom.Document
	node  *html.Node
	state hostState
}

type hostState struct {
	def          *definition
	props        map[string]*reactive.Cell[string]
	onDisconnect []func()
	connected    bool
}

func newHost(r *Registry, doc *dom.Document, n *html.Node, def *definition) *Host {
	h := &Host{
		reg:  r,
		doc:  doc,
		node: n,
		state: hostState{
			def:       def,
			props:     make(map[string]*reactive.Cell[string], len(def.Props)),
			connected: true,
		},
	}
	for prop, attr := range def.propToAttr {
		h.state.props[prop] = reactive.Lazy(r.tr, func() string {
			return dom.AttrOr(n, attr, "")
		})
	}
	return h
}

func (h *Host) Node() *html.Node {
	return h.node
}

func (h *Host) Document() *dom.Document {
	return h.doc
}

func (h *Host) Connected() bool {
	return h.state.connected
}

// Prop reads a declared prop, subscribing the active computation.
// Undeclared props read as "".
func (h *Host) Prop(name string) string {
	c, ok := h.state.props[name]
	if !ok {
		return ""
	}
	return c.Value()
}

// SetProp writes a declared prop without touching the attribute.
func (h *Host) SetProp(name, value string) error {
	c, ok := h.state.props[name]
	if !ok {
		return fmt.Errorf("set prop %q on <%s>: not declared", name, h.node.Data)
	}
	c.SetValue(value)
	return nil
}

// OnDisconnect queues fn to run when the element leaves the document.
func (h *Host) OnDisconnect(fn func()) {
	h.state.onDisconnect = append(h.state.onDisconnect, fn)
}

func (h *Host) disconnect() {
	h.state.connected = false
	cbs := h.state.onDisconnect
	h.state.onDisconnect = nil
	for _, cb := range cbs {
		cb()
	}
}

func (h *Host) attributeChanged(attr string) {
	prop, ok := h.state.def.attrToProp[attr]
	if !ok {
		return
	}
	h.state.props[prop].SetValue(dom.AttrOr(h.node, attr, ""))
}
