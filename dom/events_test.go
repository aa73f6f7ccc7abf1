package dom_test

import (
	"testing"

	"github.com/delaneyj/classic/dom"
	"github.com/stretchr/testify/assert"
)

func TestDispatchBubbles(t *testing.T) {
	doc := mustParse(t, `<body><div id="outer"><a id="link" href="/x">x</a></div></body>`)
	link := dom.Query(doc.Body(), "#link")

	var order []string
	doc.Listen(link, "click", func(e *dom.Event) { order = append(order, "link") })
	doc.Listen(dom.Query(doc.Body(), "#outer"), "click", func(e *dom.Event) { order = append(order, "outer") })
	doc.Listen(doc.Body(), "click", func(e *dom.Event) {
		order = append(order, "body")
		assert.Same(t, link, e.Target)
	})
	doc.Listen(doc.Body(), "submit", func(e *dom.Event) { order = append(order, "submit") })

	assert.True(t, doc.Dispatch(&dom.Event{Type: "click", Target: link}))
	assert.Equal(t, []string{"link", "outer", "body"}, order)
}

func TestStopPropagationAndPreventDefault(t *testing.T) {
	doc := mustParse(t, `<body><div id="outer"><span id="in"></span></div></body>`)
	in := dom.Query(doc.Body(), "#in")

	reached := false
	doc.Listen(in, "ping", func(e *dom.Event) {
		e.StopPropagation()
		e.PreventDefault()
	})
	doc.Listen(doc.Body(), "ping", func(e *dom.Event) { reached = true })

	assert.False(t, doc.Dispatch(&dom.Event{Type: "ping", Target: in}))
	assert.False(t, reached)
}

func TestUnsubscribe(t *testing.T) {
	doc := dom.NewDocument()
	calls := 0
	unsub := doc.Listen(doc.Body(), "click", func(*dom.Event) { calls++ })

	doc.Dispatch(&dom.Event{Type: "click", Target: doc.Body()})
	unsub()
	doc.Dispatch(&dom.Event{Type: "click", Target: doc.Body()})
	assert.Equal(t, 1, calls)
}
