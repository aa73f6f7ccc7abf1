package dom

import "golang.org/x/net/html"

// Event is dispatched at a target node and bubbles up its ancestors.
type Event struct {
	Type   string
	Target *html.Node
	Button int
	Ctrl   bool
	Shift  bool
	Alt    bool
	Meta   bool
	Detail any

	prevented bool
	stopped   bool
}

func (e *Event) PreventDefault() {
	e.prevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// StopPropagation keeps the event from reaching further ancestors. Listeners
// on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

type listener struct {
	fn func(*Event)
}

// Listen subscribes fn to events of type typ reaching n.
func (d *Document) Listen(n *html.Node, typ string, fn func(*Event)) (unsubscribe func()) {
	l := &listener{fn: fn}
	byType, ok := d.listeners[n]
	if !ok {
		byType = map[string][]*listener{}
		d.listeners[n] = byType
	}
	byType[typ] = append(byType[typ], l)

	return func() {
		ls := d.listeners[n][typ]
		for i, existing := range ls {
			if existing == l {
				d.listeners[n][typ] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(d.listeners[n][typ]) == 0 {
			delete(d.listeners[n], typ)
		}
		if len(d.listeners[n]) == 0 {
			delete(d.listeners, n)
		}
	}
}

// Dispatch delivers e from its target up to the document root and reports
// whether the default action should still happen.
func (d *Document) Dispatch(e *Event) bool {
	for n := e.Target; n != nil; n = n.Parent {
		ls := append([]*listener(nil), d.listeners[n][e.Type]...)
		for _, l := range ls {
			l.fn(e)
		}
		if e.stopped {
			break
		}
	}
	return !e.prevented
}
