package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/delaneyj/classic/dom"
	"golang.org/x/net/html"
)

var ErrUnsupportedMethod = errors.New("form method not supported")

type listener struct {
	fn func(*dom.Event)
}

// Listen subscribes fn to window-level events such as popstate. Main thread only.
func (w *Window) Listen(typ string, fn func(*dom.Event)) (unsubscribe func()) {
	l := &listener{fn: fn}
	w.listeners[typ] = append(w.listeners[typ], l)
	return func() {
		ls := w.listeners[typ]
		for i, existing := range ls {
			if existing == l {
				w.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

func (w *Window) dispatch(e *dom.Event) bool {
	ls := append([]*listener(nil), w.listeners[e.Type]...)
	for _, l := range ls {
		l.fn(e)
	}
	return !e.DefaultPrevented()
}

// Modifiers describe the pointer state of a click.
type Modifiers struct {
	Button int
	Ctrl   bool
	Shift  bool
	Alt    bool
	Meta   bool
}

// Click dispatches a click at n. When no listener prevents it and n sits in
// an anchor with an href, the window follows the link with a full navigation.
func (w *Window) Click(ctx context.Context, n *html.Node, m Modifiers) error {
	var follow string
	w.Do(func() {
		e := &dom.Event{
			Type:   "click",
			Target: n,
			Button: m.Button,
			Ctrl:   m.Ctrl,
			Shift:  m.Shift,
			Alt:    m.Alt,
			Meta:   m.Meta,
		}
		if !w.doc.Dispatch(e) {
			return
		}
		a := dom.Closest(n, "a")
		if a == nil {
			return
		}
		if href, ok := dom.Attr(a, "href"); ok {
			follow = href
		}
	})
	if follow == "" {
		return nil
	}
	return w.Assign(ctx, follow)
}

// Submit dispatches a submit event at form and, unless prevented, performs a
// full navigation to the encoded GET submission.
func (w *Window) Submit(ctx context.Context, form *html.Node) error {
	var (
		target *url.URL
		err    error
	)
	w.Do(func() {
		if !w.doc.Dispatch(&dom.Event{Type: "submit", Target: form}) {
			return
		}
		if FormMethod(form) != "get" {
			err = fmt.Errorf("submit: %q: %w", FormMethod(form), ErrUnsupportedMethod)
			return
		}
		target, err = FormURL(form, w.location)
	})
	if err != nil || target == nil {
		return err
	}
	return w.Assign(ctx, target.String())
}

// FormMethod is the lower-cased method attribute, "get" when absent.
func FormMethod(form *html.Node) string {
	m := strings.ToLower(strings.TrimSpace(dom.AttrOr(form, "method", "get")))
	if m == "" {
		return "get"
	}
	return m
}

// FormURL builds the URL a GET submission of form navigates to: the action
// resolved against base with its query replaced by the encoded fields.
func FormURL(form *html.Node, base *url.URL) (*url.URL, error) {
	action, ok := dom.Attr(form, "action")
	if !ok || action == "" {
		action = base.String()
	}
	u, err := dom.ResolveURL(base, action)
	if err != nil {
		return nil, err
	}
	u.RawQuery = FormValues(form).Encode()
	u.Fragment = ""
	return u, nil
}

// FormValues collects the successful controls of form.
func FormValues(form *html.Node) url.Values {
	vals := url.Values{}
	for _, el := range dom.QueryAll(form, "input[name], select[name], textarea[name]") {
		if _, disabled := dom.Attr(el, "disabled"); disabled {
			continue
		}
		name, _ := dom.Attr(el, "name")
		switch el.Data {
		case "input":
			switch strings.ToLower(dom.AttrOr(el, "type", "text")) {
			case "checkbox", "radio":
				if _, checked := dom.Attr(el, "checked"); !checked {
					continue
				}
				vals.Add(name, dom.AttrOr(el, "value", "on"))
			case "submit", "button", "reset", "image", "file":
				continue
			default:
				vals.Add(name, dom.AttrOr(el, "value", ""))
			}
		case "textarea":
			vals.Add(name, dom.TextContent(el))
		case "select":
			opts := dom.QueryAll(el, "option")
			var chosen *html.Node
			for _, o := range opts {
				if _, sel := dom.Attr(o, "selected"); sel {
					chosen = o
					break
				}
			}
			if chosen == nil && len(opts) > 0 {
				chosen = opts[0]
			}
			if chosen != nil {
				vals.Add(name, dom.AttrOr(chosen, "value", strings.TrimSpace(dom.TextContent(chosen))))
			}
		}
	}
	return vals
}
