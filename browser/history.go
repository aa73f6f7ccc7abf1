package browser

import (
	"context"
	"net/url"

	"github.com/delaneyj/classic/dom"
)

type entry struct {
	url *url.URL
	doc *dom.Document
}

type history struct {
	entries []*entry
	index   int
}

func (h *history) push(u *url.URL, doc *dom.Document) {
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, &entry{url: u, doc: doc})
	h.index = len(h.entries) - 1
}

func (h *history) current() *entry {
	return h.entries[h.index]
}

// PushState adds a same-document history entry and moves the location to u.
// Main thread only.
func (w *Window) PushState(u *url.URL) {
	w.history.push(u, w.doc)
	w.setLocation(u)
}

// ReplaceState rewrites the current entry. Main thread only.
func (w *Window) ReplaceState(u *url.URL) {
	e := w.history.current()
	e.url = u
	e.doc = w.doc
	w.setLocation(u)
}

// HistoryLen reports the number of entries. Main thread only.
func (w *Window) HistoryLen() int {
	return len(w.history.entries)
}

// HistoryEntries lists entry URLs oldest first. Main thread only.
func (w *Window) HistoryEntries() []string {
	out := make([]string, len(w.history.entries))
	for i, e := range w.history.entries {
		out[i] = e.url.String()
	}
	return out
}

func (w *Window) Back(ctx context.Context) error {
	return w.Go(ctx, -1)
}

func (w *Window) Forward(ctx context.Context) error {
	return w.Go(ctx, 1)
}

// Go traverses history by delta. Entries of the current document only move
// the location and fire popstate; other entries reload their URL.
func (w *Window) Go(ctx context.Context, delta int) error {
	var reload *url.URL
	w.Do(func() {
		target := w.history.index + delta
		if delta == 0 || target < 0 || target >= len(w.history.entries) {
			return
		}
		w.history.index = target
		e := w.history.current()
		if e.doc != w.doc {
			reload = e.url
			return
		}
		w.setLocation(e.url)
		w.dispatch(&dom.Event{Type: "popstate"})
	})
	if reload == nil {
		return nil
	}
	return w.load(ctx, reload.String(), false)
}
