// Package browser is a headless window: one live document, a location, a
// session history, window-level events and an HTTP fetcher.
//
// A Window has a single main thread, modelled as a lock. Document, history
// and reactive state may only be touched inside Do or from event listeners,
// which always run on the main thread. Network calls never hold the lock.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/element"
	"github.com/delaneyj/classic/reactive"
	"github.com/rs/zerolog"
)

type Window struct {
	mu sync.Mutex

	client   *http.Client
	log      zerolog.Logger
	scripts  dom.ScriptRunner
	tracker  *reactive.Tracker
	elements *element.Registry

	doc       *dom.Document
	location  *url.URL
	href      *reactive.Cell[string]
	history   history
	listeners map[string][]*listener
}

type Option func(*Window)

func WithHTTPClient(c *http.Client) Option {
	return func(w *Window) {
		w.client = c
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *Window) {
		w.log = l
	}
}

// WithScriptRunner receives every script that executes: those present when a
// document loads and those revived after partial navigations.
func WithScriptRunner(run dom.ScriptRunner) Option {
	return func(w *Window) {
		w.scripts = run
	}
}

const blankURL = "about:blank"

// New returns a window showing an empty document at about:blank.
func New(opts ...Option) *Window {
	w := &Window{
		client:    http.DefaultClient,
		log:       zerolog.Nop(),
		tracker:   reactive.NewTracker(),
		listeners: map[string][]*listener{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.elements = element.NewRegistry(w.tracker)
	w.href = reactive.Signal(w.tracker, blankURL)

	blank, _ := url.Parse(blankURL)
	w.swap(dom.NewDocument(), blank)
	w.history.push(blank, w.doc)
	return w
}

// Do runs fn on the main thread. fn must not call Do again.
func (w *Window) Do(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Document is the live document. Main thread only.
func (w *Window) Document() *dom.Document {
	return w.doc
}

// Location returns a copy of the current URL. Main thread only.
func (w *Window) Location() *url.URL {
	u := *w.location
	return &u
}

// Href is a reactive view of the location. Main thread only.
func (w *Window) Href() *reactive.Cell[string] {
	return w.href
}

// Elements is the custom element registry shared by every document this
// window loads. Main thread only.
func (w *Window) Elements() *element.Registry {
	return w.elements
}

func (w *Window) Tracker() *reactive.Tracker {
	return w.tracker
}

func (w *Window) Logger() zerolog.Logger {
	return w.log
}

// Resolve resolves ref against the current location. Main thread only.
func (w *Window) Resolve(ref string) (*url.URL, error) {
	return dom.ResolveURL(w.location, ref)
}

func (w *Window) setLocation(u *url.URL) {
	w.location = u
	w.href.SetValue(u.String())
}

// swap unloads the current document and installs doc. Main thread only.
func (w *Window) swap(doc *dom.Document, u *url.URL) {
	if w.doc != nil {
		w.elements.Detach(w.doc)
	}
	doc.SetScriptRunner(w.scripts)
	w.doc = doc
	w.setLocation(u)
	w.elements.Attach(doc)

	if w.scripts != nil {
		for _, s := range dom.QueryAll(doc.Root(), "script") {
			w.scripts(doc, s)
		}
	}
}

// LoadHTML installs markup as a new document at rawURL and pushes a history
// entry, without touching the network.
func (w *Window) LoadHTML(rawURL, markup string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("load %q: %w", rawURL, err)
	}
	doc, err := dom.Parse(markup)
	if err != nil {
		return fmt.Errorf("load %q: %w", rawURL, err)
	}
	w.Do(func() {
		w.swap(doc, u)
		w.history.push(u, doc)
	})
	return nil
}

// Open is Assign for the first page of a window.
func (w *Window) Open(ctx context.Context, rawURL string) error {
	return w.Assign(ctx, rawURL)
}

// Assign performs an ordinary full-document navigation to href.
func (w *Window) Assign(ctx context.Context, href string) error {
	return w.load(ctx, href, true)
}

func (w *Window) load(ctx context.Context, href string, push bool) error {
	var (
		u   *url.URL
		err error
	)
	w.Do(func() {
		u, err = w.Resolve(href)
	})
	if err != nil {
		return err
	}

	res, err := w.Fetch(ctx, u.String())
	if err != nil {
		return err
	}
	doc, err := dom.Parse(res.Body)
	if err != nil {
		return fmt.Errorf("load %s: %w", res.URL, err)
	}

	w.log.Debug().Str("url", res.URL.String()).Int("status", res.Status).Msg("document loaded")
	w.Do(func() {
		w.swap(doc, res.URL)
		if push {
			w.history.push(res.URL, doc)
		} else {
			w.history.current().doc = doc
		}
	})
	return nil
}
