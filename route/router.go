package route

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/delaneyj/classic/browser"
	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/element"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

// Router drives partial navigation for the documents a window loads.
type Router struct {
	win     *browser.Window
	cfg     config
	log     zerolog.Logger
	tracer  trace.Tracer
	metrics *metrics

	// main thread
	nav *navContext

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New defines the segment element on win and starts routing every document
// that contains one.
func New(win *browser.Window, opts ...Option) (*Router, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	m, err := newMetrics(cfg.registerer)
	if err != nil {
		return nil, fmt.Errorf("route metrics: %w", err)
	}

	r := &Router{
		win:     win,
		cfg:     cfg,
		log:     cfg.log.With().Str("component", "route").Logger(),
		tracer:  cfg.tracer,
		metrics: m,
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())

	win.Do(func() {
		reg := win.Elements()
		reg.OnSettled(r.settled)
		err = reg.Define(cfg.tag, element.Definition{
			Props: []string{"path"},
			Setup: r.mount,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	return r, nil
}

// Wait blocks until every navigation started by events or redirects, and every
// fetch still in flight, is done.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Close cancels background navigations and waits for them.
func (r *Router) Close() {
	r.cancel()
	r.wg.Wait()
}

// Root is the body segment of the routed document, nil while the document has
// no segments. Main thread only.
func (r *Router) Root() *Segment {
	if r.nav == nil {
		return nil
	}
	return r.nav.root
}

// Lookup returns the segment anchored at n. Main thread only.
func (r *Router) Lookup(n *html.Node) (*Segment, bool) {
	if r.nav == nil {
		return nil, false
	}
	s, ok := r.nav.segments[n]
	return s, ok
}

// Resolve reports what navigating to href would fetch and replace, or false
// when href would need a full navigation. Main thread only.
func (r *Router) Resolve(href string) (*Resolution, bool) {
	u, err := r.win.Resolve(href)
	if err != nil || r.nav == nil || !dom.SameOrigin(u, r.win.Location()) {
		return nil, false
	}
	res := r.resolve(u)
	return res, res != nil
}

func (r *Router) resolve(u *url.URL) *Resolution {
	return resolve(r.nav.root, u.EscapedPath(), u.RawQuery, r.cfg.layoutParam, r.cfg.partParam)
}

// mount registers a connected segment element with its nearest ancestor
// segment. Main thread only.
func (r *Router) mount(h *element.Host) {
	nav := r.ensureContext(h.Document())
	seg := &Segment{
		anchor:  h.Node(),
		pattern: func() string { return h.Prop("path") },
	}
	nav.nearest(h.Node()).claim(seg)
	nav.segments[h.Node()] = seg

	h.OnDisconnect(func() {
		if seg.parent != nil {
			seg.parent.release(seg)
		}
		if nav.segments[seg.anchor] == seg {
			delete(nav.segments, seg.anchor)
		}
	})
}

// settled tears the context down once a mutation batch leaves no segments.
func (r *Router) settled(doc *dom.Document) {
	if r.nav == nil || r.nav.doc != doc {
		return
	}
	if len(r.nav.segments) == 0 {
		r.teardown()
	}
}

// spawn runs a navigation in the background, as event listeners do.
func (r *Router) spawn(href string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Navigate(r.ctx, href); err != nil {
			r.log.Debug().Err(err).Str("href", href).Msg("background navigation failed")
		}
	}()
}
