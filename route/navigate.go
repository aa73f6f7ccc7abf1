package route

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/delaneyj/classic/dom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrRedirected is returned by a navigation whose fetch was redirected;
	// a new navigation to the redirect target has been started in its place.
	ErrRedirected = errors.New("partial fetch redirected")

	errStaleFetch = errors.New("navigation context replaced during fetch")
)

// plan is one navigation in flight.
type plan struct {
	nav    *navContext
	gen    uint64
	dest   *url.URL
	target *Segment
	steps  []*step
}

type step struct {
	url  string
	done chan struct{}
	doc  *dom.Document
	err  error
}

type fetched struct {
	doc   *dom.Document
	bytes int
}

// current reports whether p is still the latest navigation. Main thread only.
func (r *Router) current(p *plan) bool {
	return r.nav == p.nav && p.nav.gen == p.gen
}

// Navigate moves the window to href, fetching and swapping only the segments
// that differ from what is mounted. Cross-origin URLs and URLs no segment
// can host fall back to a full navigation.
//
// A navigation overtaken by a newer one stops mutating the document and
// returns nil.
func (r *Router) Navigate(ctx context.Context, href string) (err error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "route.navigate", trace.WithAttributes(attribute.String("href", href)))
	result := "applied"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if result == "applied" {
				result = "failed"
			}
		}
		span.SetAttributes(attribute.String("result", result))
		span.End()
		r.metrics.navigated(result, time.Since(start))
	}()

	var (
		p        *plan
		dest     *url.URL
		fallback bool
	)
	r.win.Do(func() {
		dest, err = r.win.Resolve(href)
		if err != nil {
			return
		}
		if r.nav == nil || !dom.SameOrigin(dest, r.win.Location()) {
			fallback = true
			return
		}
		res := r.resolve(dest)
		if res == nil {
			fallback = true
			return
		}
		p = r.begin(ctx, dest, res)
	})
	if err != nil {
		return fmt.Errorf("navigate %q: %w", href, err)
	}
	if fallback {
		result = "full"
		r.log.Debug().Str("href", dest.String()).Msg("full navigation")
		return r.win.Assign(ctx, dest.String())
	}
	r.log.Debug().Str("href", dest.String()).Int("fetches", len(p.steps)).Uint64("gen", p.gen).Msg("navigate")

	settled, err := r.suspend(ctx, p)
	if err != nil {
		return err
	}
	if settled {
		if failed := p.failed(); failed != nil {
			if errors.Is(failed, ErrRedirected) {
				result = "redirected"
				return failed
			}
			var superseded bool
			r.win.Do(func() {
				superseded = !r.current(p)
			})
			if superseded {
				result = "superseded"
				return nil
			}
			return failed
		}
	}

	for _, s := range p.steps {
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if errors.Is(s.err, ErrRedirected) {
			result = "redirected"
			return s.err
		}

		var superseded, stop bool
		r.win.Do(func() {
			if !r.current(p) {
				superseded = true
				return
			}
			if s.err != nil || s.doc == nil {
				return
			}
			next := r.apply(p.nav, s.doc, p.target)
			if next == nil {
				stop = true
				return
			}
			p.target = next
		})
		if superseded {
			result = "superseded"
			r.log.Debug().Str("href", dest.String()).Uint64("gen", p.gen).Msg("navigation superseded")
			return nil
		}
		if s.err != nil {
			return s.err
		}
		if stop {
			break
		}
	}

	r.win.Do(func() {
		if !r.current(p) {
			result = "superseded"
			return
		}
		if r.win.Location().String() != dest.String() {
			r.win.PushState(dest)
		}
	})
	return nil
}

// failed is a redirect if any step was redirected, else the first step
// error in request order. Only meaningful once every step is done.
func (p *plan) failed() error {
	var first error
	for _, s := range p.steps {
		if errors.Is(s.err, ErrRedirected) {
			return s.err
		}
		if first == nil {
			first = s.err
		}
	}
	return first
}

// begin bumps the generation and starts, or joins, every fetch of res.
// Main thread only.
func (r *Router) begin(ctx context.Context, dest *url.URL, res *Resolution) *plan {
	nav := r.nav
	nav.gen++
	p := &plan{
		nav:    nav,
		gen:    nav.gen,
		dest:   dest,
		target: res.Target,
	}

	fctx := context.WithoutCancel(ctx)
	for _, ref := range res.URLs {
		abs := ref
		if u, err := dest.Parse(ref); err == nil {
			abs = u.String()
		}
		s := &step{url: abs, done: make(chan struct{})}
		p.steps = append(p.steps, s)

		flights := nav.flights
		started := time.Now()
		r.wg.Add(1)
		ch := flights.DoChan(abs, func() (any, error) {
			return r.fetch(fctx, flights, abs)
		})
		go func() {
			defer r.wg.Done()
			out := <-ch
			info := FetchInfo{
				URL:      abs,
				Duration: time.Since(started),
				Shared:   out.Shared,
				Err:      out.Err,
			}
			if f, ok := out.Val.(*fetched); ok && f != nil {
				s.doc = f.doc
				info.Bytes = f.bytes
			}
			s.err = out.Err
			r.metrics.fetched(out.Shared)
			if r.cfg.onFetch != nil {
				r.cfg.onFetch(info)
			}
			close(s.done)
		}()
	}
	return p
}

// suspend waits for every fetch up to the suspense delay, then swaps the
// target for a loading placeholder if the navigation is still current.
// settled reports whether every fetch finished before the delay.
func (r *Router) suspend(ctx context.Context, p *plan) (settled bool, err error) {
	all := make(chan struct{})
	go func() {
		for _, s := range p.steps {
			<-s.done
		}
		close(all)
	}()

	timer := time.NewTimer(r.cfg.suspenseDelay)
	defer timer.Stop()

	select {
	case <-all:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		r.win.Do(func() {
			if !r.current(p) || !p.nav.doc.Contains(p.target.anchor) {
				return
			}
			r.metrics.suspended()
			ph := dom.NewElement(r.cfg.tag)
			ph.AppendChild(dom.NewElement("progress"))
			p.nav.doc.ReplaceWith(p.target.anchor, ph)
			if seg, ok := p.nav.segments[ph]; ok {
				p.target = seg
			}
		})
	}
	return false, nil
}

// fetch loads one partial document. Concurrent navigations asking for the
// same URL share a single call.
func (r *Router) fetch(ctx context.Context, flights *singleflight.Group, ref string) (_ any, err error) {
	ctx, span := r.tracer.Start(ctx, "route.fetch", trace.WithAttributes(attribute.String("url", ref)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := r.win.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	size := len(res.Body)
	span.SetAttributes(attribute.Int("status", res.Status), attribute.Int("bytes", size))

	if res.Redirected {
		to := stripMarkers(res.URL, r.cfg.layoutParam, r.cfg.partParam)
		r.log.Debug().Str("from", ref).Str("to", to.String()).Msg("partial redirected")
		r.spawn(to.String())
		return nil, fmt.Errorf("fetch %s: %w", ref, ErrRedirected)
	}

	var stale bool
	r.win.Do(func() {
		stale = r.nav == nil || r.nav.flights != flights
	})
	if stale {
		return nil, fmt.Errorf("fetch %s: %w", ref, errStaleFetch)
	}

	if strings.TrimSpace(res.Body) == "" {
		return &fetched{bytes: size}, nil
	}
	doc, err := dom.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	return &fetched{doc: doc, bytes: size}, nil
}
