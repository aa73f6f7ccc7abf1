// Package devserver serves a Site as full documents and as the layout and
// part fragments the route package asks for.
package devserver

//go:generate qtc -dir=templates

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/classic/devserver/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const childrenMarker = "<!--children-->"

var (
	ErrBadPattern       = errors.New("route pattern must start with /")
	ErrDuplicatePattern = errors.New("duplicate route pattern")
)

type Option func(*Server)

func WithMarkers(layout, part string) Option {
	return func(s *Server) {
		if layout != "" {
			s.layoutParam = layout
		}
		if part != "" {
			s.partParam = part
		}
	}
}

func WithTag(tag string) Option {
	return func(s *Server) {
		s.tag = tag
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

type Server struct {
	site        Site
	tree        *node
	tag         string
	layoutParam string
	partParam   string
	log         zerolog.Logger
	mux         chi.Router
}

func New(site Site, opts ...Option) (*Server, error) {
	s := &Server{
		site:        site,
		tree:        &node{},
		tag:         "cc-route",
		layoutParam: "cc-layout",
		partParam:   "cc-part",
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.site.Routes {
		if err := s.tree.insert(&s.site.Routes[i]); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(s.logRequests)
	r.Get("/*", s.serve)
	s.mux = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("uri", r.URL.RequestURI()).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	comps := components(r.URL.Path)

	if rt := s.tree.lookup(comps); rt != nil && rt.Redirect != "" {
		http.Redirect(w, r, rt.Redirect, http.StatusSeeOther)
		return
	}

	switch {
	case q.Has(s.layoutParam):
		s.serveLayout(w, r, comps)
	case q.Has(s.partParam):
		s.servePart(w, r, comps)
	default:
		s.serveDocument(w, r, comps)
	}
}

// serveLayout answers with the level for the last path component, holding an
// empty slot for whatever nests below it.
func (s *Server) serveLayout(w http.ResponseWriter, r *http.Request, comps []string) {
	if len(comps) == 0 {
		s.write(w, r, http.StatusBadRequest, templates.Document("", nil, ""))
		return
	}
	depth := len(comps) - 1
	rt := s.tree.lookup(comps)

	var (
		title  string
		head   []string
		layout string
	)
	if rt != nil {
		title, head, layout = rt.Title, rt.Head, rt.Layout
	}
	slot := templates.Segment(s.tag, "", "")
	body := templates.Segment(s.tag, component(rt, comps, depth), withChildren(layout, slot))
	s.write(w, r, http.StatusOK, templates.Document(title, head, body))
}

func (s *Server) servePart(w http.ResponseWriter, r *http.Request, comps []string) {
	rt := s.tree.lookup(comps)
	if rt == nil || rt.Page == "" {
		body := templates.Segment(s.tag, "", s.notFound())
		s.write(w, r, http.StatusNotFound, templates.Document("Not found", nil, body))
		return
	}
	body := templates.Segment(s.tag, "", rt.Page)
	s.write(w, r, http.StatusOK, templates.Document(rt.Title, rt.Head, body))
}

// serveDocument nests every level of the path the way a chain of layout and
// part requests would build it.
func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, comps []string) {
	heads := [][]string{s.site.Head}
	levels := make([]*Route, len(comps))
	for depth := range comps {
		levels[depth] = s.tree.lookup(comps[:depth+1])
		if levels[depth] != nil {
			heads = append(heads, levels[depth].Head)
		}
	}

	status, title := http.StatusOK, s.site.Title
	inner := s.notFound()
	if page := s.tree.lookup(comps); page != nil && page.Page != "" {
		inner = page.Page
		heads = append(heads, page.Head)
		if page.Title != "" {
			title = page.Title
		}
	} else {
		status, title = http.StatusNotFound, "Not found"
	}

	inner = templates.Segment(s.tag, "", inner)
	for depth := len(comps) - 1; depth >= 0; depth-- {
		layout := ""
		if levels[depth] != nil {
			layout = levels[depth].Layout
		}
		inner = templates.Segment(s.tag, component(levels[depth], comps, depth), withChildren(layout, inner))
	}

	body := inner
	if s.site.Shell != "" {
		body = withChildren(s.site.Shell, inner)
	}
	s.write(w, r, status, templates.Document(title, mergeHeads(heads), body))
}

func (s *Server) notFound() string {
	if s.site.NotFound != "" {
		return s.site.NotFound
	}
	return "<h1>Not found</h1>"
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, body string) {
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64String(body))
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("ETag", etag)
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func withChildren(layout, children string) string {
	if strings.Contains(layout, childrenMarker) {
		return strings.Replace(layout, childrenMarker, children, 1)
	}
	return layout + children
}

// mergeHeads flattens heads in order, dropping repeats.
func mergeHeads(heads [][]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, hs := range heads {
		for _, h := range hs {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
