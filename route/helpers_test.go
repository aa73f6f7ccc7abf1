package route_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/delaneyj/classic/browser"
	"github.com/delaneyj/classic/dom"
	"github.com/delaneyj/classic/route"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// site serves canned bodies keyed by request URI. A body starting with
// "redirect:" answers 303 to the rest of it, one starting with "404:" is
// served with that status.
type site struct {
	mu    sync.Mutex
	pages map[string]string
	gates map[string]chan struct{}
	hits  map[string]int
}

func (s *site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()
	s.mu.Lock()
	s.hits[key]++
	body, ok := s.pages[key]
	gate := s.gates[key]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	switch {
	case !ok:
		http.NotFound(w, r)
	case strings.HasPrefix(body, "redirect:"):
		http.Redirect(w, r, strings.TrimPrefix(body, "redirect:"), http.StatusSeeOther)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if rest, found := strings.CutPrefix(body, "404:"); found {
			w.WriteHeader(http.StatusNotFound)
			body = rest
		}
		w.Write([]byte(body))
	}
}

func (s *site) set(key, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[key] = body
}

// gate holds requests for key until the returned func is called.
func (s *site) gate(t *testing.T, key string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[key] = ch
	s.mu.Unlock()
	var once sync.Once
	release = func() { once.Do(func() { close(ch) }) }
	t.Cleanup(release)
	return release
}

func (s *site) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

type harness struct {
	t       *testing.T
	site    *site
	srv     *httptest.Server
	win     *browser.Window
	router  *route.Router
	scripts []string
}

func blogPages() map[string]string {
	return map[string]string{
		"/": `<html><head><title>Home</title><link rel="stylesheet" href="/app.css"></head>` +
			`<body><nav><a id="blog" href="/blog">Blog</a><a id="ext" href="/blog" target="_blank">new tab</a></nav>` +
			`<cc-route><p id="home">home</p></cc-route>` +
			`<form id="search" action="/search"><input name="q" value="go"></form>` +
			`<form id="post-form" method="post" action="/search"></form></body></html>`,
		"/?cc-part&": `<cc-route><p id="home">home again</p></cc-route>`,
		"/blog":      `<html><head><title>Blog (full)</title></head><body><p id="full">full page</p></body></html>`,
		"/blog?cc-layout&": `<html><head><title>Blog</title>` +
			`<link rel="stylesheet" href="/app.css"><link rel="stylesheet" href="/blog.css"><script src="/blog.js"></script></head>` +
			`<body><cc-route path="blog"><h1 id="blog-title">Blog</h1><cc-route></cc-route></cc-route></body></html>`,
		"/blog?cc-part&":      `<cc-route><p id="list">posts</p><script>list()</script></cc-route>`,
		"/blog/42?cc-layout&": `<cc-route path="*"><h2 id="post-title">Post</h2><cc-route></cc-route></cc-route>`,
		"/blog/42?cc-part&":   `<title>Post 42</title><cc-route><p id="post">post 42</p></cc-route>`,
		"/blog/43?cc-part&":   `<cc-route><p id="post">post 43</p></cc-route>`,
		"/search?cc-layout&":  `<cc-route path="search"><cc-route></cc-route></cc-route>`,
		"/search?cc-part&q=go": `<cc-route><p id="results">results for go</p></cc-route>`,
		"/old?cc-layout&":     "redirect:/new",
		"/old?cc-part&":       "redirect:/new",
		"/new":                `<html><body><p>new (full)</p></body></html>`,
		"/new?cc-layout&":     `<cc-route path="new"><cc-route></cc-route></cc-route>`,
		"/new?cc-part&":       `<cc-route><p id="new">moved here</p></cc-route>`,
		"/plain":              `<html><head><title>Plain</title></head><body><p>no segments</p></body></html>`,
	}
}

func newHarness(t *testing.T, opts ...route.Option) *harness {
	t.Helper()
	h := &harness{
		t: t,
		site: &site{
			pages: blogPages(),
			gates: map[string]chan struct{}{},
			hits:  map[string]int{},
		},
	}
	h.srv = httptest.NewServer(h.site)
	t.Cleanup(h.srv.Close)

	h.win = browser.New(
		browser.WithHTTPClient(h.srv.Client()),
		browser.WithScriptRunner(func(_ *dom.Document, s *html.Node) {
			if src, ok := dom.Attr(s, "src"); ok {
				h.scripts = append(h.scripts, src)
				return
			}
			h.scripts = append(h.scripts, dom.TextContent(s))
		}),
	)
	r, err := route.New(h.win, opts...)
	require.NoError(t, err)
	h.router = r
	t.Cleanup(r.Close)

	require.NoError(t, h.win.Open(context.Background(), h.srv.URL+"/"))
	return h
}

func (h *harness) url(path string) string {
	return h.srv.URL + path
}

func (h *harness) navigate(path string) error {
	return h.router.Navigate(context.Background(), h.url(path))
}

func (h *harness) text(sel string) (out string) {
	h.win.Do(func() {
		if n := dom.Query(h.win.Document().Root(), sel); n != nil {
			out = dom.TextContent(n)
		}
	})
	return out
}

func (h *harness) count(sel string) (n int) {
	h.win.Do(func() {
		n = len(dom.QueryAll(h.win.Document().Root(), sel))
	})
	return n
}

func (h *harness) node(sel string) (n *html.Node) {
	h.win.Do(func() {
		n = dom.Query(h.win.Document().Root(), sel)
	})
	require.NotNil(h.t, n, sel)
	return n
}

func (h *harness) location() (loc string) {
	h.win.Do(func() {
		loc = h.win.Location().String()
	})
	return loc
}

func (h *harness) history() (entries []string) {
	h.win.Do(func() {
		entries = h.win.HistoryEntries()
	})
	return entries
}

func (h *harness) title() (title string) {
	h.win.Do(func() {
		title = h.win.Document().Title()
	})
	return title
}

func (h *harness) ranScripts() (out []string) {
	h.win.Do(func() {
		out = append(out, h.scripts...)
	})
	return out
}

// logBuffer collects zerolog JSON lines across goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(msg string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), `"message":"`+msg+`"`)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
