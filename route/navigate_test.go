package route_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/delaneyj/classic/route"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigateFetchesMissingLevels(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.navigate("/blog"))

	assert.Equal(t, 1, h.site.count("/blog?cc-layout&"))
	assert.Equal(t, 1, h.site.count("/blog?cc-part&"))
	assert.Zero(t, h.site.count("/blog"))

	assert.Equal(t, "Blog", h.text("#blog-title"))
	assert.Equal(t, "posts", h.text("#list"))
	assert.Zero(t, h.count("#home"))
	assert.Equal(t, "Blog", h.title())
	assert.Equal(t, h.url("/blog"), h.location())
	assert.Equal(t, []string{"about:blank", h.url("/"), h.url("/blog")}, h.history())

	// the navigation links stay interactive outside the swapped segment
	assert.Equal(t, 1, h.count("#blog"))
}

func TestNavigateReusesMountedLevels(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.navigate("/blog"))
	require.NoError(t, h.navigate("/blog/42"))

	assert.Equal(t, 1, h.site.count("/blog?cc-layout&"))
	assert.Equal(t, 1, h.site.count("/blog/42?cc-layout&"))
	assert.Equal(t, "post 42", h.text("#post"))
	assert.Equal(t, "Post", h.text("#post-title"))
	assert.Equal(t, "Post 42", h.title())

	// the wildcard level now hosts a slot, so a sibling post only needs its part
	require.NoError(t, h.navigate("/blog/43"))
	assert.Zero(t, h.site.count("/blog/43?cc-layout&"))
	assert.Equal(t, 1, h.site.count("/blog/43?cc-part&"))
	assert.Equal(t, "post 43", h.text("#post"))
	assert.Equal(t, "Post", h.text("#post-title"))
	assert.Equal(t, 1, h.count("#post"))

	require.NoError(t, h.navigate("/"))
	assert.Equal(t, 1, h.site.count("/?cc-part&"))
	assert.Equal(t, "home again", h.text("#home"))
	assert.Zero(t, h.count("#blog-title"))
}

func TestNavigateSameLocationDoesNotPush(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.navigate("/blog"))
	require.NoError(t, h.navigate("/blog"))

	assert.Equal(t, 2, h.site.count("/blog?cc-part&"))
	assert.Len(t, h.history(), 3)
}

func TestNavigateMergesHead(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.navigate("/blog"))

	assert.Equal(t, 1, h.count(`head link[href="/app.css"]`))
	assert.Equal(t, 1, h.count(`head link[href="/blog.css"]`))
	assert.Equal(t, 1, h.count(`head script[src="/blog.js"]`))

	require.NoError(t, h.navigate("/"))
	require.NoError(t, h.navigate("/blog"))
	assert.Equal(t, 1, h.count(`head link[href="/blog.css"]`))
	assert.Equal(t, 1, h.count(`head script[src="/blog.js"]`))
}

func TestNavigateRevivesScripts(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.navigate("/blog"))

	assert.Equal(t, []string{"/blog.js", "list()"}, h.ranScripts())
	assert.Equal(t, 1, h.count("#list ~ script"))
}

func TestNavigateFollowsRedirect(t *testing.T) {
	h := newHarness(t)

	err := h.navigate("/old")
	require.ErrorIs(t, err, route.ErrRedirected)
	h.router.Wait()

	assert.Equal(t, h.url("/new"), h.location())
	assert.Equal(t, "moved here", h.text("#new"))
	assert.NotContains(t, h.history(), h.url("/old"))
	assert.GreaterOrEqual(t, h.site.count("/new?cc-part&"), 1)
}

func TestNavigateRedirectAppliesNothing(t *testing.T) {
	h := newHarness(t)
	h.site.set("/x?cc-layout&", `<cc-route path="x"><p id="xlayout">x</p><cc-route></cc-route></cc-route>`)
	h.site.set("/x?cc-part&", "redirect:/new")
	release := h.site.gate(t, "/new?cc-layout&")

	require.ErrorIs(t, h.navigate("/x"), route.ErrRedirected)
	assert.Zero(t, h.count("#xlayout"))
	assert.Equal(t, 1, h.count("#home"))
	assert.Equal(t, h.url("/"), h.location())

	release()
	h.router.Wait()
	assert.Zero(t, h.count("#xlayout"))
	assert.Equal(t, "moved here", h.text("#new"))
	assert.Equal(t, h.url("/new"), h.location())
}

func TestNavigateRedirectKeepsQueryOrder(t *testing.T) {
	h := newHarness(t)
	h.site.set("/z?cc-layout&", "redirect:/new?b=2&cc-part&a=1")
	h.site.set("/z?cc-part&", "redirect:/new?b=2&cc-part&a=1")
	h.site.set("/new?cc-part&b=2&a=1", `<cc-route><p id="new">ordered</p></cc-route>`)

	require.ErrorIs(t, h.navigate("/z"), route.ErrRedirected)
	h.router.Wait()
	assert.Equal(t, h.url("/new?b=2&a=1"), h.location())
	assert.Equal(t, "ordered", h.text("#new"))
}

func TestNavigateFallsBackToFullLoad(t *testing.T) {
	h := newHarness(t)

	other := httptest.NewServer(h.site)
	t.Cleanup(other.Close)
	require.NoError(t, h.router.Navigate(context.Background(), other.URL+"/plain"))
	assert.Equal(t, other.URL+"/plain", h.location())
	assert.Equal(t, "Plain", h.title())
	assert.Equal(t, 1, h.site.count("/plain"))

	// the loaded page has no segments, so even same-origin links load fully
	require.NoError(t, h.router.Navigate(context.Background(), other.URL+"/blog"))
	assert.Equal(t, "full page", h.text("#full"))
	assert.Zero(t, h.site.count("/blog?cc-layout&"))
	h.win.Do(func() {
		assert.Nil(t, h.router.Root())
	})
}

func TestNavigateSuperseded(t *testing.T) {
	h := newHarness(t, route.WithSuspenseDelay(time.Hour))
	h.site.set("/slow?cc-layout&", `<cc-route path="slow"><cc-route></cc-route></cc-route>`)
	h.site.set("/slow?cc-part&", `<cc-route><p id="slow">slow</p></cc-route>`)
	release := h.site.gate(t, "/slow?cc-layout&")

	errs := make(chan error, 1)
	go func() { errs <- h.navigate("/slow") }()
	require.Eventually(t, func() bool {
		return h.site.count("/slow?cc-layout&") == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, h.navigate("/blog"))
	release()
	require.NoError(t, <-errs)

	assert.Equal(t, "posts", h.text("#list"))
	assert.Zero(t, h.count("#slow"))
	assert.Equal(t, h.url("/blog"), h.location())
	assert.Equal(t, []string{"about:blank", h.url("/"), h.url("/blog")}, h.history())
}

func TestNavigateSharesFetches(t *testing.T) {
	logs := &logBuffer{}
	var (
		mu     sync.Mutex
		shared int
	)
	h := newHarness(t,
		route.WithSuspenseDelay(time.Hour),
		route.WithLogger(zerolog.New(logs).Level(zerolog.DebugLevel)),
		route.WithFetchObserver(func(fi route.FetchInfo) {
			mu.Lock()
			defer mu.Unlock()
			if fi.Shared && fi.Err == nil {
				shared++
			}
		}),
	)
	release := h.site.gate(t, "/blog?cc-layout&")

	errs := make(chan error, 2)
	for range 2 {
		go func() { errs <- h.navigate("/blog") }()
	}
	require.Eventually(t, func() bool {
		return logs.count("navigate") == 2
	}, time.Second, time.Millisecond)
	release()
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	assert.Equal(t, 1, h.site.count("/blog?cc-layout&"))
	assert.Equal(t, 1, h.count("#blog-title"))
	assert.Equal(t, 1, logs.count("navigation superseded"))
	assert.Len(t, h.history(), 3)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, shared, 2)
}

func TestNavigateShowsPlaceholder(t *testing.T) {
	h := newHarness(t, route.WithSuspenseDelay(10*time.Millisecond))
	release := h.site.gate(t, "/blog?cc-layout&")

	errs := make(chan error, 1)
	go func() { errs <- h.navigate("/blog") }()

	require.Eventually(t, func() bool {
		return h.count("cc-route > progress") == 1
	}, time.Second, time.Millisecond)
	assert.Zero(t, h.count("#home"))

	release()
	require.NoError(t, <-errs)
	assert.Zero(t, h.count("progress"))
	assert.Equal(t, "posts", h.text("#list"))
	assert.Equal(t, "Blog", h.text("#blog-title"))
}

func TestNavigateAppliesErrorPages(t *testing.T) {
	h := newHarness(t)
	h.site.set("/missing?cc-layout&", `<cc-route path="missing"><cc-route></cc-route></cc-route>`)
	h.site.set("/missing?cc-part&", `404:<cc-route><p id="missing">nothing here</p></cc-route>`)

	// error statuses are applied like any other response
	require.NoError(t, h.navigate("/missing"))
	assert.Equal(t, "nothing here", h.text("#missing"))
	assert.Equal(t, h.url("/missing"), h.location())
}

func TestNavigateCancelled(t *testing.T) {
	h := newHarness(t, route.WithSuspenseDelay(time.Hour))
	release := h.site.gate(t, "/blog?cc-layout&")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- h.router.Navigate(ctx, h.url("/blog")) }()
	require.Eventually(t, func() bool {
		return h.site.count("/blog?cc-layout&") == 1
	}, time.Second, time.Millisecond)
	cancel()

	require.ErrorIs(t, <-errs, context.Canceled)
	assert.Equal(t, "home", h.text("#home"))
	assert.Equal(t, h.url("/"), h.location())
}
