package route

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTag           = "cc-route"
	DefaultLayoutParam   = "cc-layout"
	DefaultPartParam     = "cc-part"
	DefaultSuspenseDelay = 500 * time.Millisecond

	tracerName = "github.com/delaneyj/classic/route"
)

type config struct {
	tag           string
	layoutParam   string
	partParam     string
	suspenseDelay time.Duration
	log           zerolog.Logger
	registerer    prometheus.Registerer
	tracer        trace.Tracer
	onFetch       func(FetchInfo)
}

func defaultConfig() config {
	return config{
		tag:           DefaultTag,
		layoutParam:   DefaultLayoutParam,
		partParam:     DefaultPartParam,
		suspenseDelay: DefaultSuspenseDelay,
		log:           zerolog.Nop(),
		tracer:        otel.Tracer(tracerName),
	}
}

type Option func(*config)

// WithSuspenseDelay sets how long fetches may run before the target segment
// is swapped for a loading placeholder.
func WithSuspenseDelay(d time.Duration) Option {
	return func(c *config) {
		c.suspenseDelay = d
	}
}

// WithMarkers renames the query parameters that flag layout and part requests.
func WithMarkers(layout, part string) Option {
	return func(c *config) {
		if layout != "" {
			c.layoutParam = layout
		}
		if part != "" {
			c.partParam = part
		}
	}
}

// WithTag changes the segment element name.
func WithTag(tag string) Option {
	return func(c *config) {
		c.tag = tag
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithMetrics registers the router's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// FetchInfo describes one partial document request as seen by a navigation.
type FetchInfo struct {
	URL      string
	Bytes    int
	Duration time.Duration
	// Shared is set when the result was delivered to more than one navigation.
	Shared bool
	Err    error
}

// WithFetchObserver calls fn each time a navigation's fetch settles, once per
// waiting navigation. fn runs off the main thread.
func WithFetchObserver(fn func(FetchInfo)) Option {
	return func(c *config) {
		c.onFetch = fn
	}
}
