package route

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	navigations *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	suspense    prometheus.Counter
	duration    prometheus.Histogram
}

// newMetrics returns nil when reg is nil; every method is a no-op then.
func newMetrics(reg prometheus.Registerer) (m *metrics, err error) {
	if reg == nil {
		return nil, nil
	}
	defer func() {
		// promauto panics on duplicate registration
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()

	f := promauto.With(reg)
	return &metrics{
		navigations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classic",
			Subsystem: "route",
			Name:      "navigations_total",
			Help:      "Navigations by outcome: applied, full, redirected, superseded or failed.",
		}, []string{"result"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "classic",
			Subsystem: "route",
			Name:      "fetches_total",
			Help:      "Partial document fetches awaited by navigations.",
		}, []string{"shared"}),
		suspense: f.NewCounter(prometheus.CounterOpts{
			Namespace: "classic",
			Subsystem: "route",
			Name:      "suspense_total",
			Help:      "Loading placeholders shown.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "classic",
			Subsystem: "route",
			Name:      "navigation_duration_seconds",
			Help:      "Time from navigation start to completion.",
			Buckets:   prometheus.DefBuckets,
		}),
	}, nil
}

func (m *metrics) navigated(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(result).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *metrics) fetched(shared bool) {
	if m == nil {
		return
	}
	label := "false"
	if shared {
		label = "true"
	}
	m.fetches.WithLabelValues(label).Inc()
}

func (m *metrics) suspended() {
	if m == nil {
		return
	}
	m.suspense.Inc()
}
