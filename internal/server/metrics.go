package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// labelHandler partitions HTTP metrics by logical endpoint name instead of
// the raw URL path, which keeps label cardinality bounded.
const labelHandler = "handler"

// serverMetrics bundles every Prometheus metric the HTTP server emits.
// New creates one instance per Server against the configured registry, so
// tests can pass a fresh prometheus.NewRegistry and stay hermetic.
type serverMetrics struct {
	// queryRequestsTotal counts completed /api/ask requests by outcome:
	// "ok", "timeout", or "error".
	queryRequestsTotal *prometheus.CounterVec

	// queryDurationSeconds measures /api/ask latency end to end, covering
	// retrieval, assembly, and generation.
	queryDurationSeconds *prometheus.HistogramVec

	// queryActive tracks /api/ask requests currently being answered.
	queryActive prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics on reg via promauto.With so
// nothing touches the global default registry.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		queryRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "superlig",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Completed /api/ask requests, partitioned by outcome.",
		}, []string{"outcome"}),

		queryDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "superlig",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end duration of /api/ask requests.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),

		queryActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "superlig",
			Subsystem: "query",
			Name:      "active",
			Help:      "Questions currently being answered.",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "superlig",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "superlig",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of handled HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
