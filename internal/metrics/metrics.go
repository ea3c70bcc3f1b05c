package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the rate orchestrator reports into.
// Operation label is one of "latest", "convert", "historical".
type Metrics struct {
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheErrorsTotal        *prometheus.CounterVec
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_hits_total",
				Help: "Total number of rate cache hits",
			},
			[]string{"operation"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_misses_total",
				Help: "Total number of rate cache misses",
			},
			[]string{"operation"},
		),

		CacheErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_errors_total",
				Help: "Total number of cache backend failures treated as misses",
			},
			[]string{"operation"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of rate provider requests",
			},
			[]string{"operation", "outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Rate provider request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
