package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subway_dashboard"

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	DatasetRows      *prometheus.GaugeVec     // labels: dataset

	// Cache metrics.
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}
	CacheRefreshes *prometheus.CounterVec // labels: outcome={success,error}

	// Query metrics.
	Resolutions    *prometheus.CounterVec // labels: match={exact,fuzzy,none}
	LookupDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.DatasetRows,
		m.CacheLookups,
		m.CacheRefreshes,
		m.Resolutions,
		m.LookupDuration,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered with the
// default registry, for one-shot tools that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Seoul Open API page requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Seoul Open API page request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows held for each dataset after the last refresh.",
		}, []string{"dataset"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		CacheRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_refreshes_total",
			Help:      "Dataset cache refreshes by outcome.",
		}, []string{"outcome"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_resolutions_total",
			Help:      "Station queries by match kind.",
		}, []string{"match"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a complete station lookup, including any refresh.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
	}
}
