package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemsearch",
			Name:      "searches_total",
			Help:      "Total number of executed searches",
		},
		[]string{"outcome"}, // "hit" / "empty"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chemsearch",
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SuggestionRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chemsearch",
			Name:      "suggestion_requests_total",
			Help:      "Total number of suggestion requests",
		},
	)

	PersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemsearch",
			Name:      "persist_failures_total",
			Help:      "Total write-through persistence failures",
		},
		[]string{"component"}, // "history" / "bookmarks" / "analytics"
	)

	IndexedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chemsearch",
			Name:      "indexed_records",
			Help:      "Number of records in the current index",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SuggestionRequestsTotal)
	prometheus.MustRegister(PersistFailuresTotal)
	prometheus.MustRegister(IndexedRecords)
	searchMetricsRegistered = true
}
