package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classdex",
			Name:      "resolve_total",
			Help:      "Free-text filter values resolved against a catalog, by winning strategy",
		},
		[]string{"field", "strategy"}, // strategy "none" on a miss
	)

	ConflictExcludedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classdex",
			Name:      "conflict_excluded_total",
			Help:      "Candidate sections dropped for colliding with an avoid block",
		},
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "classdex",
			Name:      "store_request_duration_seconds",
			Help:      "Document store round trip duration in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"op"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classdex",
			Name:      "store_errors_total",
			Help:      "Failed document store round trips",
		},
		[]string{"op"},
	)

	SectionsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classdex",
			Name:      "sections_loaded_total",
			Help:      "Sections processed by ingestion, by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResolveTotal)
	prometheus.MustRegister(ConflictExcludedTotal)
	prometheus.MustRegister(StoreRequestDuration)
	prometheus.MustRegister(StoreErrorsTotal)
	prometheus.MustRegister(SectionsLoadedTotal)
	searchMetricsRegistered = true
}
