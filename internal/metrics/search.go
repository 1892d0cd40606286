package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "source_requests_total",
			Help:      "Total number of source adapter calls",
		},
		[]string{"platform", "status"}, // ok / error / timeout / panic
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnscout",
			Name:      "source_request_duration_seconds",
			Help:      "Source adapter call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"platform"},
	)

	SourceItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "source_items_total",
			Help:      "Items seen per source and pipeline stage",
		},
		[]string{"platform", "stage"}, // fetched / accepted
	)

	FilterFailOpenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "filter_fail_open_total",
			Help:      "Items accepted because the semantic check failed",
		},
		[]string{"platform"},
	)

	RankOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "rank_outcomes_total",
			Help:      "Cross-source ranking outcomes",
		},
		[]string{"outcome"}, // passthrough / rewriter / fallback
	)

	PlannerFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "planner_keyword_fallback_total",
			Help:      "Requests whose keywords came from the whitespace split",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(SourceItemsTotal)
	prometheus.MustRegister(FilterFailOpenTotal)
	prometheus.MustRegister(RankOutcomesTotal)
	prometheus.MustRegister(PlannerFallbackTotal)
	searchMetricsRegistered = true
}
