package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rewriter Prometheus metrics.
var (
	RewriterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "rewriter_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"provider", "operation", "status"},
	)

	RewriterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnscout",
			Name:      "rewriter_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider", "operation"},
	)

	RewriterTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "rewriter_tokens_total",
			Help:      "Total language model tokens consumed",
		},
		[]string{"provider", "operation"},
	)

	RewriterErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "rewriter_errors_total",
			Help:      "Total language model errors",
		},
		[]string{"provider", "operation", "error_type"},
	)

	RewriterBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "learnscout",
			Name:      "rewriter_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	RewriterCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnscout",
			Name:      "rewriter_cache_total",
			Help:      "Keyword expansion cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var rewriterMetricsRegistered bool

// RegisterRewriterMetrics registers Prometheus rewriter metrics. Must be called once from main.
func RegisterRewriterMetrics() {
	if rewriterMetricsRegistered {
		return
	}
	prometheus.MustRegister(RewriterRequestsTotal)
	prometheus.MustRegister(RewriterRequestDuration)
	prometheus.MustRegister(RewriterTokensTotal)
	prometheus.MustRegister(RewriterErrorsTotal)
	prometheus.MustRegister(RewriterBudgetTokensRemaining)
	prometheus.MustRegister(RewriterCacheTotal)
	rewriterMetricsRegistered = true
}
