package metrics

import "github.com/prometheus/client_golang/prometheus"

// Grading (LLM candidate selection) Prometheus metrics.
var (
	GradingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqdex",
			Name:      "grading_requests_total",
			Help:      "Total number of LLM grading requests",
		},
		[]string{"model", "status"},
	)

	GradingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqdex",
			Name:      "grading_request_duration_seconds",
			Help:      "LLM grading request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	GradingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqdex",
			Name:      "grading_tokens_total",
			Help:      "Total LLM grading tokens consumed",
		},
		[]string{"model", "type"},
	)

	SelectionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqdex",
			Name:      "selection_outcomes_total",
			Help:      "Answer selection outcomes by mode",
		},
		[]string{"mode", "outcome"}, // outcome: answered / no_match / fallback
	)
)

var gradingMetricsRegistered bool

// RegisterGradingMetrics registers Prometheus grading metrics. Must be called once from main.
func RegisterGradingMetrics() {
	if gradingMetricsRegistered {
		return
	}
	prometheus.MustRegister(GradingRequestsTotal)
	prometheus.MustRegister(GradingRequestDuration)
	prometheus.MustRegister(GradingTokensTotal)
	prometheus.MustRegister(SelectionOutcomesTotal)
	gradingMetricsRegistered = true
}
