package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Collectors register once with the default registry
var (
	troubleshootRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "troubleshoot_requests_total",
			Help: "Total number of troubleshooting requests by response format and outcome",
		},
		[]string{"format", "outcome"},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "troubleshoot_llm_request_duration_seconds",
			Help:    "Duration of LLM completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	recommendationCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "troubleshoot_recommendations",
			Help:    "Number of recommendation items parsed from a completion",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
)

// ObserveRequest counts a finished troubleshooting request.
func ObserveRequest(format, outcome string) {
	troubleshootRequests.WithLabelValues(format, outcome).Inc()
}

// ObserveLLM records the latency of one LLM call.
func ObserveLLM(outcome string, elapsed time.Duration) {
	llmRequestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRecommendations records how many items a completion yielded.
func ObserveRecommendations(n int) {
	recommendationCount.Observe(float64(n))
}
