// Package metrics 定义了服务暴露的 Prometheus 指标。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ModelInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentmatch",
			Name:      "model_invocations_total",
			Help:      "Total number of external model invocations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success / throttled / failed / malformed
	)

	ModelInvocationRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentmatch",
			Name:      "model_invocation_retries_total",
			Help:      "Total number of retries caused by throttling",
		},
		[]string{"operation"},
	)

	ModelInvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "talentmatch",
			Name:      "model_invocation_duration_seconds",
			Help:      "Latency of a single model call attempt in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentmatch",
			Name:      "match_requests_total",
			Help:      "Total number of match requests by final status",
		},
		[]string{"status"},
	)

	MatchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "talentmatch",
			Name:      "match_results_returned",
			Help:      "Number of ranked candidates returned per match request",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	EmbeddingSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentmatch",
			Name:      "embedding_sync_total",
			Help:      "Profile embedding synchronisations by result",
		},
		[]string{"result"}, // "success" / "error" / "skipped"
	)
)

var registerOnce sync.Once

// Register 将所有指标注册到默认 Registry，只需在 main 中调用一次。
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ModelInvocationsTotal,
			ModelInvocationRetriesTotal,
			ModelInvocationDuration,
			MatchRequestsTotal,
			MatchResultsReturned,
			EmbeddingSyncTotal,
		)
	})
}
