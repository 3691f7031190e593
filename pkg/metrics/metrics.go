// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatTurnsTotal tracks processed chat turns by resolved intent.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns processed",
		},
		[]string{"intent"},
	)

	// ChatTurnDuration tracks end-to-end turn processing time.
	ChatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_turn_duration_seconds",
			Help:    "Chat turn processing duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"intent"},
	)

	// ChatErrorsTotal tracks turns that hit the orchestrator error boundary.
	ChatErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_errors_total",
			Help: "Total chat turns that failed and degraded to an apology",
		},
	)

	// IntentClassificationsTotal tracks classifications by resolution method.
	IntentClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_classifications_total",
			Help: "Total intent classifications",
		},
		[]string{"intent", "resolution"},
	)

	// LLMRequestDuration tracks LLM completion call duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion request duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "status"},
	)

	// RetrievalResultsReturned tracks result counts after threshold filtering.
	RetrievalResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_results_returned",
			Help:    "Number of results returned per retrieval",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		},
	)

	// RerankFallbacksTotal tracks reranker failures recovered by similarity order.
	RerankFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rerank_fallbacks_total",
			Help: "Total retrievals that fell back to similarity ordering",
		},
	)

	// FormCompletionsTotal tracks completed form-collection flows.
	FormCompletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_completions_total",
			Help: "Total completed form collection flows",
		},
	)

	// ActiveSessions tracks live chat sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of active chat sessions",
		},
	)

	// DocumentChunksStored tracks chunks held by the vector store.
	DocumentChunksStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "document_chunks_stored",
			Help: "Number of document chunks in the vector store",
		},
	)
)

// RecordRequest records HTTP request metrics.
func RecordRequest(method, path, status string, durationSec float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSec)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
