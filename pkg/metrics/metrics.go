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

	// ChatResponsesTotal tracks chat responses by the source that produced them.
	ChatResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_responses_total",
			Help: "Chat responses by source (knowledge, category, ai, generic)",
		},
		[]string{"platform", "source"},
	)

	// MatchScore tracks the best match score per answered message.
	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_best_score",
			Help:    "Best knowledge match score per message",
			Buckets: []float64{0, 2, 5, 10, 20, 40, 80, 160},
		},
	)

	// AIFallbackDuration tracks AI fallback completion duration.
	AIFallbackDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_fallback_duration_seconds",
			Help:    "AI fallback completion duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"provider", "status"},
	)

	// StorageWriteFailures tracks failed persistence writes per store.
	StorageWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_write_failures_total",
			Help: "Failed store persistence writes",
		},
		[]string{"store"},
	)

	// KnowledgeEntries tracks the number of knowledge entries.
	KnowledgeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_entries",
			Help: "Number of knowledge base entries",
		},
	)

	// SessionsActive tracks active sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of active sessions",
		},
	)

	// ConversationsTotal tracks total conversations recorded.
	ConversationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations recorded",
		},
		[]string{"platform"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordChatResponse records metrics for one answered message.
func RecordChatResponse(platform, source string, bestScore int) {
	ChatResponsesTotal.WithLabelValues(platform, source).Inc()
	MatchScore.Observe(float64(bestScore))
	ConversationsTotal.WithLabelValues(platform).Inc()
}

// RecordAIFallback records metrics for an AI fallback completion.
func RecordAIFallback(provider, status string, duration float64) {
	AIFallbackDuration.WithLabelValues(provider, status).Observe(duration)
}
