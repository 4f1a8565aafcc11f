// Package monitoring provides Prometheus metrics and OpenTelemetry tracing.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection.
type MetricsCollector struct {
	logger *zap.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recommendationsTotal  *prometheus.CounterVec
	recommendationLatency prometheus.Histogram
	aiRequestsTotal       *prometheus.CounterVec
	aiRequestDuration     *prometheus.HistogramVec
	embeddingCacheOps     *prometheus.CounterVec
	conversationsCreated  prometheus.Counter
}

// NewMetricsCollector registers and returns the application metrics.
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		logger: logger,

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),

		recommendationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_total",
				Help: "Total number of recommendation streams by outcome",
			},
			[]string{"outcome"},
		),
		recommendationLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recommendation_stream_duration_seconds",
				Help:    "End to end recommendation stream duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		aiRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI provider requests",
			},
			[]string{"provider", "operation", "status"},
		),
		aiRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI provider request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"provider", "operation"},
		),
		embeddingCacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedding_cache_operations_total",
				Help: "Embedding cache operations by result",
			},
			[]string{"result"},
		),
		conversationsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "conversations_created_total",
				Help: "Total number of conversations created",
			},
		),
	}
}

// HTTPMiddleware records request counts and latency per route.
func (m *MetricsCollector) HTTPMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			m.httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			m.httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// RecommendationServed records a completed recommendation stream.
func (m *MetricsCollector) RecommendationServed(outcome string, duration time.Duration) {
	m.recommendationsTotal.WithLabelValues(outcome).Inc()
	m.recommendationLatency.Observe(duration.Seconds())
}

// AIRequest records a provider call.
func (m *MetricsCollector) AIRequest(provider, operation, status string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	m.aiRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// EmbeddingCacheHit records an embedding cache hit.
func (m *MetricsCollector) EmbeddingCacheHit() {
	m.embeddingCacheOps.WithLabelValues("hit").Inc()
}

// EmbeddingCacheMiss records an embedding cache miss.
func (m *MetricsCollector) EmbeddingCacheMiss() {
	m.embeddingCacheOps.WithLabelValues("miss").Inc()
}

// ConversationCreated records a new conversation.
func (m *MetricsCollector) ConversationCreated() {
	m.conversationsCreated.Inc()
}

// Handler returns the Prometheus scrape endpoint.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
