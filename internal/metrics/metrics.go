// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Vector Index Metrics
	IndexEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quill_index_entries",
			Help: "Current number of vectors held by an in-memory index",
		},
		[]string{"index"}, // "posts", "users"
	)

	IndexOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_index_operations_total",
			Help: "Total number of vector index operations",
		},
		[]string{"index", "operation"}, // "add", "replace", "delete", "query"
	)

	// Engine Metrics
	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quill_engine_operation_duration_seconds",
			Help:    "Duration of recommendation engine operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	EngineOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_engine_operation_errors_total",
			Help: "Total number of failed recommendation engine operations",
		},
		[]string{"operation"},
	)

	EmbeddingFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_embedding_fallbacks_total",
			Help: "Total number of random fallback embeddings substituted for failed deterministic ones",
		},
	)

	TagSuggestionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_tag_suggestion_fallbacks_total",
			Help: "Total number of tag suggestions that degraded to the default tag list",
		},
		[]string{"reason"}, // "no_tag_vectors", "error"
	)

	UserVectorUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_user_vector_updates_total",
			Help: "Total number of user vector recomputations",
		},
		[]string{"outcome"}, // "updated", "no_interactions", "error"
	)

	TagVectorCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_tag_vector_cache_hits_total",
			Help: "Total number of decoded tag vector cache hits",
		},
	)

	TagVectorCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_tag_vector_cache_misses_total",
			Help: "Total number of decoded tag vector cache misses",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quill_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_circuit_breaker_requests_total",
			Help: "Total number of requests passed through a circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Pipeline Metrics
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_events_published_total",
			Help: "Total number of interaction events published",
		},
	)

	EventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_events_processed_total",
			Help: "Total number of interaction events handled successfully",
		},
	)

	EventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_events_failed_total",
			Help: "Total number of interaction events whose handling failed and was nacked",
		},
	)

	EventsMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_events_malformed_total",
			Help: "Total number of undecodable interaction events dropped",
		},
	)

	// Ops HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quill_http_request_duration_seconds",
			Help:    "Ops HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_http_active_requests",
			Help: "Current number of in-flight ops HTTP requests",
		},
	)
)

// RecordIndexSize sets the entry gauge for index.
func RecordIndexSize(index string, entries int) {
	IndexEntries.WithLabelValues(index).Set(float64(entries))
}

// RecordIndexOperation counts a mutation or query against index.
func RecordIndexOperation(index, operation string) {
	IndexOperations.WithLabelValues(index, operation).Inc()
}

// RecordEngineOperation records the latency of an engine operation and counts failures.
func RecordEngineOperation(operation string, duration time.Duration, err error) {
	EngineOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		EngineOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordCacheLookup counts a tag vector cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		TagVectorCacheHits.Inc()
		return
	}
	TagVectorCacheMisses.Inc()
}

// RecordHTTPRequest records an ops HTTP request. route is the matched
// pattern, not the raw path, to bound label cardinality.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
