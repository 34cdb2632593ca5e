// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Sync pass metrics (per source)
// - HTTP read-through cache and poster cache efficiency
// - Provider circuit breaker state
// - Email delivery

var (
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

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Sync Metrics. Source label is "watch_history" or "requests".
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of sync passes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Full refreshes can take minutes
		},
		[]string{"source"},
	)

	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_processed_total",
			Help: "Total number of provider records processed during sync",
		},
		[]string{"source"},
	)

	SyncRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_skipped_total",
			Help: "Total number of records skipped during sync (unresolved identity or invalid data)",
		},
		[]string{"source", "reason"}, // "unresolved", "validation", "provider_data"
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of sync errors",
		},
		[]string{"source", "error_type"}, // "provider_api", "database", "other"
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of last successful sync pass",
		},
		[]string{"source"},
	)

	SyncRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_rejected_total",
			Help: "Total number of sync triggers rejected because a pass was already running",
		},
		[]string{"source"},
	)

	// HTTP Read-Through Cache Metrics
	HTTPCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpcache_hits_total",
			Help: "Total number of HTTP cache hits",
		},
	)

	HTTPCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpcache_misses_total",
			Help: "Total number of HTTP cache misses (synchronous upstream fetch)",
		},
	)

	HTTPCacheRevalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpcache_revalidations_total",
			Help: "Total number of background cache revalidations",
		},
	)

	// Poster Cache Metrics
	PosterCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postercache_hits_total",
			Help: "Total number of poster requests served from disk",
		},
	)

	PosterFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postercache_fetches_total",
			Help: "Total number of poster fetches from upstream",
		},
		[]string{"origin", "result"}, // origin: "tautulli", "tmdb"; result: "ok", "error"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Background Job Metrics
	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobs_running",
			Help: "Current number of running background jobs",
		},
	)

	JobsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_started_total",
			Help: "Total number of background jobs started",
		},
		[]string{"name"},
	)

	// Email Delivery Metrics
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"result"}, // "ok", "error"
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSyncPass records the outcome of one sync pass for a source
func RecordSyncPass(source string, duration time.Duration, processed int, err error) {
	SyncDuration.WithLabelValues(source).Observe(duration.Seconds())
	SyncRecordsProcessed.WithLabelValues(source).Add(float64(processed))
	if err != nil {
		SyncErrors.WithLabelValues(source, classifySyncError(err)).Inc()
	} else {
		SyncLastSuccess.WithLabelValues(source).Set(float64(time.Now().Unix()))
	}
}

func classifySyncError(err error) string {
	msg := err.Error()
	switch {
	case contains(msg, "provider"), contains(msg, "tautulli"), contains(msg, "overseerr"):
		return "provider_api"
	case contains(msg, "database"), contains(msg, "duckdb"):
		return "database"
	default:
		return "other"
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// SetCircuitBreakerState updates the gauge for a named breaker.
// State values follow gobreaker: 0=closed, 1=half-open, 2=open.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
