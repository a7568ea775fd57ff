// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package metrics provides Prometheus instrumentation for the service:
// API endpoint latency and throughput, external navigation API calls,
// circuit breaker state, POI store queries, and recommendation pipeline
// timing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
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

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Kakao navigation client metrics
	NaviRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navi_requests_total",
			Help: "Total number of navigation API requests",
		},
		[]string{"operation", "result"}, // result: "success", "failure"
	)

	NaviRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navi_request_duration_seconds",
			Help:    "Navigation API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	NaviCandidatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "navi_candidates_dropped_total",
			Help: "Total number of POI candidates dropped due to leg cost failures",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// POI store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poi_store_query_duration_seconds",
			Help:    "Duration of POI store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poi_store_query_errors_total",
			Help: "Total number of POI store query errors",
		},
		[]string{"operation"},
	)

	// Recommendation pipeline metrics
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_pipeline_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RecommendCandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_candidates_scored_total",
			Help: "Total number of POI candidates scored",
		},
	)

	// Narration metrics
	NarrationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narration_requests_total",
			Help: "Total number of narration generation requests",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	NarrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "narration_duration_seconds",
			Help:    "Narration generation duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

// RecordAPIRequest records one API request observation.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordNaviRequest records one navigation API call observation.
func RecordNaviRequest(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	NaviRequestsTotal.WithLabelValues(operation, result).Inc()
	NaviRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDBQuery records one POI store query observation.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
