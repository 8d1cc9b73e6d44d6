// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

// Package metrics declares the Prometheus instruments for the discovery
// service. All collectors register with the default registry through
// promauto and are exposed by the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Search pipeline metrics
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Aggregated search requests by result",
		},
		[]string{"result"}, // "live", "cached", "invalid"
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end aggregation latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"result"},
	)

	SearchEventsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_events_total_matched",
			Help:    "Events matched per search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Provider Metrics
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Provider calls by outcome",
		},
		[]string{"source", "outcome"}, // outcome: "success" or a ProviderError kind
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"source"},
	)

	ProviderEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_events_total",
			Help: "Events returned by each provider",
		},
		[]string{"source"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Entries evicted to stay under the size budget",
		},
		[]string{"cache"},
	)

	CacheExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_expirations_total",
			Help: "Entries removed after their TTL elapsed",
		},
		[]string{"cache"},
	)

	CacheBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_bytes",
			Help: "Estimated bytes held by the cache",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cache entries",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
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

	// Clustering Metrics
	ClusterBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluster_index_build_duration_seconds",
			Help:    "Time to build a spatial cluster index",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	ClusterIndexPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluster_index_points",
			Help:    "Number of points per cluster index build",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ClusterClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluster_clicks_total",
			Help: "Resolved map clicks by action",
		},
		[]string{"action"}, // "zoom", "select", "none", "stale", "unknown"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Broadcasts dropped because a buffer was full",
		},
	)

	// Loading state
	LoadingOperationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loading_operations_active",
			Help: "Aggregations currently waiting on providers",
		},
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordProviderCall records the outcome of one provider search.
func RecordProviderCall(source, outcome string, events int, duration time.Duration) {
	ProviderRequestsTotal.WithLabelValues(source, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
	if events > 0 {
		ProviderEventsTotal.WithLabelValues(source).Add(float64(events))
	}
}

// RecordSearch records one aggregation call.
func RecordSearch(result string, matched int, duration time.Duration) {
	SearchRequestsTotal.WithLabelValues(result).Inc()
	SearchDuration.WithLabelValues(result).Observe(duration.Seconds())
	if result != "invalid" {
		SearchEventsReturned.Observe(float64(matched))
	}
}

// RecordClusterBuild records one spatial index build.
func RecordClusterBuild(points int, duration time.Duration) {
	ClusterBuildDuration.Observe(duration.Seconds())
	ClusterIndexPoints.Observe(float64(points))
}
