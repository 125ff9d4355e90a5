// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Poll Engine Metrics
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_ticks_total",
			Help: "Total number of poll ticks by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: changed, unchanged, transient, rate_limited, unauthorized, gone
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Duration of one upstream poll including credential refresh",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	PollActiveKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poll_active_keys",
			Help: "Current number of poll keys with a running or paused timer",
		},
		[]string{"kind"},
	)

	PollSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poll_subscribers",
			Help: "Current number of registered subscribers across all keys",
		},
		[]string{"kind"},
	)

	PollPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_publishes_total",
			Help: "Total number of snapshots published to the event bus",
		},
		[]string{"kind", "scope"}, // scope: broadcast, direct
	)

	CredentialRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_refreshes_total",
			Help: "Total number of music credential refresh attempts",
		},
		[]string{"result"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_published_total",
			Help: "Total number of events published on the in-process bus",
		},
		[]string{"kind"},
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

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket commands received",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Messages dropped because a client send buffer was full",
		},
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

	// File Storage Metrics
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of file storage operations",
		},
		[]string{"operation", "result"},
	)
)

// RecordPoll records the outcome and duration of one poll tick.
func RecordPoll(kind, outcome string, duration time.Duration) {
	PollsTotal.WithLabelValues(kind, outcome).Inc()
	PollDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStorageOperation records a file storage call.
func RecordStorageOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(operation, result).Inc()
}
