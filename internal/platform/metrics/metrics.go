// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry through promauto. Helpers
// keep label cardinality bounded: HTTP routes are recorded by their chi
// pattern, never by the raw path.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// # HTTP

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// # Domain

var (
	AuthzDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_authz_denials_total",
			Help: "Total number of denied access checks",
		},
		[]string{"resource", "action"},
	)

	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_reviews_created_total",
			Help: "Total number of reviews written",
		},
	)

	ConfirmationCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_confirmation_codes_issued_total",
			Help: "Total number of confirmation codes delivered and stored",
		},
	)
)

// # Mail delivery

var (
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_mail_deliveries_total",
			Help: "Mail delivery attempts by outcome (success, failure, rejected)",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yamdb_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthzDenial counts a denied access check.
func RecordAuthzDenial(resource, action string) {
	AuthzDenials.WithLabelValues(resource, action).Inc()
}

// RecordMailDelivery counts a delivery attempt by outcome.
func RecordMailDelivery(outcome string) {
	MailDeliveries.WithLabelValues(outcome).Inc()
}
