// internal/app/system/metrics/metrics.go

// Package metrics registers the prometheus collectors shared across the app.
// Handlers expose them via promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentRequests counts calls to the payment authority by operation
	// (authorize, capture, cancel, query) and outcome (ok, retryable,
	// rejected, fatal).
	PaymentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorconnect_payment_requests_total",
		Help: "Payment authority calls by operation and outcome.",
	}, []string{"op", "outcome"})

	// AssignmentTransitions counts committed assignment status transitions
	// by target status.
	AssignmentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorconnect_assignment_transitions_total",
		Help: "Committed assignment status transitions by target status.",
	}, []string{"to"})

	// NotificationPushFailures counts real-time pushes that failed after the
	// notification row was persisted. These are degraded deliveries, not
	// lost notifications.
	NotificationPushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorconnect_notification_push_failures_total",
		Help: "Best-effort notification pushes that failed after persistence.",
	})

	// CompensationFailures counts compensating cancels of a dangling payment
	// authorization that themselves failed. Each one represents held funds
	// with no matching assignment and needs operator reconciliation.
	CompensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorconnect_payment_compensation_failures_total",
		Help: "Failed compensating cancels of dangling payment authorizations.",
	})

	// AuthorizationMismatches counts settled assignments whose authorization
	// is in an unexpected state at the payment authority, as observed by the
	// reconciliation worker.
	AuthorizationMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorconnect_payment_authorization_mismatches_total",
		Help: "Settled assignments whose payment authorization state disagrees with the authority.",
	})
)
