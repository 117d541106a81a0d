// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_checkouts_started_total",
			Help: "Total number of checkout flows started",
		},
		[]string{"billing_period"},
	)

	CheckoutsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_checkouts_completed_total",
			Help: "Total number of checkout flows finished, by outcome",
		},
		[]string{"outcome"},
	)

	CheckoutsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_checkouts_failed_total",
			Help: "Total number of checkout flows failed, by error code",
		},
		[]string{"error_code"},
	)

	CheckoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "billing_checkout_duration_seconds",
			Help: "Duration of checkout flows in seconds",
		},
		[]string{"outcome"},
	)

	PaymentStatusPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payment_status_polls_total",
			Help: "Total number of payment status fetches issued by the poller",
		},
		[]string{"result"},
	)

	CompensatingCancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_compensating_cancellations_total",
			Help: "Total number of compensating subscription cancellations, by result",
		},
		[]string{"result"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_backend_requests_total",
			Help: "Total number of backend REST calls, by endpoint and status class",
		},
		[]string{"endpoint", "status"},
	)

	UsageGateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_usage_gate_decisions_total",
			Help: "Total number of scan gate decisions, by decision",
		},
		[]string{"decision"},
	)
)
