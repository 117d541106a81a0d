// internal/billing/poller/poller.go
package poller

import (
	"context"
	"time"

	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/common/metrics"
	"smartreceipt-billing/internal/models"
)

const (
	DefaultMaxAttempts = 10
	DefaultInterval    = 2 * time.Second
)

// StatusFetcher is the single backend call the poller depends on.
type StatusFetcher interface {
	GetStatus(ctx context.Context, paymentID string) (*models.PaymentResult, error)
}

// Poller drives a bounded, fixed-interval status polling loop. Attempts are
// strictly sequential; no two fetches for the same payment overlap.
type Poller struct {
	fetcher     StatusFetcher
	maxAttempts int
	interval    time.Duration
	log         logger.Logger
}

func New(fetcher StatusFetcher, maxAttempts int, interval time.Duration, log logger.Logger) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:     fetcher,
		maxAttempts: maxAttempts,
		interval:    interval,
		log:         log,
	}
}

// Poll fetches the payment status up to maxAttempts times, stopping early on
// the first terminal status. A fetch error consumes the attempt and the loop
// continues; the gateway may simply not know the payment yet. When every
// attempt is spent on a non-terminal status, the result is the last observed
// state plus a POLLING_EXHAUSTED error, which is a "check back later" signal
// rather than a failure.
func (p *Poller) Poll(ctx context.Context, paymentID string) (*models.PaymentResult, error) {
	var last *models.PaymentResult

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result, err := p.fetcher.GetStatus(ctx, paymentID)
		if err != nil {
			metrics.PaymentStatusPolls.WithLabelValues("error").Inc()
			p.log.WithError(err).Warn("payment status fetch failed", map[string]interface{}{
				"paymentId": paymentID,
				"attempt":   attempt,
			})
		} else {
			last = result
			if result.Status.IsTerminal() {
				metrics.PaymentStatusPolls.WithLabelValues("terminal").Inc()
				p.log.Info("payment reached terminal status", map[string]interface{}{
					"paymentId": paymentID,
					"status":    result.Status.String(),
					"attempt":   attempt,
				})
				return result, nil
			}
			metrics.PaymentStatusPolls.WithLabelValues("pending").Inc()
		}

		if attempt < p.maxAttempts {
			if err := p.wait(ctx); err != nil {
				return last, err
			}
		}
	}

	p.log.Warn("payment status polling exhausted", map[string]interface{}{
		"paymentId": paymentID,
		"attempts":  p.maxAttempts,
	})
	return last, errors.NewPollingExhaustedError(paymentID, p.maxAttempts)
}

// wait sleeps for the configured interval or until the context is done.
func (p *Poller) wait(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
