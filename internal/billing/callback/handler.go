// internal/billing/callback/handler.go
package callback

import (
	"context"
	"net/url"

	"smartreceipt-billing/internal/billing/checkout"
	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// SubscriptionService is the slice of the subscription facade the callback
// path needs. The redirect leg bypasses the orchestrator, so compensation
// on a failed payment happens here.
type SubscriptionService interface {
	GetCurrent(ctx context.Context) (*models.Subscription, error)
	Cancel(ctx context.Context, reason string) (*models.Subscription, error)
	Activate(ctx context.Context, subscriptionID string) (*models.Subscription, error)
}

// StatusPoller drives the bounded polling loop for the returned payment.
type StatusPoller interface {
	Poll(ctx context.Context, paymentID string) (*models.PaymentResult, error)
}

// UsageInvalidator drops cached usage figures after a successful payment.
type UsageInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Result is the terminal view of one redirect return.
type Result struct {
	Outcome      checkout.Outcome
	PaymentID    string
	ErrorMessage string
}

// Handler resumes a checkout after the browser returns from a 3-D Secure
// redirect. The in-memory orchestrator state did not survive the redirect;
// payment identity is re-derived entirely from the return URL.
type Handler struct {
	poller StatusPoller
	subs   SubscriptionService
	usage  UsageInvalidator
	log    logger.Logger
}

func NewHandler(poller StatusPoller, subs SubscriptionService, usage UsageInvalidator, log logger.Logger) *Handler {
	return &Handler{
		poller: poller,
		subs:   subs,
		usage:  usage,
		log:    log,
	}
}

// HandleReturn recovers the payment identifier from the callback query
// parameters and drives the payment to a terminal outcome. A missing
// identifier fails immediately; no status fetch is attempted.
func (h *Handler) HandleReturn(ctx context.Context, query url.Values) (*Result, error) {
	paymentID := query.Get("token")
	if paymentID == "" {
		paymentID = query.Get("paymentId")
	}
	if paymentID == "" {
		h.log.Warn("redirect callback without payment identifier", nil)
		return nil, errors.NewCallbackMissingTokenError()
	}

	result, err := h.poller.Poll(ctx, paymentID)
	if err != nil {
		if errors.Is(err, errors.ErrCodePollingExhausted) {
			return &Result{
				Outcome:      checkout.OutcomePending,
				PaymentID:    paymentID,
				ErrorMessage: errors.FallbackPaymentProcessing,
			}, nil
		}
		return nil, err
	}

	if result.Status == models.PaymentCompleted {
		h.settleSuccess(ctx, paymentID)
		return &Result{
			Outcome:   checkout.OutcomeSucceeded,
			PaymentID: paymentID,
		}, nil
	}

	// Terminal but not completed: the subscription behind this payment must
	// not stay active. Same compensation rule as the orchestrator's own
	// failure branch.
	reason := "payment failed: " + errors.MessageOrFallback(result.ErrorMessage, errors.FallbackPaymentFailed)
	if _, err := h.subs.Cancel(ctx, reason); err != nil {
		h.log.WithError(err).Error("compensating cancellation failed after redirect", map[string]interface{}{
			"paymentId": paymentID,
		})
	}

	return &Result{
		Outcome:      checkout.OutcomeFailed,
		PaymentID:    paymentID,
		ErrorMessage: errors.MessageOrFallback(result.ErrorMessage, errors.FallbackPaymentFailed),
	}, nil
}

// settleSuccess refreshes the subscription after a completed payment and
// nudges it active when the backend left it pending. Both steps are best
// effort; the payment itself already settled.
func (h *Handler) settleSuccess(ctx context.Context, paymentID string) {
	sub, err := h.subs.GetCurrent(ctx)
	if err != nil {
		h.log.WithError(err).Warn("subscription refresh failed after payment", map[string]interface{}{
			"paymentId": paymentID,
		})
	} else if sub != nil && sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionTrial {
		if _, err := h.subs.Activate(ctx, sub.ID); err != nil {
			h.log.WithError(err).Warn("subscription activation failed after payment", map[string]interface{}{
				"subscriptionId": sub.ID,
			})
		}
	}

	if h.usage != nil {
		if err := h.usage.Invalidate(ctx); err != nil {
			h.log.WithError(err).Warn("usage cache invalidation failed", nil)
		}
	}

	h.log.Info("payment settled via redirect callback", map[string]interface{}{
		"paymentId": paymentID,
	})
}
