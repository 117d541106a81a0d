// internal/billing/checkout/orchestrator.go
package checkout

import (
	"context"
	"sync/atomic"
	"time"

	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/common/metrics"
	"smartreceipt-billing/internal/iyzico"
	"smartreceipt-billing/internal/models"
)

// Outcome is what the caller gets back from a finished Run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeRedirect  Outcome = "redirect"
	OutcomePending   Outcome = "pending"
)

// Request starts one checkout: a chosen plan, a billing period and the raw
// card form input.
type Request struct {
	PlanID        string
	BillingPeriod models.BillingPeriod
	Card          iyzico.CardFields
}

// Result is the terminal view of one checkout run.
type Result struct {
	Outcome        Outcome
	State          State
	SubscriptionID string
	PaymentID      string
	RedirectURL    string
	ErrorMessage   string
}

// SubscriptionService is the slice of the subscription facade the
// orchestrator needs.
type SubscriptionService interface {
	Subscribe(ctx context.Context, req models.SubscribeRequest) (*models.Subscription, error)
	Cancel(ctx context.Context, reason string) (*models.Subscription, error)
}

// PaymentService creates payments against the backend gateway.
type PaymentService interface {
	Create(ctx context.Context, req models.CreatePaymentRequest) (*models.PaymentResult, error)
}

// CardTokenizer turns raw card fields into a single-use token pair.
type CardTokenizer interface {
	Tokenize(ctx context.Context, fields iyzico.CardFields) (*iyzico.TokenPair, error)
}

// StatusPoller drives the bounded polling loop after a non-redirect payment.
type StatusPoller interface {
	Poll(ctx context.Context, paymentID string) (*models.PaymentResult, error)
}

// Orchestrator runs the checkout state machine. One Orchestrator drives at
// most one checkout: subscription creation strictly precedes tokenization,
// which strictly precedes payment creation, with no concurrent fan-out.
type Orchestrator struct {
	subs        SubscriptionService
	pay         PaymentService
	tokenizer   CardTokenizer
	poller      StatusPoller
	callbackURL string
	log         logger.Logger

	state State
	ran   atomic.Bool
}

func NewOrchestrator(subs SubscriptionService, pay PaymentService, tokenizer CardTokenizer, poller StatusPoller, callbackURL string, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		subs:        subs,
		pay:         pay,
		tokenizer:   tokenizer,
		poller:      poller,
		callbackURL: callbackURL,
		log:         log,
		state:       StateIdle,
	}
}

// State returns the machine's current position.
func (o *Orchestrator) State() State {
	return o.state
}

// Run drives one checkout to a terminal outcome. At most one subscription
// and one payment are created per invocation; retrying requires a fresh
// Orchestrator so a duplicate subscribe surfaces the backend's 409 instead
// of being masked here.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if !o.ran.CompareAndSwap(false, true) {
		return nil, errors.NewValidationError("checkout already ran; start a fresh invocation")
	}

	start := time.Now()
	metrics.CheckoutsStarted.WithLabelValues(req.BillingPeriod.String()).Inc()

	result, err := o.run(ctx, req)

	outcome := string(OutcomeFailed)
	if result != nil {
		outcome = string(result.Outcome)
	}
	metrics.CheckoutsCompleted.WithLabelValues(outcome).Inc()
	metrics.CheckoutDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CheckoutsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
	}

	return result, err
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*Result, error) {
	// Step 1: create the subscription. Nothing downstream exists yet, so a
	// failure here needs no compensation.
	sub, err := o.subs.Subscribe(ctx, models.SubscribeRequest{
		PlanID:        req.PlanID,
		BillingPeriod: req.BillingPeriod,
	})
	if err != nil {
		o.advance(EventSubscribeFailed)
		stdErr := errors.NewSubscriptionCreateFailedError(err)
		return o.failed(stdErr, "", ""), stdErr
	}
	o.advance(EventSubscribeSucceeded)

	// Step 2: tokenize the card. Validation and gateway rejections are
	// local recoveries: no payment exists and the subscription is left for
	// the user to retry payment against.
	pair, err := o.tokenizer.Tokenize(ctx, req.Card)
	if err != nil {
		o.advance(EventTokenizeFailed)
		return o.failed(err, sub.ID, ""), err
	}

	// Step 3: create the payment. From here on, a failure leaves an active
	// subscription with no money behind it, so compensation applies.
	amount := sub.Plan.PriceFor(req.BillingPeriod)
	payment, err := o.pay.Create(ctx, models.CreatePaymentRequest{
		SubscriptionID: sub.ID,
		Amount:         amount,
		Currency:       models.CurrencyTRY,
		Provider:       models.ProviderIyzico,
		CardToken:      pair.CardToken,
		CardUserKey:    pair.CardUserKey,
		CallbackURL:    o.callbackURL,
		Description:    "Subscription payment for plan " + sub.Plan.Name,
	})
	if err != nil {
		o.advance(EventPaymentCreateFailed)
		o.compensate(ctx, "payment failed: payment creation error")
		stdErr := errors.NewPaymentCreateFailedError(err)
		return o.failed(stdErr, sub.ID, ""), stdErr
	}
	o.advance(EventPaymentCreated)

	// Step 4: redirect takes priority. The browser leaves the application
	// and the callback handler resumes the flow out-of-band.
	if payment.RedirectURL != "" {
		o.advance(EventRedirectRequired)
		o.log.Info("payment requires redirect", map[string]interface{}{
			"paymentId":      payment.PaymentID,
			"subscriptionId": sub.ID,
		})
		return &Result{
			Outcome:        OutcomeRedirect,
			State:          o.state,
			SubscriptionID: sub.ID,
			PaymentID:      payment.PaymentID,
			RedirectURL:    payment.RedirectURL,
		}, nil
	}

	return o.settle(ctx, sub.ID, payment)
}

// settle drives a redirect-free payment to its terminal status, polling when
// the gateway answered with a non-terminal state.
func (o *Orchestrator) settle(ctx context.Context, subscriptionID string, payment *models.PaymentResult) (*Result, error) {
	final := payment
	if !payment.Status.IsTerminal() {
		o.advance(EventPollStarted)
		polled, err := o.poller.Poll(ctx, payment.PaymentID)
		if err != nil {
			if errors.Is(err, errors.ErrCodePollingExhausted) {
				// Still pending after every attempt. Not a failure; the
				// payment settles later and reconciliation picks it up.
				o.advance(EventPollExhausted)
				return &Result{
					Outcome:        OutcomePending,
					State:          o.state,
					SubscriptionID: subscriptionID,
					PaymentID:      payment.PaymentID,
					ErrorMessage:   errors.FallbackPaymentProcessing,
				}, nil
			}
			return nil, err
		}
		final = polled
	}

	if final.Status == models.PaymentCompleted {
		o.advance(EventPaymentCompleted)
		o.log.Info("checkout succeeded", map[string]interface{}{
			"subscriptionId": subscriptionID,
			"paymentId":      final.PaymentID,
		})
		return &Result{
			Outcome:        OutcomeSucceeded,
			State:          o.state,
			SubscriptionID: subscriptionID,
			PaymentID:      final.PaymentID,
		}, nil
	}

	// Failed, Cancelled or a refund status: the money never arrived, so the
	// subscription created in this run must not stay active.
	o.advance(EventPaymentFailed)
	o.compensate(ctx, "payment failed: "+errors.MessageOrFallback(final.ErrorMessage, errors.FallbackPaymentFailed))
	stdErr := errors.NewPaymentFailedError(final.ErrorMessage)
	return o.failed(stdErr, subscriptionID, final.PaymentID), stdErr
}

// compensate cancels the subscription created earlier in this run. Best
// effort: a failed cancel is logged and swallowed so the primary payment
// failure stays the user-visible error.
func (o *Orchestrator) compensate(ctx context.Context, reason string) {
	if _, err := o.subs.Cancel(ctx, reason); err != nil {
		metrics.CompensatingCancellations.WithLabelValues("failed").Inc()
		o.log.WithError(err).Error("compensating cancellation failed", map[string]interface{}{
			"reason": reason,
		})
		return
	}
	metrics.CompensatingCancellations.WithLabelValues("succeeded").Inc()
	o.log.Info("subscription cancelled after payment failure", map[string]interface{}{
		"reason": reason,
	})
}

func (o *Orchestrator) failed(err error, subscriptionID, paymentID string) *Result {
	msg := ""
	var stdErr *errors.StandardError
	if e, ok := err.(*errors.StandardError); ok {
		stdErr = e
	}
	if stdErr != nil {
		msg = stdErr.Message
	} else if err != nil {
		msg = err.Error()
	}
	return &Result{
		Outcome:        OutcomeFailed,
		State:          o.state,
		SubscriptionID: subscriptionID,
		PaymentID:      paymentID,
		ErrorMessage:   msg,
	}
}

// advance applies the transition function, logging the step. Invalid
// transitions indicate a programming error in this file.
func (o *Orchestrator) advance(e Event) {
	next, err := Transition(o.state, e)
	if err != nil {
		o.log.WithError(err).Error("checkout state machine violation", map[string]interface{}{
			"state": o.state.String(),
			"event": e.String(),
		})
		return
	}
	o.log.Debug("checkout transition", map[string]interface{}{
		"from":  o.state.String(),
		"event": e.String(),
		"to":    next.String(),
	})
	o.state = next
}
