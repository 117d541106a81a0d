// internal/billing/callback/handler_test.go
package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreceipt-billing/internal/billing/checkout"
	stderrors "smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakePoller struct {
	calls  int
	lastID string
	result *models.PaymentResult
	err    error
}

func (f *fakePoller) Poll(_ context.Context, paymentID string) (*models.PaymentResult, error) {
	f.calls++
	f.lastID = paymentID
	return f.result, f.err
}

type fakeSubs struct {
	current       *models.Subscription
	currentErr    error
	cancelCalls   int
	cancelReasons []string
	activateCalls int
	activatedID   string
}

func (f *fakeSubs) GetCurrent(_ context.Context) (*models.Subscription, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.current, nil
}

func (f *fakeSubs) Cancel(_ context.Context, reason string) (*models.Subscription, error) {
	f.cancelCalls++
	f.cancelReasons = append(f.cancelReasons, reason)
	return f.current, nil
}

func (f *fakeSubs) Activate(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	f.activateCalls++
	f.activatedID = subscriptionID
	return f.current, nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context) error {
	f.calls++
	return nil
}

func completedResult() *models.PaymentResult {
	return &models.PaymentResult{
		IsSuccess: true,
		PaymentID: "pay-1",
		Status:    models.PaymentCompleted,
	}
}

// ==========================
// HandleReturn Tests
// ==========================

func TestHandler_HandleReturn_MissingTokenNeverFetches(t *testing.T) {
	poller := &fakePoller{}
	h := NewHandler(poller, &fakeSubs{}, nil, logger.NewTestLogger(t))

	result, err := h.HandleReturn(context.Background(), url.Values{})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeCallbackMissingToken))
	assert.Equal(t, 0, poller.calls, "no status fetch may happen without a payment identifier")
}

func TestHandler_HandleReturn_TokenParameter(t *testing.T) {
	poller := &fakePoller{result: completedResult()}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1", Status: models.SubscriptionActive}}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	query := url.Values{"token": {"pay-1"}}
	result, err := h.HandleReturn(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
	assert.Equal(t, "pay-1", poller.lastID)
}

func TestHandler_HandleReturn_PaymentIdFallback(t *testing.T) {
	poller := &fakePoller{result: completedResult()}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1", Status: models.SubscriptionActive}}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	query := url.Values{"paymentId": {"pay-9"}}
	result, err := h.HandleReturn(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, "pay-9", poller.lastID)
	assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
}

func TestHandler_HandleReturn_SuccessActivatesPendingSubscription(t *testing.T) {
	poller := &fakePoller{result: completedResult()}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1", Status: models.SubscriptionSuspended}}
	invalidator := &fakeInvalidator{}
	h := NewHandler(poller, subs, invalidator, logger.NewTestLogger(t))

	result, err := h.HandleReturn(context.Background(), url.Values{"token": {"pay-1"}})
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
	assert.Equal(t, 1, subs.activateCalls)
	assert.Equal(t, "sub-1", subs.activatedID)
	assert.Equal(t, 1, invalidator.calls, "usage figures change after a successful payment")
	assert.Equal(t, 0, subs.cancelCalls)
}

func TestHandler_HandleReturn_SuccessSkipsActivationWhenAlreadyActive(t *testing.T) {
	poller := &fakePoller{result: completedResult()}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1", Status: models.SubscriptionActive}}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	_, err := h.HandleReturn(context.Background(), url.Values{"token": {"pay-1"}})
	require.NoError(t, err)
	assert.Equal(t, 0, subs.activateCalls)
}

func TestHandler_HandleReturn_FailureCompensates(t *testing.T) {
	poller := &fakePoller{result: &models.PaymentResult{
		PaymentID:    "pay-1",
		Status:       models.PaymentFailed,
		ErrorMessage: "3D Secure doğrulaması başarısız",
	}}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1"}}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	result, err := h.HandleReturn(context.Background(), url.Values{"token": {"pay-1"}})
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomeFailed, result.Outcome)
	assert.Equal(t, "3D Secure doğrulaması başarısız", result.ErrorMessage)

	require.Equal(t, 1, subs.cancelCalls, "the redirect path must compensate like the orchestrator")
	assert.Contains(t, subs.cancelReasons[0], "payment")
}

func TestHandler_HandleReturn_ExhaustionIsPending(t *testing.T) {
	poller := &fakePoller{err: stderrors.NewPollingExhaustedError("pay-1", 10)}
	subs := &fakeSubs{}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	result, err := h.HandleReturn(context.Background(), url.Values{"token": {"pay-1"}})
	require.NoError(t, err)
	assert.Equal(t, checkout.OutcomePending, result.Outcome)
	assert.Equal(t, 0, subs.cancelCalls)
}

// ==========================
// HTTP Surface Tests
// ==========================

func TestHandler_ServeReturn_GetWithToken(t *testing.T) {
	poller := &fakePoller{result: completedResult()}
	subs := &fakeSubs{current: &models.Subscription{ID: "sub-1", Status: models.SubscriptionActive}}
	h := NewHandler(poller, subs, nil, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/?token=pay-1", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"succeeded"`)
	assert.Contains(t, rec.Body.String(), `"paymentId":"pay-1"`)
}

func TestHandler_ServeReturn_MissingTokenIsBadRequest(t *testing.T) {
	poller := &fakePoller{}
	h := NewHandler(poller, &fakeSubs{}, nil, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, poller.calls)
	assert.Contains(t, rec.Body.String(), stderrors.FallbackCallbackMissing)
}
