// internal/billing/portal/http_test.go
package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartreceipt-billing/internal/common/auth"
	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSubs struct {
	plans []models.Plan
	sub   *models.Subscription
	err   error

	cancelCalls int
	lastReason  string
}

func (f *fakeSubs) GetPlans(_ context.Context) ([]models.Plan, error) {
	return f.plans, f.err
}

func (f *fakeSubs) GetCurrent(_ context.Context) (*models.Subscription, error) {
	return f.sub, f.err
}

func (f *fakeSubs) Cancel(_ context.Context, reason string) (*models.Subscription, error) {
	f.cancelCalls++
	f.lastReason = reason
	return f.sub, f.err
}

type fakePay struct {
	history []models.PaymentHistoryEntry
	refund  *models.RefundResult
	err     error

	refundCalls   int
	lastPaymentID string
	lastRefund    models.RefundRequest
}

func (f *fakePay) GetHistory(_ context.Context) ([]models.PaymentHistoryEntry, error) {
	return f.history, f.err
}

func (f *fakePay) Refund(_ context.Context, paymentID string, req models.RefundRequest) (*models.RefundResult, error) {
	f.refundCalls++
	f.lastPaymentID = paymentID
	f.lastRefund = req
	if f.err != nil {
		return nil, f.err
	}
	return f.refund, nil
}

type fakeGate struct {
	allowed         bool
	err             error
	invalidateCalls int
}

func (f *fakeGate) Check(_ context.Context) (bool, error) {
	return f.allowed, f.err
}

func (f *fakeGate) Invalidate(_ context.Context) error {
	f.invalidateCalls++
	return f.err
}

func newTestHandler(t *testing.T, subs *fakeSubs, pay *fakePay, gate *fakeGate, store auth.Store) http.Handler {
	if store == nil {
		store = auth.NewMemoryStore()
	}
	return NewHandler(subs, pay, gate, store, logger.NewTestLogger(t)).Routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Catalog and Subscription Tests
// ==========================

func TestHandler_Plans(t *testing.T) {
	subs := &fakeSubs{plans: []models.Plan{
		{ID: "plan-free", Name: "Free", MonthlyScanLimit: 10},
		{ID: "plan-pro", Name: "Pro", MonthlyScanLimit: models.UnlimitedScans},
	}}
	h := newTestHandler(t, subs, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/plans", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "plan-pro")
}

func TestHandler_CurrentSubscription_NoneIsNoContent(t *testing.T) {
	h := newTestHandler(t, &fakeSubs{}, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/subscription", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_CurrentSubscription(t *testing.T) {
	subs := &fakeSubs{sub: &models.Subscription{
		ID:     "sub-1",
		Status: models.SubscriptionActive,
	}}
	h := newTestHandler(t, subs, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/subscription", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sub-1")
}

func TestHandler_Cancel_PassesReason(t *testing.T) {
	subs := &fakeSubs{sub: &models.Subscription{ID: "sub-1", Status: models.SubscriptionCancelled}}
	h := newTestHandler(t, subs, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodPost, "/subscription/cancel", `{"reason":"too expensive"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, subs.cancelCalls)
	assert.Equal(t, "too expensive", subs.lastReason)
}

// ==========================
// Scan Gate Tests
// ==========================

func TestHandler_ScanAllowance(t *testing.T) {
	h := newTestHandler(t, &fakeSubs{}, &fakePay{}, &fakeGate{allowed: true}, nil)

	rec := do(h, http.MethodGet, "/scan-allowance", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"canSubmitScan":true`)
}

func TestHandler_ScanAllowanceInvalidate(t *testing.T) {
	gate := &fakeGate{}
	h := newTestHandler(t, &fakeSubs{}, &fakePay{}, gate, nil)

	rec := do(h, http.MethodPost, "/scan-allowance/invalidate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, gate.invalidateCalls)
}

// ==========================
// Payment History and Refund Tests
// ==========================

func TestHandler_History(t *testing.T) {
	pay := &fakePay{history: []models.PaymentHistoryEntry{
		{ID: "pay-1", Amount: 99.90, Status: models.PaymentCompleted},
	}}
	h := newTestHandler(t, &fakeSubs{}, pay, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/payments/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pay-1")
}

func TestHandler_Refund(t *testing.T) {
	pay := &fakePay{refund: &models.RefundResult{
		IsSuccess: true,
		RefundID:  "ref-1",
		Status:    models.PaymentRefunded,
	}}
	h := newTestHandler(t, &fakeSubs{}, pay, &fakeGate{}, nil)

	rec := do(h, http.MethodPost, "/payments/pay-1/refund", `{"amount":99.90,"reason":"duplicate charge"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pay.refundCalls)
	assert.Equal(t, "pay-1", pay.lastPaymentID)
	assert.Equal(t, 99.90, pay.lastRefund.Amount)
}

// ==========================
// Credential Handoff Tests
// ==========================

func TestHandler_Credentials_RoundTrip(t *testing.T) {
	store := auth.NewMemoryStore()
	h := newTestHandler(t, &fakeSubs{}, &fakePay{}, &fakeGate{}, store)

	rec := do(h, http.MethodPut, "/credentials", `{"accessToken":"at-1","refreshToken":"rt-1"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	tokens, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Equal(t, "rt-1", tokens.RefreshToken)

	rec = do(h, http.MethodDelete, "/credentials", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestHandler_Credentials_MissingAccessTokenIsBadRequest(t *testing.T) {
	h := newTestHandler(t, &fakeSubs{}, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodPut, "/credentials", `{"refreshToken":"rt-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Error Mapping Tests
// ==========================

func TestHandler_NetworkErrorIsServiceUnavailable(t *testing.T) {
	subs := &fakeSubs{err: errors.NewNetworkError(assertErr{})}
	h := newTestHandler(t, subs, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/plans", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.FallbackNetwork)
}

func TestHandler_BackendErrorIsBadGateway(t *testing.T) {
	subs := &fakeSubs{err: assertErr{}}
	h := newTestHandler(t, subs, &fakePay{}, &fakeGate{}, nil)

	rec := do(h, http.MethodGet, "/subscription", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

type assertErr struct{}

func (assertErr) Error() string { return "backend exploded" }
