// internal/billing/portal/http.go
package portal

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartreceipt-billing/internal/common/auth"
	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// SubscriptionService is the slice of the subscription facade served here.
type SubscriptionService interface {
	GetPlans(ctx context.Context) ([]models.Plan, error)
	GetCurrent(ctx context.Context) (*models.Subscription, error)
	Cancel(ctx context.Context, reason string) (*models.Subscription, error)
}

// PaymentService is the slice of the payment facade served here.
type PaymentService interface {
	GetHistory(ctx context.Context) ([]models.PaymentHistoryEntry, error)
	Refund(ctx context.Context, paymentID string, req models.RefundRequest) (*models.RefundResult, error)
}

// ScanGate answers whether another scan submission is allowed right now.
type ScanGate interface {
	Check(ctx context.Context) (bool, error)
	Invalidate(ctx context.Context) error
}

// Handler serves the non-checkout billing surface: catalog, current
// subscription, quota gate, payment history, refunds and credential handoff.
type Handler struct {
	subs  SubscriptionService
	pay   PaymentService
	gate  ScanGate
	store auth.Store
	log   logger.Logger
}

func NewHandler(subs SubscriptionService, pay PaymentService, gate ScanGate, store auth.Store, log logger.Logger) *Handler {
	return &Handler{
		subs:  subs,
		pay:   pay,
		gate:  gate,
		store: store,
		log:   log,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/plans", h.servePlans)
	r.Get("/subscription", h.serveCurrent)
	r.Post("/subscription/cancel", h.serveCancel)
	r.Get("/scan-allowance", h.serveScanAllowance)
	r.Post("/scan-allowance/invalidate", h.serveInvalidate)
	r.Get("/payments/history", h.serveHistory)
	r.Post("/payments/{paymentID}/refund", h.serveRefund)
	r.Put("/credentials", h.serveSetCredentials)
	r.Delete("/credentials", h.serveClearCredentials)
	return r
}

func (h *Handler) servePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subs.GetPlans(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, plans)
}

func (h *Handler) serveCurrent(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subs.GetCurrent(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if sub == nil {
		// Free tier: no current subscription is not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) serveCancel(w http.ResponseWriter, r *http.Request) {
	var body models.CancelSubscriptionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	sub, err := h.subs.Cancel(r.Context(), body.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) serveScanAllowance(w http.ResponseWriter, r *http.Request) {
	allowed, err := h.gate.Check(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"canSubmitScan": allowed})
}

func (h *Handler) serveInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Invalidate(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.pay.GetHistory(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

func (h *Handler) serveRefund(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	var body models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.pay.Refund(r.Context(), paymentID, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) serveSetCredentials(w http.ResponseWriter, r *http.Request) {
	var tokens auth.Tokens
	if err := json.NewDecoder(r.Body).Decode(&tokens); err != nil || tokens.AccessToken == "" {
		http.Error(w, "accessToken is required", http.StatusBadRequest)
		return
	}

	if err := h.store.Set(r.Context(), tokens); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveClearCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	msg := err.Error()

	var stdErr *errors.StandardError
	if goerrors.As(err, &stdErr) {
		msg = stdErr.Message
		if stdErr.Code == errors.ErrCodeNetworkError {
			status = http.StatusServiceUnavailable
		}
	}

	h.log.WithError(err).Warn("portal request failed", nil)
	h.writeJSON(w, status, map[string]string{"message": msg})
}
