// internal/billing/checkout/http.go
package checkout

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/common/observability"
	"smartreceipt-billing/internal/iyzico"
	"smartreceipt-billing/internal/models"
)

// Service exposes the checkout flow over HTTP. Each request gets a fresh
// Orchestrator; a run is one-shot by design.
type Service struct {
	subs        SubscriptionService
	pay         PaymentService
	tokenizer   CardTokenizer
	poller      StatusPoller
	callbackURL string
	obs         *observability.Observability
	log         logger.Logger
}

func NewService(subs SubscriptionService, pay PaymentService, tokenizer CardTokenizer, poller StatusPoller, callbackURL string, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		subs:        subs,
		pay:         pay,
		tokenizer:   tokenizer,
		poller:      poller,
		callbackURL: callbackURL,
		obs:         obs,
		log:         log,
	}
}

type checkoutRequest struct {
	PlanID        string            `json:"planId"`
	BillingPeriod int               `json:"billingPeriod"`
	Card          iyzico.CardFields `json:"card"`
}

type checkoutResponse struct {
	Outcome        string `json:"outcome"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	PaymentID      string `json:"paymentId,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.serveCheckout)
	return r
}

func (s *Service) serveCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PlanID == "" {
		http.Error(w, "planId is required", http.StatusBadRequest)
		return
	}

	period := models.BillingPeriod(req.BillingPeriod)
	if period != models.BillingYearly {
		period = models.BillingMonthly
	}

	start := time.Now()
	orch := NewOrchestrator(s.subs, s.pay, s.tokenizer, s.poller, s.callbackURL, s.log)
	result, err := orch.Run(r.Context(), Request{
		PlanID:        req.PlanID,
		BillingPeriod: period,
		Card:          req.Card,
	})
	if s.obs != nil && result != nil {
		s.obs.RecordCheckoutProcessed(r.Context(), string(result.Outcome))
		s.obs.RecordCheckoutDuration(r.Context(), time.Since(start), string(result.Outcome))
	}
	if result == nil {
		msg := "checkout failed"
		if err != nil {
			msg = err.Error()
		}
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.Outcome == OutcomePending {
		status = http.StatusAccepted
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(checkoutResponse{
		Outcome:        string(result.Outcome),
		SubscriptionID: result.SubscriptionID,
		PaymentID:      result.PaymentID,
		RedirectURL:    result.RedirectURL,
		ErrorMessage:   result.ErrorMessage,
	})
}
