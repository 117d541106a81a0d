// internal/billing/callback/http.go
package callback

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartreceipt-billing/internal/common/errors"
)

type response struct {
	Outcome      string `json:"outcome"`
	PaymentID    string `json:"paymentId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Routes mounts the redirect return surface. The gateway may send the user
// back with either a GET or a form POST, so both are accepted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serveReturn)
	r.Post("/", h.serveReturn)
	return r
}

func (h *Handler) serveReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil && len(r.Form) > 0 {
			query = r.Form
		}
	}

	result, err := h.HandleReturn(r.Context(), query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrCodeCallbackMissingToken) {
			status = http.StatusBadRequest
		}
		msg := err.Error()
		var stdErr *errors.StandardError
		if goerrors.As(err, &stdErr) {
			msg = stdErr.Message
		}
		writeJSON(w, status, response{
			Outcome:      "failed",
			ErrorMessage: msg,
		})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Outcome:      string(result.Outcome),
		PaymentID:    result.PaymentID,
		ErrorMessage: result.ErrorMessage,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
