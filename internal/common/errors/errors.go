// Package errors provides standardized error handling for the billing flow.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeTokenizerUnavailable ErrorCode = "TOKENIZER_UNAVAILABLE"
	ErrCodeTokenizationFailed   ErrorCode = "TOKENIZATION_FAILED"

	ErrCodeSubscriptionCreateFailed ErrorCode = "SUBSCRIPTION_CREATE_FAILED"
	ErrCodePaymentCreateFailed      ErrorCode = "PAYMENT_CREATE_FAILED"
	ErrCodePaymentFailed            ErrorCode = "PAYMENT_FAILED"

	ErrCodePollingExhausted     ErrorCode = "POLLING_EXHAUSTED"
	ErrCodeCallbackMissingToken ErrorCode = "CALLBACK_MISSING_TOKEN"
	ErrCodeNetworkError         ErrorCode = "NETWORK_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// Is reports whether err is a StandardError carrying the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ==========================
// 2. Fallback Messages
// ==========================

// Turkish-locale fallback texts shown when the backend supplies no message.
const (
	FallbackPaymentFailed        = "Ödeme işlemi başarısız oldu"
	FallbackSubscriptionFailed   = "Abonelik oluşturulamadı"
	FallbackNetwork              = "Sunucuya bağlanılamadı"
	FallbackTokenizer            = "Kart bilgileri tokenize edilemedi"
	FallbackTokenizerUnavailable = "Ödeme altyapısı yüklenemedi. Lütfen sayfayı yenileyin."
	FallbackCallbackMissing      = "Ödeme bilgisi bulunamadı"
	FallbackPaymentProcessing    = "Ödeme işleniyor, lütfen daha sonra tekrar kontrol edin"
)

// MessageOrFallback returns msg when non-empty, fallback otherwise.
func MessageOrFallback(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError creates a non-retryable local field validation error.
// No network call was made when this is returned.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Card field validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenizerUnavailableError signals that the tokenization entry point
// is not configured or not loaded.
func NewTokenizerUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenizerUnavailable,
		Message:   FallbackTokenizerUnavailable,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenizationError creates a non-retryable error carrying the gateway's
// rejection message and code.
func NewTokenizationError(gatewayMessage, gatewayCode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenizationFailed,
		Message:   MessageOrFallback(gatewayMessage, FallbackTokenizer),
		Details:   gatewayCode,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionCreateFailedError wraps a failed subscribe call. The
// backend message is surfaced verbatim when present (a 409 conflict on an
// existing active subscription included).
func NewSubscriptionCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionCreateFailed,
		Message:   MessageOrFallback(backendMessage(err), FallbackSubscriptionFailed),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentCreateFailedError wraps a failed payment creation. The caller
// is expected to have issued the compensating subscription cancellation.
func NewPaymentCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentCreateFailed,
		Message:   MessageOrFallback(backendMessage(err), FallbackPaymentFailed),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentFailedError reports a terminal gateway-side decline.
func NewPaymentFailedError(gatewayMessage string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentFailed,
		Message:   MessageOrFallback(gatewayMessage, FallbackPaymentFailed),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPollingExhaustedError signals that the payment was still pending after
// the configured number of status fetches. Not a failure: the caller should
// present a "check back later" state.
func NewPollingExhaustedError(paymentID string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodePollingExhausted,
		Message:   FallbackPaymentProcessing,
		Details:   fmt.Sprintf("paymentId: %s, attempts: %d", paymentID, attempts),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCallbackMissingTokenError signals a redirect return URL without a
// payment identifier. Never retried.
func NewCallbackMissingTokenError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCallbackMissingToken,
		Message:   FallbackCallbackMissing,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError wraps a transport-level failure where no response reached
// the backend at all.
func NewNetworkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   FallbackNetwork,
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// backendMessage pulls a user-presentable message out of an API error chain.
func backendMessage(err error) string {
	var be interface{ BackendMessage() string }
	if errors.As(err, &be) {
		return be.BackendMessage()
	}
	return ""
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeNetworkError, ErrCodePollingExhausted:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeTokenizerUnavailable, ErrCodeTokenizationFailed:
		return "CARD"
	case ErrCodeSubscriptionCreateFailed:
		return "SUBSCRIPTION"
	case ErrCodePaymentCreateFailed, ErrCodePaymentFailed, ErrCodePollingExhausted, ErrCodeCallbackMissingToken:
		return "PAYMENT"
	case ErrCodeNetworkError:
		return "TRANSPORT"
	default:
		return "OTHER"
	}
}
