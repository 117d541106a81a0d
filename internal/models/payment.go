// internal/models/payment.go
package models

// PaymentStatus mirrors the backend's numeric payment status enum.
type PaymentStatus int

const (
	PaymentPending           PaymentStatus = 1
	PaymentProcessing        PaymentStatus = 2
	PaymentCompleted         PaymentStatus = 3
	PaymentFailed            PaymentStatus = 4
	PaymentCancelled         PaymentStatus = 5
	PaymentRefunded          PaymentStatus = 6
	PaymentPartiallyRefunded PaymentStatus = 7
)

// IsTerminal reports whether no further status transition can occur.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentCompleted, PaymentFailed, PaymentCancelled, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "pending"
	case PaymentProcessing:
		return "processing"
	case PaymentCompleted:
		return "completed"
	case PaymentFailed:
		return "failed"
	case PaymentCancelled:
		return "cancelled"
	case PaymentRefunded:
		return "refunded"
	case PaymentPartiallyRefunded:
		return "partially_refunded"
	}
	return "unknown"
}

// PaymentProvider mirrors the backend's numeric provider enum.
type PaymentProvider int

const (
	ProviderIyzico PaymentProvider = 1
	ProviderStripe PaymentProvider = 2
	ProviderPayPal PaymentProvider = 3
)

// Currency mirrors the backend's numeric currency enum.
type Currency int

const (
	CurrencyTRY Currency = 0
	CurrencyUSD Currency = 1
	CurrencyEUR Currency = 2
	CurrencyGBP Currency = 3
)

// CreatePaymentRequest is the POST /Payments body.
type CreatePaymentRequest struct {
	SubscriptionID string                 `json:"subscriptionId"`
	InvoiceID      string                 `json:"invoiceId,omitempty"`
	Amount         float64                `json:"amount"`
	Currency       Currency               `json:"currency"`
	Provider       PaymentProvider        `json:"provider"`
	PaymentMethod  string                 `json:"paymentMethod,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CardToken      string                 `json:"cardToken,omitempty"`
	CardUserKey    string                 `json:"cardUserKey,omitempty"`
	CallbackURL    string                 `json:"callbackUrl,omitempty"`
}

// PaymentResult is returned by payment creation and by status lookups.
type PaymentResult struct {
	IsSuccess     bool          `json:"isSuccess"`
	PaymentID     string        `json:"paymentId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	RedirectURL   string        `json:"redirectUrl,omitempty"`
	Status        PaymentStatus `json:"status"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
}

// PaymentHistoryEntry is one row of GET /Payments/history.
type PaymentHistoryEntry struct {
	ID           string          `json:"id"`
	Amount       float64         `json:"amount"`
	Currency     Currency        `json:"currency"`
	Status       PaymentStatus   `json:"status"`
	Provider     PaymentProvider `json:"provider"`
	CreatedAt    string          `json:"createdAt"`
	PaidAt       string          `json:"paidAt,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason,omitempty"`
}

type RefundResult struct {
	IsSuccess    bool          `json:"isSuccess"`
	RefundID     string        `json:"refundId,omitempty"`
	Status       PaymentStatus `json:"status"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}
