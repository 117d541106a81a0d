// internal/api/payments/client.go
package payments

import (
	"context"
	"fmt"

	"smartreceipt-billing/internal/api"
	"smartreceipt-billing/internal/common/auth"
	"smartreceipt-billing/internal/common/config"
	"smartreceipt-billing/internal/common/httpclient"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// Client is the REST facade over the payment gateway endpoints. No retries
// happen here.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	token      auth.TokenProvider
	log        logger.Logger
}

func NewClient(cfg config.BackendConfig, token auth.TokenProvider, log logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		token:      token,
		log:        log,
	}
}

// Create submits one payment attempt for a subscription. The result may
// carry a redirect URL when the issuer demands a 3-D Secure challenge.
func (c *Client) Create(ctx context.Context, req models.CreatePaymentRequest) (*models.PaymentResult, error) {
	var result models.PaymentResult
	err := api.DoJSON(ctx, c.httpClient, c.token, "POST",
		c.baseURL+"/Payments", "payments.create", req, &result)
	if err != nil {
		return nil, err
	}

	c.log.Info("payment created", map[string]interface{}{
		"paymentId":      result.PaymentID,
		"subscriptionId": req.SubscriptionID,
		"status":         result.Status.String(),
		"redirect":       result.RedirectURL != "",
	})
	return &result, nil
}

// GetStatus fetches the current state of one payment. Used by the poller.
func (c *Client) GetStatus(ctx context.Context, paymentID string) (*models.PaymentResult, error) {
	var result models.PaymentResult
	url := fmt.Sprintf("%s/Payments/%s", c.baseURL, paymentID)
	err := api.DoJSON(ctx, c.httpClient, c.token, "GET", url, "payments.status", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHistory fetches the user's past payment attempts.
func (c *Client) GetHistory(ctx context.Context) ([]models.PaymentHistoryEntry, error) {
	var history []models.PaymentHistoryEntry
	err := api.DoJSON(ctx, c.httpClient, c.token, "GET",
		c.baseURL+"/Payments/history", "payments.history", nil, &history)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Refund requests a full or partial refund of a completed payment.
func (c *Client) Refund(ctx context.Context, paymentID string, req models.RefundRequest) (*models.RefundResult, error) {
	var result models.RefundResult
	url := fmt.Sprintf("%s/Payments/%s/refund", c.baseURL, paymentID)
	err := api.DoJSON(ctx, c.httpClient, c.token, "POST", url, "payments.refund", req, &result)
	if err != nil {
		return nil, err
	}

	c.log.Info("refund requested", map[string]interface{}{
		"paymentId": paymentID,
		"refundId":  result.RefundID,
		"success":   result.IsSuccess,
	})
	return &result, nil
}
