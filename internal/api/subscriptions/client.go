// internal/api/subscriptions/client.go
package subscriptions

import (
	"context"
	"fmt"
	"net/http"

	"smartreceipt-billing/internal/api"
	"smartreceipt-billing/internal/common/auth"
	"smartreceipt-billing/internal/common/config"
	"smartreceipt-billing/internal/common/httpclient"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/models"
)

// Client is the REST facade over the subscription lifecycle endpoints.
// No retries happen here.
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

// GetPlans fetches the plan catalog.
func (c *Client) GetPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := api.DoJSON(ctx, c.httpClient, c.token, "GET",
		c.baseURL+"/Subscriptions/plans", "subscriptions.plans", nil, &plans)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// GetCurrent fetches the user's current subscription. A 404 means the user
// is on the implicit free tier and is not an error.
func (c *Client) GetCurrent(ctx context.Context) (*models.Subscription, error) {
	var sub models.Subscription
	err := api.DoJSON(ctx, c.httpClient, c.token, "GET",
		c.baseURL+"/Subscriptions/current", "subscriptions.current", nil, &sub)
	if api.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetUsage fetches the usage snapshot for one (year, month) period.
func (c *Client) GetUsage(ctx context.Context, year, month int) (*models.Usage, error) {
	var usage models.Usage
	url := fmt.Sprintf("%s/Subscriptions/usage?year=%d&month=%d", c.baseURL, year, month)
	err := api.DoJSON(ctx, c.httpClient, c.token, "GET", url, "subscriptions.usage", nil, &usage)
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// Subscribe creates a subscription for the given plan and billing period.
// The backend answers 409 when an active subscription already exists; that
// conflict is surfaced verbatim.
func (c *Client) Subscribe(ctx context.Context, req models.SubscribeRequest) (*models.Subscription, error) {
	var sub models.Subscription
	err := api.DoJSON(ctx, c.httpClient, c.token, "POST",
		c.baseURL+"/Subscriptions/subscribe", "subscriptions.subscribe", req, &sub)
	if err != nil {
		return nil, err
	}

	c.log.Info("subscription created", map[string]interface{}{
		"subscriptionId": sub.ID,
		"planId":         sub.Plan.ID,
		"billingPeriod":  sub.BillingPeriod.String(),
	})
	return &sub, nil
}

// Cancel cancels the user's current subscription with an optional reason.
func (c *Client) Cancel(ctx context.Context, reason string) (*models.Subscription, error) {
	var sub models.Subscription
	req := models.CancelSubscriptionRequest{Reason: reason}
	err := api.DoJSON(ctx, c.httpClient, c.token, "POST",
		c.baseURL+"/Subscriptions/cancel", "subscriptions.cancel", req, &sub)
	if err != nil {
		return nil, err
	}

	c.log.Info("subscription cancelled", map[string]interface{}{
		"subscriptionId": sub.ID,
		"reason":         reason,
	})
	return &sub, nil
}

// Activate marks a pending subscription active after its payment settled.
func (c *Client) Activate(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	url := fmt.Sprintf("%s/Subscriptions/%s/activate", c.baseURL, subscriptionID)
	err := api.DoJSON(ctx, c.httpClient, c.token, "POST", url, "subscriptions.activate", nil, &sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
