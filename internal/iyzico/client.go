// internal/iyzico/client.go
package iyzico

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smartreceipt-billing/internal/common/config"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"

	// Single-use tokens only; card storage is a backend concern.
	registerCardOff = 0
)

// TokenRequest is the wire shape of a tokenization call.
type TokenRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId"`
	RegisterCard   int    `json:"registerCard"`
	CardHolderName string `json:"cardHolderName"`
	CardNumber     string `json:"cardNumber"`
	ExpireMonth    string `json:"expireMonth"`
	ExpireYear     string `json:"expireYear"`
	CVC            string `json:"cvc"`
}

// TokenResponse is the gateway's answer. Status is "success" or "failure".
type TokenResponse struct {
	Status       string `json:"status"`
	CardToken    string `json:"cardToken,omitempty"`
	CardUserKey  string `json:"cardUserKey,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
}

// CardCreator is the tokenization entry point. A nil CardCreator models the
// gateway script not being loaded at all.
type CardCreator interface {
	CreateToken(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

// Client talks to the card tokenization gateway over REST.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.TokenizerConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) CreateToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/cardtoken", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tokenization request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokenization gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &tokenResp, nil
}
