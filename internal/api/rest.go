// internal/api/rest.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"smartreceipt-billing/internal/common/auth"
	stderrors "smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/httpclient"
	"smartreceipt-billing/internal/common/metrics"
)

// Error is the typed failure for any backend REST call. It carries the HTTP
// status and the backend-supplied message when one was present.
type Error struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// BackendMessage exposes the backend's own message for user-facing surfacing.
func (e *Error) BackendMessage() string {
	return e.Message
}

// IsStatus reports whether err is a backend Error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	if goerrors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// backendErrorBody matches the error envelope the backend emits on 4xx/5xx.
type backendErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// DoJSON issues one JSON request against the backend. No retries happen
// here; retry policy belongs to the orchestrator and poller layers.
func DoJSON(ctx context.Context, client *httpclient.Client, token auth.TokenProvider, method, url, endpoint string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
		}
		reqBody = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != nil {
		bearer, err := token(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve credentials for %s: %w", endpoint, err)
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, "network_error").Inc()
		return stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	metrics.BackendRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode >= 400 {
		var envelope backendErrorBody
		_ = json.Unmarshal(respBody, &envelope)
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   endpoint,
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
		}
	}
	return nil
}
