// Package payments holds the outbound client for the external checkout
// provider. Only session creation is modeled; confirmations come back
// through the webhook or the confirmations topic.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avaldes-dev/condoreserve/config"
	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/google/uuid"
)

type SessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// Client creates checkout sessions against the provider API. All calls are
// bounded by the configured timeout; a deadline surfaces as
// domain.ErrProviderTimeout so callers know the charge was not touched and
// a retry is safe.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// fresh key per attempt: a timed-out call that actually landed creates
	// an orphan session on the provider side, which is harmless, while a
	// reused key could bind two charges to one session
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", domain.ErrProviderTimeout
		}
		return "", fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var out SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("provider returned empty session id")
	}
	return out.SessionID, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
