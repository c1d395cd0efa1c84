// Package billing talks to the hosted payment function that creates processor
// subscriptions for coaches.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no function URL has been set.
var ErrNotConfigured = errors.New("billing function not configured")

// UpstreamError carries a non-2xx answer from the payment function.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment function returned %d", e.StatusCode)
	}
	return fmt.Sprintf("payment function returned %d: %s", e.StatusCode, e.Message)
}

// CheckoutRequest is the body expected by the payment function.
type CheckoutRequest struct {
	CoachID string `json:"coachId"`
	PriceID string `json:"priceId"`
	Email   string `json:"email"`
	Plan    string `json:"plan"`
}

// CheckoutSession is what the mobile payment sheet needs to present.
type CheckoutSession struct {
	SubscriptionID  string `json:"subscriptionId"`
	CustomerID      string `json:"customerId"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	EphemeralKey    string `json:"ephemeralKey"`
}

// Client calls the payment function over HTTPS.
type Client struct {
	url        string
	key        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client. A zero timeout falls back to 15 seconds.
func NewClient(url, key string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        strings.TrimSpace(url),
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Configured reports whether the client has somewhere to send requests.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// CreateSubscription asks the payment function for a new subscription and the
// secrets needed to confirm it client side.
func (c *Client) CreateSubscription(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call payment function: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read payment function response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &UpstreamError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			upstream.Message = payload.Error
		}
		c.logger.Warn("payment function rejected checkout",
			zap.Int("status", resp.StatusCode),
			zap.String("coach_id", req.CoachID),
			zap.String("plan", req.Plan))
		return nil, upstream
	}

	var session CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode payment function response: %w", err)
	}
	if session.ClientSecret == "" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "missing client secret"}
	}
	return &session, nil
}
