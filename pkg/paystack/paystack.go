package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.paystack.co"

// ErrUnavailable indicates the gateway could not be reached or timed out.
// Callers must treat it as "unknown, retry-safe", never as a failed payment.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Config contains credentials required to talk to Paystack.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client wraps the Paystack transaction API.
type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
	logger    zerolog.Logger
}

// InitializeRequest describes a checkout initialization.
type InitializeRequest struct {
	AmountMinor int64             `json:"amount"`
	Email       string            `json:"email"`
	Reference   string            `json:"reference"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// InitializeResult carries the gateway-hosted checkout handle.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the gateway's authoritative view of a transaction.
type VerifyResult struct {
	Status      string
	AmountMinor int64
	PaidAt      *time.Time
	RawPayload  map[string]interface{}
}

// New constructs a Paystack client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key must be provided")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With().Str("component", "paystack").Logger(),
	}, nil
}

// Initialize creates a gateway transaction and returns the hosted checkout.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return InitializeResult{}, fmt.Errorf("failed to encode initialize request: %w", err)
	}

	var envelope struct {
		Status  bool             `json:"status"`
		Message string           `json:"message"`
		Data    InitializeResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &envelope); err != nil {
		return InitializeResult{}, err
	}

	if !envelope.Status {
		return InitializeResult{}, fmt.Errorf("%w: %s", ErrUnavailable, envelope.Message)
	}

	c.logger.Info().Str("reference", req.Reference).Msg("checkout initialized")

	return envelope.Data, nil
}

// Verify fetches the authoritative transaction state for a reference.
func (c *Client) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	var envelope struct {
		Status  bool                   `json:"status"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &envelope); err != nil {
		return VerifyResult{}, err
	}

	if !envelope.Status || envelope.Data == nil {
		return VerifyResult{}, fmt.Errorf("%w: %s", ErrUnavailable, envelope.Message)
	}

	result := VerifyResult{RawPayload: envelope.Data}
	if status, ok := envelope.Data["status"].(string); ok {
		result.Status = status
	}
	if amount, ok := envelope.Data["amount"].(float64); ok {
		result.AmountMinor = int64(amount)
	}
	if paidAt, ok := envelope.Data["paid_at"].(string); ok && paidAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, paidAt); parseErr == nil {
			result.PaidAt = &parsed
		}
	}

	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("gateway request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: gateway returned %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: unparseable gateway response: %v", ErrUnavailable, err)
	}

	return nil
}
