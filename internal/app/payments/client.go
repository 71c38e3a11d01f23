// internal/app/payments/client.go

// Package payments is a thin client to the external payment authority. It
// holds no local state: authorize creates a held charge, capture collects it,
// cancel releases it, query reads its status. Authority error codes are
// translated into the three categories in errors.go.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pedramghafoori/mentorconnect/internal/app/system/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Status of an authorization at the payment authority.
type Status string

const (
	StatusHeld     Status = "held"
	StatusCaptured Status = "captured"
	StatusCanceled Status = "canceled"
)

// Config holds payment authority connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each individual request. Zero means 10s.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls client-side. Zero means
	// no throttle.
	RequestsPerSecond float64
}

// Client talks to the payment authority over HTTPS+JSON. All operations are
// synchronous. Mutating calls carry an Idempotency-Key header so a retry of
// the same logical attempt cannot double-charge; the authority dedupes by
// key, the client only guarantees a fresh key per logical attempt.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		log:     logger,
	}
}

type authorizeRequest struct {
	AmountMinor int64             `json:"amount_minor"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type authorizationResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authorize places a hold for the given amount (minor currency units) and
// returns the authority's authorization id. Metadata is attached for
// auditability and is how an authorization is traced back to its assignment.
func (c *Client) Authorize(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (string, error) {
	body := authorizeRequest{
		AmountMinor: amountMinorUnits,
		Currency:    currency,
		Metadata:    metadata,
	}
	var resp authorizationResponse
	if err := c.do(ctx, "authorize", http.MethodPost, "/v1/authorizations", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Capture converts a held authorization into an actual charge.
func (c *Client) Capture(ctx context.Context, authorizationID string) error {
	path := fmt.Sprintf("/v1/authorizations/%s/capture", authorizationID)
	return c.do(ctx, "capture", http.MethodPost, path, nil, nil)
}

// Cancel releases a held authorization without collecting it.
func (c *Client) Cancel(ctx context.Context, authorizationID string) error {
	path := fmt.Sprintf("/v1/authorizations/%s/cancel", authorizationID)
	return c.do(ctx, "cancel", http.MethodPost, path, nil, nil)
}

// Query returns the authorization's current status at the authority.
func (c *Client) Query(ctx context.Context, authorizationID string) (Status, error) {
	path := fmt.Sprintf("/v1/authorizations/%s", authorizationID)
	var resp authorizationResponse
	if err := c.do(ctx, "query", http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(op, &Error{Category: Retryable, Op: op, Message: "rate limiter wait canceled", Err: err})
		}
	}

	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return c.fail(op, &Error{Category: Fatal, Op: op, Message: "encode request", Err: err})
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.fail(op, &Error{Category: Fatal, Op: op, Message: "build request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method != http.MethodGet {
		// One key per logical attempt: a client-side retry of this exact
		// call would need the same key, which is why the engine surfaces
		// retryable errors instead of retrying internally.
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure: network, DNS, timeout. The request may or may
		// not have reached the authority, which is exactly what Retryable
		// plus idempotency-by-id is for.
		return c.fail(op, &Error{Category: Retryable, Op: op, Message: "request failed", Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return c.fail(op, &Error{Category: Retryable, Op: op, Status: resp.StatusCode, Message: "decode response", Err: err})
			}
		}
		metrics.PaymentRequests.WithLabelValues(op, "ok").Inc()
		return nil
	}

	var er errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&er)

	e := &Error{
		Category: categorize(resp.StatusCode),
		Op:       op,
		Status:   resp.StatusCode,
		Code:     er.Error.Code,
		Message:  er.Error.Message,
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return c.fail(op, e)
}

func (c *Client) fail(op string, e *Error) error {
	metrics.PaymentRequests.WithLabelValues(op, string(e.Category)).Inc()
	c.log.Warn("payment authority call failed",
		zap.String("op", op),
		zap.String("category", string(e.Category)),
		zap.Int("status", e.Status),
		zap.String("code", e.Code),
		zap.String("message", e.Message))
	return e
}

func categorize(status int) Category {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return Retryable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Fatal
	default:
		return Rejected
	}
}
