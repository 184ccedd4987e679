// Package crm provides the outbound HTTP client for the external CRM that
// owns all persistent state: expense objects, selectable collections,
// association vocabularies and the receipt file store.
//
// Every call is bounded by a per-call timeout and classifies failures into
// three kinds: missing credential, upstream timeout, and upstream rejection.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/straye-as/expense-gateway/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrMissingCredential is returned when the bearer token is not
	// configured. This is a request-time configuration error by design.
	ErrMissingCredential = errors.New("crm access token not configured")

	// ErrUpstreamTimeout is returned when a CRM call exceeds its bounded
	// per-call timeout. Distinct from an upstream rejection.
	ErrUpstreamTimeout = errors.New("crm request timed out")
)

// UpstreamError is a non-2xx response from the CRM.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("crm returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("crm returned status %d", e.StatusCode)
}

// Client is a stateless HTTP client for the external CRM. It is safe for
// concurrent use; the only shared state is the static configuration.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates a CRM client from configuration. A missing token does not
// fail construction; each call reports ErrMissingCredential instead.
func NewClient(cfg *config.CRMConfig, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeoutDuration()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.AccessToken,
		timeout:    timeout,
		logger:     logger,
	}
}

// doJSON issues one authenticated JSON request and decodes the response body
// into out (when out is non-nil). query may be nil.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// newRequest builds an authenticated request with the per-call timeout
// applied through the request context.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	if c.token == "" {
		return nil, ErrMissingCredential
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return req, nil
}

// send executes the request, classifies failures, and decodes a 2xx body
// into out when out is non-nil.
func (c *Client) send(req *http.Request, out interface{}) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("crm call timed out",
				zap.String("method", req.Method),
				zap.String("url", req.URL.Path),
				zap.Duration("elapsed", time.Since(start)),
			)
			return fmt.Errorf("%w: %s %s", ErrUpstreamTimeout, req.Method, req.URL.Path)
		}
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readUpstreamMessage(resp.Body)
		c.logger.Warn("crm rejected request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode crm response: %w", err)
	}

	c.logger.Debug("crm call completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readUpstreamMessage extracts the "message" field from a CRM error body,
// falling back to the raw body truncated for logging.
func readUpstreamMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}

	return string(data)
}
