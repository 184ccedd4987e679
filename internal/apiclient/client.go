// Package apiclient provides a Go client for the gateway's own HTTP surface.
// The in-browser form talks to the same endpoints; this client backs the
// search registry and the submission orchestrator when they run outside a
// browser (CLI tooling, tests, embedded kiosks).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/expense-gateway/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Client talks to one running gateway instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEntities fetches the full selectable set for one kind.
func (c *Client) ListEntities(ctx context.Context, kind domain.EntityKind) ([]domain.SelectableEntity, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	var resp domain.EntityListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/"+string(kind), nil, &resp); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// SubmitExpense sends one JSON submission and returns the created record.
func (c *Client) SubmitExpense(ctx context.Context, req *domain.SubmitExpenseRequest) (*domain.SubmitExpenseResponse, error) {
	var resp domain.SubmitExpenseResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/submit-expense", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReceiptUpload is one attachment for a multipart submission.
type ReceiptUpload struct {
	Field    string
	Filename string
	Data     io.Reader
}

// SubmitExpenseMultipart sends one submission with receipt attachments.
func (c *Client) SubmitExpenseMultipart(ctx context.Context, req *domain.SubmitExpenseRequest, receipts []ReceiptUpload) (*domain.SubmitExpenseResponse, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	if err := w.WriteField("data", string(data)); err != nil {
		return nil, fmt.Errorf("failed to write data field: %w", err)
	}

	for _, rc := range receipts {
		part, err := w.CreateFormFile(rc.Field, rc.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", rc.Field, err)
		}
		if _, err := io.Copy(part, rc.Data); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", rc.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit-expense", buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var resp domain.SubmitExpenseResponse
	if err := c.send(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateAssociation associates one selected entity of the given kind with an
// expense record.
func (c *Client) CreateAssociation(ctx context.Context, kind domain.EntityKind, expenseID, entityID string) (*domain.CreateAssociationResponse, error) {
	path, err := associationPath(kind)
	if err != nil {
		return nil, err
	}

	req := domain.CreateAssociationRequest{ExpenseID: expenseID, EntityID: entityID}

	var resp domain.CreateAssociationResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func associationPath(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.KindContact:
		return "/api/create-association", nil
	case domain.KindCompany:
		return "/api/create-company-association", nil
	case domain.KindGame:
		return "/api/create-game-association", nil
	}
	return "", fmt.Errorf("unknown entity kind %q", kind)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var proxyErr domain.ProxyError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(data, &proxyErr); err == nil && proxyErr.Error != "" {
			return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, proxyErr.Error)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
