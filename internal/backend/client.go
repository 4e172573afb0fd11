// Package backend is the HTTP client for the payments backend.
package backend

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

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/rs/zerolog/log"
)

// Backend endpoints
const (
	LoginPath       = "/login"
	UsersPath       = "/users"
	OutstandingPath = "/outstanding-bills"
	SubmitPath      = "/add-data"
)

// maxErrorBody caps how much of an error response is kept as detail
const maxErrorBody = 1024

// Ensure Client implements domain.Backend
var _ domain.Backend = (*Client)(nil)

// Client calls the payments backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a Client for baseURL. A zero timeout leaves calls bounded only by ctx.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// StatusError is a non-2xx response from the backend
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
}

// Unwrap lets errors.Is match domain.ErrBackendRejected
func (e *StatusError) Unwrap() error {
	return domain.ErrBackendRejected
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Authenticate exchanges credentials for a session token
func (c *Client) Authenticate(ctx context.Context, user, password string) (string, error) {
	var res loginResponse
	err := c.do(ctx, http.MethodPost, LoginPath, "", nil, loginRequest{User: user, Password: password}, &res)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Status == http.StatusUnauthorized || statusErr.Status == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
		}
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", domain.ErrBackendRejected)
	}
	return res.Token, nil
}

// ListUsers returns the user identifiers offered on the login screen
func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	var users []string
	if err := c.do(ctx, http.MethodGet, UsersPath, "", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FetchOutstanding returns the outstanding bills per party visible to token
func (c *Client) FetchOutstanding(ctx context.Context, token string) (domain.OutstandingBills, error) {
	bills := domain.OutstandingBills{}
	if err := c.do(ctx, http.MethodGet, OutstandingPath, token, nil, nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// SubmitAllocation posts a finalized allocation
func (c *Client) SubmitAllocation(ctx context.Context, token string, submission domain.Submission, idempotencyKey string) error {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.do(ctx, http.MethodPost, SubmitPath, token, headers, submission, nil)
}

// do sends one request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Backend request failed")
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrBackendRejected, err)
	}
	return nil
}
