// Package api is the typed HTTP client for the brokerage backend.
// One method per backend operation, grouped by resource across files.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CredentialSource supplies the Basic-Auth pair for outgoing calls.
// ok is false when nobody is logged in; the header is then omitted.
type CredentialSource interface {
	Credentials() (username, password string, ok bool)
}

// Client calls the backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	log        zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every call. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client rooted at baseURL (e.g. http://localhost:8080/api).
// creds may be nil for unauthenticated use.
func NewClient(baseURL string, creds CredentialSource, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		log:        log.With().Str("component", "api-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetCredentialSource swaps the credential provider
func (c *Client) SetCredentialSource(creds CredentialSource) {
	c.creds = creds
}

// do performs one request. Failures are never retried.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.creds != nil {
		if username, password, ok := c.creds.Credentials(); ok {
			req.SetBasicAuth(username, password)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Msg("Request failed")
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}

	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode %s %s response: %w", method, path, err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, target)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, target any) error {
	return c.do(ctx, http.MethodPost, path, query, body, target)
}

func (c *Client) delete(ctx context.Context, path string, target any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, target)
}

// symbolPath upper-cases and escapes a symbol path segment
func symbolPath(symbol string) string {
	return url.PathEscape(strings.ToUpper(strings.TrimSpace(symbol)))
}
