package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 1 << 20
)

// Ensure Client implements the interface.
var _ driven.ComplianceService = (*Client)(nil)

// Client talks to the compliance search and export endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  driven.TokenProvider
	limiter *rate.Limiter
}

// NewClient creates a new compliance client. requestsPerSecond bounds
// the sustained request rate; poll loops run well below the service's
// throttling thresholds.
func NewClient(baseURL string, tokens driven.TokenProvider, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// NewClientWithHTTPClient creates a compliance client with a custom
// http.Client. Useful for tests and custom transports.
func NewClientWithHTTPClient(baseURL string, tokens driven.TokenProvider, requestsPerSecond float64, httpClient *http.Client) *Client {
	c := NewClient(baseURL, tokens, requestsPerSecond)
	c.http = httpClient
	return c
}

// do issues one authenticated JSON request. Non-2xx responses come back
// as *APIError; out is decoded from the body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
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
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorFrom converts an error response into an *APIError. The service
// wraps messages in an error envelope; plain-text bodies are kept as-is.
func (c *Client) errorFrom(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(raw))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		RequestID:  resp.Header.Get("request-id"),
	}
}
