// Package transport provides a thin HTTP client shared by the external
// data sources. Calls fail fast: there is no retry or backoff layer, and
// a stalled endpoint surfaces to the caller as an error rather than a
// hang (bounded by the client timeout and the request context).
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

// DefaultTimeout bounds every request issued by a client.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps response bodies read into memory.
const maxResponseBytes = 16 << 20

// Client wraps http.Client with API-key authentication and JSON decoding.
type Client struct {
	http     *http.Client
	apiKey   string
	keyParam string
	service  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithAPIKey sets a bearer token applied to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithQueryKey sends the API key as the named query parameter instead of
// an Authorization header, for services keyed that way.
func WithQueryKey(param, key string) Option {
	return func(c *Client) {
		c.apiKey = key
		c.keyParam = param
	}
}

// WithHTTPClient substitutes the underlying http.Client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a transport client for the named service. The service name
// appears in errors so callers can tell collaborators apart.
func New(service string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		service: service,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBytes performs a GET request and returns the response body.
// Non-2xx statuses become APIErrors carrying the status code.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		if c.keyParam != "" {
			q := req.URL.Query()
			q.Set(c.keyParam, c.apiKey)
			req.URL.RawQuery = q.Encode()
		} else {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: url,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.APIError{
			Service:    c.service,
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: url,
			Message:  "reading response body",
			Err:      err,
		}
	}
	return body, nil
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}
