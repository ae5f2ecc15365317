// Package transport provides the HTTP client shared by the feed fetchers
// and the enrichment stage. Retry and backoff policy lives here, at the
// system boundary; the reconciliation core never performs I/O.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/changeline/changeline/pkg/errors"
)

// Defaults for boundary HTTP behavior.
const (
	DefaultTimeout   = 20 * time.Second
	DefaultRetries   = 3
	DefaultBackoff   = 1500 * time.Millisecond
	DefaultUserAgent = "changeline/1.0 (+https://github.com/changeline/changeline)"
)

// maxBodyBytes caps response reads against runaway payloads.
const maxBodyBytes = 16 << 20

// Client is an HTTP client with authentication, retry, and backoff applied.
type Client struct {
	http      *http.Client
	auth      Authenticator
	retries   int
	backoff   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// New creates a transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		auth:      NoAuth{},
		retries:   DefaultRetries,
		backoff:   DefaultBackoff,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAuthenticator sets the authenticator applied to every request.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) {
		if auth != nil {
			c.auth = auth
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithRetries sets the retry count and backoff base. Backoff grows
// linearly with the attempt number.
func WithRetries(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Get performs a GET and returns the response body. Non-2xx responses and
// transport failures are retried up to the configured count; the last
// failure is returned as a SourceError.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	var lastErr error
	lastStatus := 0

	attempts := c.retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.ErrCanceled
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		body, status, err := c.get(ctx, url, accept)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		if err != nil {
			lastErr = err
		}
		lastStatus = status

		// Client errors other than throttling will not improve on retry.
		if status >= 400 && status < 500 && status != 429 {
			break
		}
	}

	if lastErr != nil {
		return nil, errors.WrapSource("http", lastStatus, lastErr)
	}
	return nil, errors.NewSourceError("http", lastStatus, "GET "+url+" failed")
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// Fetch implements the enrichment fetcher contract: GET a page and return
// its body as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}
