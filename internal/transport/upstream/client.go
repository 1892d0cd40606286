// Package upstream is the shared HTTP plumbing of the plain-JSON source adapters.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/version"
)

const (
	// DefaultTimeout bounds a single upstream request when the caller's context has no deadline.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBody caps the response size read from a platform.
	DefaultMaxBody = 4 << 20

	errorBodyLen = 256
)

// Client performs GET requests against a content platform.
type Client struct {
	service   string
	http      *http.Client
	userAgent string
	maxBody   int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the default learnscout User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBody overrides the response size limit.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:   service,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: version.UserAgent(),
		maxBody:   DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL and returns the body of a 2xx response.
// Non-2xx statuses come back as *domain.UpstreamError.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.service, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.service, ctxErr)
		}
		return nil, fmt.Errorf("%s: %w: %w", c.service, domain.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w: %w", c.service, domain.ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Body:       textutil.Head(string(body), errorBodyLen),
		}
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w: %w", c.service, domain.ErrMalformedResponse, err)
	}
	return nil
}

// IsUpstreamStatus reports whether err carries the given upstream HTTP status.
func IsUpstreamStatus(err error, status int) bool {
	var ue *domain.UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == status
}
