package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/learnscout/internal/version"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// Client talks to a learnscout server.
type Client struct {
	base string
	http *http.Client
	ua   string
	obs  *observer
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout, userAgent: "scoutctl/" + version.Version}
	for _, o := range opts {
		o.apply(cfg)
	}

	base := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("learnscout: invalid base url %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, http: hc, ua: cfg.userAgent, obs: obs}, nil
}

// Search runs a query. platform is one of the Platform constants; empty means all.
func (c *Client) Search(ctx context.Context, query, platform string) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	q := url.Values{"query": {query}}
	if platform != "" {
		q.Set("platform", platform)
	}
	hdr, err := c.do(ctx, http.MethodGet, "/api/search", q, nil, &res.Items)
	if err != nil {
		return SearchResult{}, err
	}
	res.RewriterTokens, _ = strconv.Atoi(hdr.Get("X-Rewriter-Tokens"))
	if failed := hdr.Get("X-Failed-Sources"); failed != "" {
		res.FailedSources = strings.Split(failed, ",")
	}
	return res, nil
}

// Tags returns the tags of a resource.
func (c *Client) Tags(ctx context.Context, resourceID string) (t Tags, err error) {
	start := time.Now()
	defer func() { c.obs.observe("tags.get", start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/api/tags/"+url.PathEscape(resourceID), nil, nil, &t)
	return t, err
}

// AddTag attaches a tag to a resource.
func (c *Client) AddTag(ctx context.Context, resourceID, tag string) (t Tags, err error) {
	start := time.Now()
	defer func() { c.obs.observe("tags.add", start, err) }()

	body := map[string]string{"tag": tag}
	_, err = c.do(ctx, http.MethodPost, "/api/tags/"+url.PathEscape(resourceID), nil, body, &t)
	return t, err
}

// RemoveTag detaches a tag from a resource.
func (c *Client) RemoveTag(ctx context.Context, resourceID, tag string) (t Tags, err error) {
	start := time.Now()
	defer func() { c.obs.observe("tags.remove", start, err) }()

	path := "/api/tags/" + url.PathEscape(resourceID) + "/" + url.PathEscape(tag)
	_, err = c.do(ctx, http.MethodDelete, path, nil, nil, &t)
	return t, err
}

// Preview fetches the summary card of a page.
func (c *Client) Preview(ctx context.Context, pageURL string) (p Preview, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err) }()

	_, err = c.do(ctx, http.MethodPost, "/api/preview", nil, map[string]string{"url": pageURL}, &p)
	return p, err
}

// Usage returns token usage for "day" or "month".
func (c *Client) Usage(ctx context.Context, period string) (u Usage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	_, err = c.do(ctx, http.MethodGet, "/api/usage", q, nil, &u)
	return u, err
}

// Health checks the server. A degraded server answers 503 with a report;
// the report is returned without an error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/health", nil, nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && h.Status != "" {
		return h, nil
	}
	return h, err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) (http.Header, error) {
	target := c.base + path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("learnscout: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("learnscout: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("learnscout: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		if resp.StatusCode == http.StatusServiceUnavailable && out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("learnscout: decode %s: %w", path, err)
		}
	}
	return resp.Header, nil
}

func errorMessage(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}
