package preview

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/textutil"
)

const (
	// DefaultTimeout bounds a preview fetch.
	DefaultTimeout = 5 * time.Second
	// MaxURLLength rejects oversized URLs before any network call.
	MaxURLLength = 2048
	// DescriptionLength is the preview description length in runes.
	DescriptionLength = 300
)

// Service validates preview requests and delegates the fetch.
type Service struct {
	fetcher      PageFetcher
	timeout      time.Duration
	allowPrivate bool
}

// Option configures the Service.
type Option func(*Service)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPrivateHosts allows loopback and private network targets. Tests and local setups only.
func WithPrivateHosts() Option {
	return func(s *Service) { s.allowPrivate = true }
}

// New creates a preview service.
func New(fetcher PageFetcher, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview fetches the summary card of an http(s) page.
func (s *Service) Preview(ctx context.Context, rawURL string) (domain.Preview, error) {
	u, err := s.validate(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.Preview{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return domain.Preview{}, fmt.Errorf("preview %s: %w", u.Host, err)
	}
	if p.Title == "" {
		p.Title = u.Host
	}
	p.Description = textutil.Truncate(p.Description, DescriptionLength)
	return p, nil
}

func (s *Service) validate(rawURL string) (*url.URL, error) {
	if rawURL == "" || len(rawURL) > MaxURLLength {
		return nil, fmt.Errorf("url length: %w", domain.ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", domain.ErrInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %q: %w", u.Scheme, domain.ErrInvalidURL)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("missing host: %w", domain.ErrInvalidURL)
	}
	if !s.allowPrivate && isPrivateHost(host) {
		return nil, fmt.Errorf("private host %q: %w", host, domain.ErrInvalidURL)
	}
	return u, nil
}

// isPrivateHost rejects literal loopback, private and link-local targets.
// Hostnames resolving to private addresses are not caught here.
func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
