package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key learnscout writes to a shared store.
const KeyPrefix = "learnscout:"

var (
	// ErrInvalidQuery signals a missing or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidPlatform signals a platform filter outside the supported set.
	ErrInvalidPlatform = errors.New("invalid platform")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTag signals an empty or oversized tag.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrInvalidURL signals a preview URL that cannot be fetched.
	ErrInvalidURL = errors.New("invalid url")

	// ErrSourceUnavailable signals a failing content platform.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrRewriterUnavailable signals a failing language model provider.
	ErrRewriterUnavailable = errors.New("rewriter unavailable")
	// ErrMalformedResponse signals an upstream answer that could not be parsed.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrRateLimited signals a rate limit hit, local or upstream.
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded signals an exhausted language model token budget.
	ErrQuotaExceeded = errors.New("token quota exceeded")
)

// UpstreamError carries the HTTP status returned by an external platform.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Unwrap maps throttling statuses to ErrRateLimited and everything else to ErrSourceUnavailable.
func (e *UpstreamError) Unwrap() error {
	if e.StatusCode == 429 {
		return ErrRateLimited
	}
	return ErrSourceUnavailable
}
