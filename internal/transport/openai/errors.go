package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response.
// Every error wraps domain.ErrRewriterUnavailable; throttling and exhausted quota add their own sentinel.
func parseAPIError(err error) error {
	wrap := domain.ErrRewriterUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("rewriter API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, classify(reqErr.HTTPStatusCode, "", wrap))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		return fmt.Errorf("rewriter API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, classify(apiErr.HTTPStatusCode, code, wrap))
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("rewriter request: %w: %w", wrap, err)
	}

	return fmt.Errorf("rewriter request failed: %w", wrap)
}

func classify(status int, code string, wrap error) error {
	switch {
	case code == "insufficient_quota":
		return fmt.Errorf("%w: %w", wrap, domain.ErrQuotaExceeded)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", wrap, domain.ErrRateLimited)
	default:
		return wrap
	}
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
