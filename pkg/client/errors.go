package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("service unavailable")
	ErrServer         = errors.New("server error")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("learnscout: status %d", e.StatusCode)
	}
	return fmt.Sprintf("learnscout: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code to a sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusServiceUnavailable, e.StatusCode == http.StatusBadGateway:
		return ErrUnavailable
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrInvalidRequest
	default:
		return ErrServer
	}
}
