package health

import "context"

// StorePinger checks tag and budget store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// RewriterChecker checks language model provider availability.
type RewriterChecker interface {
	HealthCheck(ctx context.Context) error
}
