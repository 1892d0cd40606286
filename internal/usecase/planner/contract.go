package planner

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// Expander produces search keywords from a free-text query.
type Expander interface {
	Expand(ctx context.Context, query string) (domain.Expansion, error)
}
