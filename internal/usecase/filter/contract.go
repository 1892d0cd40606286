package filter

import (
	"context"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
)

// SemanticChecker is the secondary relevance check for one platform.
// An error means the check could not be made; the filter then accepts the item.
type SemanticChecker interface {
	Check(ctx context.Context, s item.Scored, rc RequestContext) (bool, error)
}

// RequestContext is the per-request input every filter decision sees.
type RequestContext struct {
	Query string
	Now   time.Time
}
