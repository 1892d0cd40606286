package aggregate

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
)

// Source is a content platform adapter.
type Source interface {
	Search(ctx context.Context, keywords []string, query string) ([]item.Raw, error)
}
