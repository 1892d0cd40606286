package tags

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain/tag"
)

// Repository stores tag sets per resource and global tag counts.
type Repository interface {
	Add(ctx context.Context, resourceID, t string) error
	Remove(ctx context.Context, resourceID, t string) error
	List(ctx context.Context, resourceID string) ([]string, error)
	Counts(ctx context.Context) ([]tag.Count, error)
}
