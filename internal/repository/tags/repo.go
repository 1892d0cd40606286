package tags

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/learnscout/internal/db"
	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/tag"
)

// The {tags} hash tag keeps every tag key in one cluster slot, as the counted set
// operations touch a resource set and the count hash together.
var (
	setKeyPrefix = domain.KeyPrefix + "{tags}:res:"
	countsKey    = domain.KeyPrefix + "{tags}:counts"
)

// store is the consumer interface for tag persistence (ISP).
type store interface {
	db.SetStore
	db.HashStore
}

// Repo stores a tag set per resource and a global usage count per tag.
type Repo struct {
	store store
}

// New creates a tag repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Add attaches a tag to a resource. Adding an existing tag is a no-op.
func (r *Repo) Add(ctx context.Context, resourceID, t string) error {
	if _, err := r.store.SAddCounted(ctx, setKeyPrefix+resourceID, countsKey, t); err != nil {
		return fmt.Errorf("add tag: %w", err)
	}
	return nil
}

// Remove detaches a tag from a resource. Removing a missing tag is a no-op.
func (r *Repo) Remove(ctx context.Context, resourceID, t string) error {
	if _, err := r.store.SRemCounted(ctx, setKeyPrefix+resourceID, countsKey, t); err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

// List returns a resource's tags sorted alphabetically.
func (r *Repo) List(ctx context.Context, resourceID string) ([]string, error) {
	members, err := r.store.SMembers(ctx, setKeyPrefix+resourceID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// Counts returns every tag with its usage count, unordered.
func (r *Repo) Counts(ctx context.Context) ([]tag.Count, error) {
	raw, err := r.store.HGetAll(ctx, countsKey)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
	}
	out := make([]tag.Count, 0, len(raw))
	for t, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tag count %s: %w", t, err)
		}
		out = append(out, tag.Count{Tag: t, Count: n})
	}
	return out, nil
}
