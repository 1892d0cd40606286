package tags

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/learnscout/internal/domain/tag"
)

// DefaultPopularLimit caps the popular tag list.
const DefaultPopularLimit = 20

// Tags is a resource's tag set together with the globally popular tags.
type Tags struct {
	Tags    []string
	Popular []string
}

// Service manages user tags on search results.
type Service struct {
	repo         Repository
	popularLimit int
}

// New creates a tag service.
func New(repo Repository) *Service {
	return &Service{repo: repo, popularLimit: DefaultPopularLimit}
}

// Get returns the tags of a resource.
func (s *Service) Get(ctx context.Context, resourceID string) (Tags, error) {
	if err := tag.ValidateResourceID(resourceID); err != nil {
		return Tags{}, fmt.Errorf("resource id: %w", err)
	}
	return s.snapshot(ctx, resourceID)
}

// Add normalizes and attaches a tag, returning the updated set.
func (s *Service) Add(ctx context.Context, resourceID, raw string) (Tags, error) {
	t, err := s.validate(resourceID, raw)
	if err != nil {
		return Tags{}, err
	}
	if err := s.repo.Add(ctx, resourceID, t); err != nil {
		return Tags{}, fmt.Errorf("add tag: %w", err)
	}
	return s.snapshot(ctx, resourceID)
}

// Remove normalizes and detaches a tag, returning the updated set.
func (s *Service) Remove(ctx context.Context, resourceID, raw string) (Tags, error) {
	t, err := s.validate(resourceID, raw)
	if err != nil {
		return Tags{}, err
	}
	if err := s.repo.Remove(ctx, resourceID, t); err != nil {
		return Tags{}, fmt.Errorf("remove tag: %w", err)
	}
	return s.snapshot(ctx, resourceID)
}

// Popular returns tags used on more than one resource, most used first.
func (s *Service) Popular(ctx context.Context) ([]string, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})

	out := make([]string, 0, min(len(counts), s.popularLimit))
	for _, c := range counts {
		if c.Count <= 1 || len(out) == s.popularLimit {
			break
		}
		out = append(out, c.Tag)
	}
	return out, nil
}

func (s *Service) validate(resourceID, raw string) (string, error) {
	if err := tag.ValidateResourceID(resourceID); err != nil {
		return "", fmt.Errorf("resource id: %w", err)
	}
	t, err := tag.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("tag %q: %w", raw, err)
	}
	return t, nil
}

func (s *Service) snapshot(ctx context.Context, resourceID string) (Tags, error) {
	list, err := s.repo.List(ctx, resourceID)
	if err != nil {
		return Tags{}, fmt.Errorf("get tags: %w", err)
	}
	popular, err := s.Popular(ctx)
	if err != nil {
		return Tags{}, err
	}
	if list == nil {
		list = []string{}
	}
	return Tags{Tags: list, Popular: popular}, nil
}
