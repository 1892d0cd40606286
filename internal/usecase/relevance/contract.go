package relevance

import "context"

// ReadmeFetcher returns the raw README of a repository.
type ReadmeFetcher interface {
	Readme(ctx context.Context, fullName string) (string, error)
}
