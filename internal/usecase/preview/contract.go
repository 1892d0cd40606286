package preview

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// PageFetcher downloads and summarizes a page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (domain.Preview, error)
}
