package chi

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain"
	domusage "github.com/kailas-cloud/learnscout/internal/domain/usage"
	healthuc "github.com/kailas-cloud/learnscout/internal/usecase/health"
	searchuc "github.com/kailas-cloud/learnscout/internal/usecase/search"
	tagsuc "github.com/kailas-cloud/learnscout/internal/usecase/tags"
)

// Searcher runs the search pipeline.
type Searcher interface {
	Search(ctx context.Context, text, platformFilter string) (searchuc.Result, error)
}

// TagManager reads and edits resource tags.
type TagManager interface {
	Get(ctx context.Context, resourceID string) (tagsuc.Tags, error)
	Add(ctx context.Context, resourceID, tag string) (tagsuc.Tags, error)
	Remove(ctx context.Context, resourceID, tag string) (tagsuc.Tags, error)
}

// Previewer builds link preview cards.
type Previewer interface {
	Preview(ctx context.Context, rawURL string) (domain.Preview, error)
}

// UsageReporter reports language model token consumption.
type UsageReporter interface {
	GetReports(ctx context.Context, period domusage.Period) []domusage.Report
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
