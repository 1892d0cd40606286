package rank

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// Reranker orders candidates by relevance to the query and returns their indices.
type Reranker interface {
	Rank(ctx context.Context, query string, candidates []domain.RankCandidate, topN int) (domain.Ranking, error)
}
