package search

import (
	"context"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
	"github.com/kailas-cloud/learnscout/internal/usecase/aggregate"
	"github.com/kailas-cloud/learnscout/internal/usecase/filter"
)

// Planner chooses sources and keywords for a query.
type Planner interface {
	Plan(ctx context.Context, q query.Query) query.Plan
}

// Aggregator runs the per-source pipeline concurrently.
type Aggregator interface {
	Process(ctx context.Context, plan query.Plan, stage aggregate.Stage) []aggregate.Outcome[item.Scored]
}

// Filter keeps the relevant items of one source.
type Filter interface {
	Apply(ctx context.Context, items []item.Scored, rc filter.RequestContext) []item.Scored
}

// Ranker orders the merged result set.
type Ranker interface {
	Rank(ctx context.Context, query string, merged []item.Scored) []item.Scored
}
