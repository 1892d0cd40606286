package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
	"github.com/kailas-cloud/learnscout/internal/logger"
	"github.com/kailas-cloud/learnscout/internal/metrics"
	"github.com/kailas-cloud/learnscout/internal/usecase/aggregate"
	"github.com/kailas-cloud/learnscout/internal/usecase/filter"
	"github.com/kailas-cloud/learnscout/internal/usecase/scoring"
)

// Result is the outcome of one search request.
type Result struct {
	Items []item.Scored
	Plan  query.Plan
	// Failed lists sources that errored, panicked or timed out.
	Failed []platform.Platform
}

// Service runs plan, fan-out, score, filter, merge and rank for a query.
type Service struct {
	planner Planner
	agg     Aggregator
	filter  Filter
	ranker  Ranker
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a search service.
func New(planner Planner, agg Aggregator, f Filter, ranker Ranker, logger *zap.Logger) *Service {
	return &Service{planner: planner, agg: agg, filter: f, ranker: ranker, logger: logger, now: time.Now}
}

// Search validates the query and returns the ranked result set.
// Only an invalid query is an error; source and rewriter failures degrade the result.
func (s *Service) Search(ctx context.Context, text, platformFilter string) (Result, error) {
	q, err := query.New(text, platformFilter)
	if err != nil {
		return Result{}, err
	}

	plan := s.planner.Plan(ctx, q)
	rc := filter.RequestContext{Query: q.Text(), Now: s.now()}

	outcomes := s.agg.Process(ctx, plan, func(ctx context.Context, p platform.Platform, raws []item.Raw) []item.Scored {
		scored := scoring.ScoreAll(raws, plan.Keywords, q.Text())
		accepted := s.filter.Apply(ctx, scored, rc)
		metrics.SourceItemsTotal.WithLabelValues(p.String(), "accepted").Add(float64(len(accepted)))
		return accepted
	})

	res := Result{Plan: plan}
	for _, o := range outcomes {
		if o.Err != nil {
			res.Failed = append(res.Failed, o.Source)
		}
	}

	merged := Merge(outcomes)
	res.Items = s.ranker.Rank(ctx, q.Text(), merged)

	logger.FromContextOr(ctx, s.logger).Debug("Search completed",
		zap.String("query", q.Text()),
		zap.String("platform", q.Filter()),
		zap.Strings("keywords", plan.Keywords),
		zap.Bool("expanded", plan.Expanded),
		zap.Int("sources", len(plan.Sources)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("merged", len(merged)),
		zap.Int("returned", len(res.Items)),
	)
	return res, nil
}

// Merge concatenates source outcomes in plan order and drops repeated URLs,
// keeping the first occurrence.
func Merge(outcomes []aggregate.Outcome[item.Scored]) []item.Scored {
	n := 0
	for _, o := range outcomes {
		n += len(o.Items)
	}
	seen := make(map[string]struct{}, n)
	out := make([]item.Scored, 0, n)
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		for _, it := range o.Items {
			key := urlKey(it.URL())
			if key != "" {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			out = append(out, it)
		}
	}
	return out
}

func urlKey(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}
