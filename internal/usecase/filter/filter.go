package filter

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

// Filter decides which scored items a source contributes to the result set.
type Filter struct {
	policies     map[platform.Platform]Policy
	checkers     map[platform.Platform]SemanticChecker
	concurrency  int
	checkTimeout time.Duration
	logger       *zap.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithChecker attaches a semantic checker for one platform.
func WithChecker(p platform.Platform, c SemanticChecker) Option {
	return func(f *Filter) {
		if c != nil {
			f.checkers[p] = c
		}
	}
}

// WithConcurrency bounds concurrent semantic checks within one source.
func WithConcurrency(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithCheckTimeout bounds a single semantic check.
func WithCheckTimeout(d time.Duration) Option {
	return func(f *Filter) {
		if d > 0 {
			f.checkTimeout = d
		}
	}
}

// New creates a filter. Platforms missing from policies use DefaultPolicy.
func New(policies map[platform.Platform]Policy, logger *zap.Logger, opts ...Option) *Filter {
	f := &Filter{
		policies:     make(map[platform.Platform]Policy, len(policies)),
		checkers:     make(map[platform.Platform]SemanticChecker),
		concurrency:  DefaultConcurrency,
		checkTimeout: DefaultTimeout,
		logger:       logger,
	}
	for p, pol := range policies {
		f.policies[p] = pol
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Policy returns the effective policy of a platform.
func (f *Filter) Policy(p platform.Platform) Policy {
	if pol, ok := f.policies[p]; ok {
		return pol
	}
	return DefaultPolicy()
}

// Accept decides a single item.
//
// The semantic checker, when configured, runs first: if it fails the item is accepted
// whatever its score. Otherwise the item must clear the popularity floor (unless still
// inside the grace window), reach the minimum score and pass the semantic verdict.
func (f *Filter) Accept(ctx context.Context, s item.Scored, rc RequestContext) bool {
	pol := f.Policy(s.Platform())

	semantic := true
	if c, ok := f.checkers[s.Platform()]; ok {
		cctx, cancel := context.WithTimeout(ctx, f.checkTimeout)
		verdict, err := c.Check(cctx, s, rc)
		cancel()
		if err != nil {
			metrics.FilterFailOpenTotal.WithLabelValues(s.Platform().String()).Inc()
			f.logger.Warn("Semantic check failed, accepting item",
				zap.String("platform", s.Platform().String()),
				zap.String("url", s.URL()),
				zap.Error(err),
			)
			return true
		}
		semantic = verdict
	}

	if pol.MinPopularity > 0 && s.Popularity() < pol.MinPopularity && !inGrace(&s, pol, rc.Now) {
		return false
	}
	if s.Relevance() < pol.MinScore {
		return false
	}
	return semantic
}

// Apply walks items in order and returns the accepted ones, at most the platform cap each.
// Checks run concurrently in windows of the configured concurrency; evaluation stops once
// every platform in the input is capped.
func (f *Filter) Apply(ctx context.Context, items []item.Scored, rc RequestContext) []item.Scored {
	if len(items) == 0 {
		return nil
	}

	remaining := make(map[platform.Platform]int)
	for i := range items {
		p := items[i].Platform()
		if _, ok := remaining[p]; !ok {
			remaining[p] = f.Policy(p).capOrDefault()
		}
	}
	open := len(remaining)

	out := make([]item.Scored, 0, min(len(items), DefaultCap))
	for start := 0; start < len(items) && open > 0; start += f.concurrency {
		if ctx.Err() != nil {
			break
		}
		end := min(start+f.concurrency, len(items))
		window := items[start:end]
		verdicts := f.evaluate(ctx, window, remaining, rc)

		for i, ok := range verdicts {
			p := window[i].Platform()
			if !ok || remaining[p] == 0 {
				continue
			}
			out = append(out, window[i])
			remaining[p]--
			if remaining[p] == 0 {
				open--
			}
		}
	}
	return out
}

// evaluate runs Accept concurrently over a window. Items of already capped platforms are skipped.
func (f *Filter) evaluate(
	ctx context.Context, window []item.Scored, remaining map[platform.Platform]int, rc RequestContext,
) []bool {
	verdicts := make([]bool, len(window))
	var g errgroup.Group
	for i := range window {
		if remaining[window[i].Platform()] == 0 {
			continue
		}
		g.Go(func() error {
			verdicts[i] = f.Accept(ctx, window[i], rc)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

func inGrace(s *item.Scored, pol Policy, now time.Time) bool {
	if pol.Grace <= 0 {
		return false
	}
	if now.IsZero() {
		now = time.Now()
	}
	age, ok := s.Age(now)
	return ok && age < pol.Grace
}
