package rewriter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// NewLimiter returns a token bucket limiter, or nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// guard holds the budget, limiter and logging shared by the decorators.
// Transport metrics (requests, duration, tokens) are recorded in the transport packages.
type guard struct {
	provider string
	model    string
	budget   BudgetChecker
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func (g *guard) before(ctx context.Context, op string) error {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Warn("Rewriter budget exceeded",
				zap.String("provider", g.provider),
				zap.String("operation", op),
				zap.Error(err),
			)
			return fmt.Errorf("budget check: %w", err)
		}
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrRateLimited, err)
		}
	}
	return nil
}

func (g *guard) after(op string, start time.Time, tokens int, err error) {
	duration := time.Since(start)
	if err != nil {
		g.logger.Warn("Rewriter request failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.String("operation", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if g.budget != nil && tokens > 0 {
		g.budget.Record(int64(tokens))
		remaining := metrics.RewriterBudgetTokensRemaining
		remaining.WithLabelValues(g.provider, "daily").Set(float64(g.budget.RemainingDaily()))
		remaining.WithLabelValues(g.provider, "monthly").Set(float64(g.budget.RemainingMonthly()))
	}

	g.logger.Debug("Rewriter request completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.String("operation", op),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", tokens),
	)
}

// Instrumented wraps a Rewriter with budget enforcement, rate limiting and logging.
type Instrumented struct {
	inner domain.Rewriter
	g     guard
}

// NewInstrumented wraps a rewriter. budget and limiter may be nil.
func NewInstrumented(
	inner domain.Rewriter, provider, model string,
	budget BudgetChecker, limiter *rate.Limiter, logger *zap.Logger,
) *Instrumented {
	return &Instrumented{
		inner: inner,
		g:     guard{provider: provider, model: model, budget: budget, limiter: limiter, logger: logger},
	}
}

// Expand checks budget and rate, delegates, and records usage.
func (p *Instrumented) Expand(ctx context.Context, query string) (domain.Expansion, error) {
	if err := p.g.before(ctx, "expand"); err != nil {
		return domain.Expansion{}, err
	}
	start := time.Now()
	res, err := p.inner.Expand(ctx, query)
	p.g.after("expand", start, res.TotalTokens, err)
	if err != nil {
		return domain.Expansion{}, fmt.Errorf("expand: %w", err)
	}
	return res, nil
}

// Rank checks budget and rate, delegates, and records usage.
func (p *Instrumented) Rank(
	ctx context.Context, query string, candidates []domain.RankCandidate, topN int,
) (domain.Ranking, error) {
	if err := p.g.before(ctx, "rank"); err != nil {
		return domain.Ranking{}, err
	}
	start := time.Now()
	res, err := p.inner.Rank(ctx, query, candidates, topN)
	p.g.after("rank", start, res.TotalTokens, err)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("rank: %w", err)
	}
	return res, nil
}

// InstrumentedScorer wraps a SemanticScorer the same way.
type InstrumentedScorer struct {
	inner domain.SemanticScorer
	g     guard
}

// NewInstrumentedScorer wraps a relevance scorer. budget and limiter may be nil.
func NewInstrumentedScorer(
	inner domain.SemanticScorer, provider, model string,
	budget BudgetChecker, limiter *rate.Limiter, logger *zap.Logger,
) *InstrumentedScorer {
	return &InstrumentedScorer{
		inner: inner,
		g:     guard{provider: provider, model: model, budget: budget, limiter: limiter, logger: logger},
	}
}

// Relevance checks budget and rate, delegates, and records usage.
func (p *InstrumentedScorer) Relevance(ctx context.Context, query, text string) (domain.RelevanceScore, error) {
	if err := p.g.before(ctx, "relevance"); err != nil {
		return domain.RelevanceScore{}, err
	}
	start := time.Now()
	res, err := p.inner.Relevance(ctx, query, text)
	p.g.after("relevance", start, res.TotalTokens, err)
	if err != nil {
		return domain.RelevanceScore{}, fmt.Errorf("relevance: %w", err)
	}
	return res, nil
}
