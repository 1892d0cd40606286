package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/config"
	"github.com/kailas-cloud/learnscout/internal/db"
	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/metrics"
	budgetrepo "github.com/kailas-cloud/learnscout/internal/repository/budget"
	"github.com/kailas-cloud/learnscout/internal/repository/rewritecache"
	"github.com/kailas-cloud/learnscout/internal/transport/archive"
	"github.com/kailas-cloud/learnscout/internal/transport/freecodecamp"
	geminiScorer "github.com/kailas-cloud/learnscout/internal/transport/gemini"
	"github.com/kailas-cloud/learnscout/internal/transport/github"
	openaiRewriter "github.com/kailas-cloud/learnscout/internal/transport/openai"
	"github.com/kailas-cloud/learnscout/internal/transport/reddit"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
	"github.com/kailas-cloud/learnscout/internal/transport/youtube"
	"github.com/kailas-cloud/learnscout/internal/usecase/aggregate"
	"github.com/kailas-cloud/learnscout/internal/usecase/filter"
	healthuc "github.com/kailas-cloud/learnscout/internal/usecase/health"
	"github.com/kailas-cloud/learnscout/internal/usecase/planner"
	"github.com/kailas-cloud/learnscout/internal/usecase/rank"
	"github.com/kailas-cloud/learnscout/internal/usecase/relevance"
	rewriteruc "github.com/kailas-cloud/learnscout/internal/usecase/rewriter"
	usageuc "github.com/kailas-cloud/learnscout/internal/usecase/usage"
)

// models holds the language model collaborators. Every field is a nil interface when disabled.
type models struct {
	expander planner.Expander
	reranker rank.Reranker
	scorer   domain.SemanticScorer
	health   healthuc.RewriterChecker
	budgets  map[string]usageuc.BudgetReader
}

// buildModels assembles the decorator chains:
// rewriter: OpenAI -> Instrumented (budget, rate, metrics) -> Cached (expand only)
// relevance: OpenAI or Gemini -> InstrumentedScorer.
func buildModels(ctx context.Context, cfg *config.Config, store db.Store, logger *zap.Logger) (models, error) {
	m := models{budgets: make(map[string]usageuc.BudgetReader)}
	budgetStore := budgetrepo.New(store, 0, 0)
	trackers := make(map[string]*rewriteruc.BudgetTracker)

	// One tracker per provider account, shared by every role that bills it.
	tracker := func(provider string, b config.BudgetConfig) rewriteruc.BudgetChecker {
		if t, ok := trackers[provider]; ok {
			return t
		}
		if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
			return nil
		}
		action := rewriteruc.BudgetActionWarn
		if b.Action == "reject" {
			action = rewriteruc.BudgetActionReject
		}
		t := rewriteruc.NewBudgetTracker(provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger).
			WithStore(ctx, budgetStore)
		trackers[provider] = t
		m.budgets[provider] = t
		return t
	}

	var base *openaiRewriter.Rewriter
	if cfg.Rewriter.Enabled {
		rw := &cfg.Rewriter
		base = openaiRewriter.NewRewriter(&openaiRewriter.Config{
			APIKey:      rw.APIKey,
			BaseURL:     rw.BaseURL,
			Model:       rw.Model,
			MaxKeywords: rw.MaxKeywords,
			Provider:    rw.Provider,
			Logger:      logger,
		})
		instrumented := rewriteruc.NewInstrumented(
			base, rw.Provider, rw.Model,
			tracker(rw.Provider, rw.Budget),
			rewriteruc.NewLimiter(rw.RateLimit.RPS, rw.RateLimit.Burst),
			logger,
		)
		cached := rewritecache.New(
			instrumented, store, config.Seconds(rw.CacheTTLSec), metrics.RewriterCacheTotal, logger,
		)
		m.expander = cached
		if cfg.Rank.Enabled {
			m.reranker = instrumented
		}
		m.health = base
		logger.Info("Rewriter created", zap.String("provider", rw.Provider), zap.String("model", rw.Model))
	}

	if !cfg.Relevance.Enabled {
		return m, nil
	}

	rel := &cfg.Relevance
	var (
		scorer domain.SemanticScorer
		model  = rel.Model
	)
	switch rel.Provider {
	case "openai":
		if model == "" {
			model = cfg.Rewriter.Model
		}
		if rel.APIKey == "" && base != nil && model == cfg.Rewriter.Model {
			scorer = base
		} else {
			apiKey, baseURL := rel.APIKey, rel.BaseURL
			if apiKey == "" {
				apiKey, baseURL = cfg.Rewriter.APIKey, cfg.Rewriter.BaseURL
			}
			scorer = openaiRewriter.NewRewriter(&openaiRewriter.Config{
				APIKey:   apiKey,
				BaseURL:  baseURL,
				Model:    model,
				Provider: "openai",
				Logger:   logger,
			})
		}
	case "gemini":
		g, err := geminiScorer.NewScorer(ctx, &geminiScorer.Config{
			APIKey:   rel.APIKey,
			BaseURL:  rel.BaseURL,
			Model:    model,
			Provider: "gemini",
			Logger:   logger,
		})
		if err != nil {
			return models{}, fmt.Errorf("gemini scorer: %w", err)
		}
		scorer = g
	default:
		return models{}, fmt.Errorf("unknown relevance provider %q", rel.Provider)
	}

	budget := rel.Budget
	if rel.Provider == cfg.Rewriter.Provider && budget == (config.BudgetConfig{}) {
		budget = cfg.Rewriter.Budget
	}
	m.scorer = rewriteruc.NewInstrumentedScorer(
		scorer, rel.Provider, model,
		tracker(rel.Provider, budget),
		rewriteruc.NewLimiter(rel.RateLimit.RPS, rel.RateLimit.Burst),
		logger,
	)
	logger.Info("Relevance scorer created", zap.String("provider", rel.Provider), zap.String("model", model))
	return m, nil
}

// sourceSet is the enabled adapters plus the README fetcher for GitHub relevance checks.
type sourceSet struct {
	adapters map[platform.Platform]aggregate.Source
	readme   relevance.ReadmeFetcher
}

func buildSources(
	ctx context.Context, cfg *config.Config, opts []upstream.Option, logger *zap.Logger,
) (sourceSet, error) {
	set := sourceSet{adapters: make(map[platform.Platform]aggregate.Source)}
	for _, p := range cfg.EnabledSources() {
		sc := cfg.Source(p)
		switch p {
		case platform.GitHub:
			gh, err := github.New(ctx, &github.Config{
				Token:     sc.APIKey,
				BaseURL:   sc.BaseURL,
				FetchSize: sc.FetchSize,
				Logger:    logger,
			})
			if err != nil {
				return sourceSet{}, fmt.Errorf("github source: %w", err)
			}
			set.adapters[p] = gh
			set.readme = gh
		case platform.YouTube:
			yt, err := youtube.New(&youtube.Config{
				APIKey:    sc.APIKey,
				BaseURL:   sc.BaseURL,
				FetchSize: sc.FetchSize,
				Logger:    logger,
				Options:   opts,
			})
			if err != nil {
				return sourceSet{}, fmt.Errorf("youtube source: %w", err)
			}
			set.adapters[p] = yt
		case platform.Reddit:
			set.adapters[p] = reddit.New(&reddit.Config{
				BaseURL:   sc.BaseURL,
				FetchSize: sc.FetchSize,
				UserAgent: cfg.Search.UserAgent,
				Logger:    logger,
				Options:   opts,
			})
		case platform.Archive:
			set.adapters[p] = archive.New(&archive.Config{
				BaseURL:   sc.BaseURL,
				FetchSize: sc.FetchSize,
				Logger:    logger,
				Options:   opts,
			})
		case platform.FreeCodeCamp:
			fcc, err := freecodecamp.New(&freecodecamp.Config{
				ForumURL:  sc.BaseURL,
				FetchSize: sc.FetchSize,
				Logger:    logger,
				Options:   opts,
			})
			if err != nil {
				return sourceSet{}, fmt.Errorf("freecodecamp source: %w", err)
			}
			set.adapters[p] = fcc
		}
	}
	return set, nil
}

// buildFilter maps per-source config to policies and attaches semantic checkers
// when a relevance scorer is configured.
func buildFilter(
	cfg *config.Config, scorer domain.SemanticScorer, readme relevance.ReadmeFetcher, logger *zap.Logger,
) *filter.Filter {
	policies := make(map[platform.Platform]filter.Policy)
	for _, p := range cfg.EnabledSources() {
		if pol, ok := policyFromConfig(cfg.Source(p).Filter); ok {
			policies[p] = pol
		}
	}

	opts := []filter.Option{
		filter.WithConcurrency(cfg.Relevance.Concurrency),
		filter.WithCheckTimeout(config.Seconds(cfg.Relevance.TimeoutSec)),
	}
	if scorer != nil {
		threshold := cfg.Relevance.Threshold
		if readme != nil {
			opts = append(opts, filter.WithChecker(platform.GitHub,
				relevance.NewGitHubChecker(readme, scorer, threshold)))
		}
		// A post inside the reddit grace window counts as new for the checker too.
		opts = append(opts, filter.WithChecker(platform.Reddit,
			relevance.NewRedditChecker(scorer, threshold, policies[platform.Reddit].Grace)))
	}
	return filter.New(policies, logger, opts...)
}

// policyFromConfig converts a source filter block. An empty block keeps the default policy.
func policyFromConfig(fc config.FilterConfig) (filter.Policy, bool) {
	if fc == (config.FilterConfig{}) {
		return filter.Policy{}, false
	}
	return filter.Policy{
		MinScore:      fc.MinScore,
		MinPopularity: fc.MinPopularity,
		Grace:         time.Duration(fc.GraceDays) * 24 * time.Hour,
		Cap:           fc.Cap,
	}, true
}

func platformNames(ps []platform.Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
