package rank

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/logger"
	"github.com/kailas-cloud/learnscout/internal/metrics"
	"github.com/kailas-cloud/learnscout/internal/textutil"
)

// Defaults.
const (
	DefaultPassthroughMax = 5
	DefaultTopN           = 5
	DefaultResultCap      = 20
	DefaultTimeout        = 8 * time.Second

	candidateDescription = 200
)

// Config controls the ranking stage.
type Config struct {
	// PassthroughMax returns lists of at most this size unchanged.
	PassthroughMax int
	// TopN is the most items the reranker may select.
	TopN int
	// ResultCap truncates the fallback list.
	ResultCap int
	// LocalSort orders the fallback by type, popularity and relevance. Off keeps arrival order.
	LocalSort bool
	Timeout   time.Duration
}

// DefaultConfig returns the ranking defaults.
func DefaultConfig() Config {
	return Config{
		PassthroughMax: DefaultPassthroughMax,
		TopN:           DefaultTopN,
		ResultCap:      DefaultResultCap,
		LocalSort:      true,
		Timeout:        DefaultTimeout,
	}
}

// Service orders the merged result set.
type Service struct {
	reranker Reranker
	cfg      Config
	logger   *zap.Logger
}

// New creates a ranker. reranker may be nil, which always takes the local fallback.
func New(reranker Reranker, cfg Config, logger *zap.Logger) *Service {
	d := DefaultConfig()
	if cfg.PassthroughMax < 0 {
		cfg.PassthroughMax = d.PassthroughMax
	}
	if cfg.TopN <= 0 {
		cfg.TopN = d.TopN
	}
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = d.ResultCap
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	return &Service{reranker: reranker, cfg: cfg, logger: logger}
}

// Rank orders items for presentation. It never fails.
func (s *Service) Rank(ctx context.Context, query string, merged []item.Scored) []item.Scored {
	if len(merged) <= s.cfg.PassthroughMax {
		metrics.RankOutcomesTotal.WithLabelValues("passthrough").Inc()
		return merged
	}

	if s.reranker != nil {
		if ranked, ok := s.rerank(ctx, query, merged); ok {
			metrics.RankOutcomesTotal.WithLabelValues("rewriter").Inc()
			return ranked
		}
	}

	metrics.RankOutcomesTotal.WithLabelValues("fallback").Inc()
	return s.Fallback(merged)
}

func (s *Service) rerank(ctx context.Context, query string, merged []item.Scored) ([]item.Scored, bool) {
	log := logger.FromContextOr(ctx, s.logger)

	candidates := make([]domain.RankCandidate, len(merged))
	for i := range merged {
		candidates[i] = domain.RankCandidate{
			Title:       merged[i].Title(),
			Description: textutil.Truncate(merged[i].Description(), candidateDescription),
		}
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := s.reranker.Rank(rctx, query, candidates, s.cfg.TopN)
	if err != nil {
		log.Warn("Rerank failed, using local order", zap.Int("candidates", len(merged)), zap.Error(err))
		return nil, false
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	idx := ValidateIndices(res.Indices, len(merged), s.cfg.TopN)
	if len(idx) == 0 {
		log.Warn("Rerank returned no usable indices, using local order",
			zap.Ints("indices", res.Indices),
			zap.Int("candidates", len(merged)),
		)
		return nil, false
	}

	out := make([]item.Scored, len(idx))
	for i, j := range idx {
		out[i] = merged[j]
	}
	return out, true
}

// Fallback orders items locally and truncates them to the result cap.
func (s *Service) Fallback(merged []item.Scored) []item.Scored {
	out := make([]item.Scored, len(merged))
	copy(out, merged)

	if s.cfg.LocalSort {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := &out[i], &out[j]
			if pa, pb := a.Type().Priority(), b.Type().Priority(); pa != pb {
				return pa < pb
			}
			if a.Popularity() != b.Popularity() {
				return a.Popularity() > b.Popularity()
			}
			return a.Relevance() > b.Relevance()
		})
	}

	if len(out) > s.cfg.ResultCap {
		out = out[:s.cfg.ResultCap]
	}
	return out
}

// ValidateIndices drops out-of-range and repeated indices, keeping first occurrences,
// and returns at most topN of them.
func ValidateIndices(indices []int, n, topN int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, min(len(indices), topN))
	for _, i := range indices {
		if len(out) == topN {
			break
		}
		if i < 0 || i >= n {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}
