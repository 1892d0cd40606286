package planner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

// MaxKeywords bounds the keyword set sent to every source.
const MaxKeywords = 10

// DefaultExpandTimeout bounds a single expansion call.
const DefaultExpandTimeout = 5 * time.Second

// Service turns a query into a plan: which sources to call and with which keywords.
type Service struct {
	expander Expander
	enabled  map[platform.Platform]bool
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a planner. expander may be nil, in which case keywords always come
// from the whitespace split.
func New(expander Expander, enabled []platform.Platform, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultExpandTimeout
	}
	m := make(map[platform.Platform]bool, len(enabled))
	for _, p := range enabled {
		m[p] = true
	}
	return &Service{expander: expander, enabled: m, timeout: timeout, logger: logger}
}

// Plan builds the request plan. It never fails: rewriter problems degrade to the
// deterministic keyword split.
func (s *Service) Plan(ctx context.Context, q query.Query) query.Plan {
	plan := query.Plan{Query: q, Sources: s.Sources(q.Filter())}
	plan.Keywords, plan.Expanded = s.keywords(ctx, q.Text())
	if len(plan.Keywords) > MaxKeywords {
		plan.Keywords = plan.Keywords[:MaxKeywords]
	}
	return plan
}

// Sources resolves a platform filter against the enabled sources in fan-out order.
// Unknown or disabled platforms yield an empty list.
func (s *Service) Sources(filter string) []platform.Platform {
	if filter == "" || filter == platform.All {
		out := make([]platform.Platform, 0, len(s.enabled))
		for _, p := range platform.Ordered() {
			if s.enabled[p] {
				out = append(out, p)
			}
		}
		return out
	}
	p, ok := platform.Parse(filter)
	if !ok || !s.enabled[p] {
		return []platform.Platform{}
	}
	return []platform.Platform{p}
}

func (s *Service) keywords(ctx context.Context, text string) ([]string, bool) {
	if s.expander == nil {
		return query.Split(text), false
	}

	ectx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exp, err := s.expander.Expand(ectx, text)
	if err != nil {
		metrics.PlannerFallbackTotal.Inc()
		s.logger.Warn("Query expansion failed, splitting query",
			zap.String("query", text),
			zap.Error(err),
		)
		return query.Split(text), false
	}
	domain.UsageFromContext(ctx).AddTokens(exp.TotalTokens)

	kw := query.Keywords(exp.Keywords)
	if len(kw) == 0 {
		metrics.PlannerFallbackTotal.Inc()
		s.logger.Warn("Query expansion returned no keywords, splitting query", zap.String("query", text))
		return query.Split(text), false
	}
	return kw, true
}
