package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
	"github.com/kailas-cloud/learnscout/internal/logger"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

// DefaultTimeout bounds one source call.
const DefaultTimeout = 10 * time.Second

// Stage processes one source's raw items inside that source's task.
type Stage func(ctx context.Context, p platform.Platform, raws []item.Raw) []item.Scored

// Aggregator fans a plan out to the registered adapters.
type Aggregator struct {
	sources map[platform.Platform]Source
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an aggregator over the given adapters.
func New(sources map[platform.Platform]Source, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Aggregator{sources: sources, timeout: timeout, logger: logger}
}

// Enabled returns the registered platforms in fan-out order.
func (a *Aggregator) Enabled() []platform.Platform {
	out := make([]platform.Platform, 0, len(a.sources))
	for _, p := range platform.Ordered() {
		if _, ok := a.sources[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Aggregate calls every planned source and returns their raw outcomes in plan order.
func (a *Aggregator) Aggregate(ctx context.Context, plan query.Plan) []Outcome[item.Raw] {
	outcomes := Fanout(ctx, plan.Sources, a.timeout, func(ctx context.Context, p platform.Platform) ([]item.Raw, error) {
		return a.search(ctx, p, plan)
	})
	observe(ctx, a.logger, outcomes)
	return outcomes
}

// Process calls every planned source and runs stage on each source's items within
// the same task. The source timeout bounds the adapter call only: stage work such as
// semantic checks carries its own limits and must not discard fetched items.
func (a *Aggregator) Process(ctx context.Context, plan query.Plan, stage Stage) []Outcome[item.Scored] {
	outcomes := Fanout(ctx, plan.Sources, 0, func(ctx context.Context, p platform.Platform) ([]item.Scored, error) {
		fetched := run(ctx, p, a.timeout, func(ctx context.Context, p platform.Platform) ([]item.Raw, error) {
			return a.search(ctx, p, plan)
		})
		if fetched.Err != nil {
			return nil, fetched.Err
		}
		return stage(ctx, p, fetched.Items), nil
	})
	observe(ctx, a.logger, outcomes)
	return outcomes
}

func (a *Aggregator) search(ctx context.Context, p platform.Platform, plan query.Plan) ([]item.Raw, error) {
	src, ok := a.sources[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w: not configured", p, domain.ErrSourceUnavailable)
	}
	raws, err := src.Search(ctx, plan.Keywords, plan.Query.Text())
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", p, err)
	}
	metrics.SourceItemsTotal.WithLabelValues(p.String(), "fetched").Add(float64(len(raws)))
	return raws, nil
}

func observe[T any](ctx context.Context, l *zap.Logger, outcomes []Outcome[T]) {
	log := logger.FromContextOr(ctx, l)
	for _, o := range outcomes {
		p := o.Source.String()
		metrics.SourceRequestDuration.WithLabelValues(p).Observe(o.Duration.Seconds())
		if o.Err == nil {
			metrics.SourceRequestsTotal.WithLabelValues(p, "ok").Inc()
			continue
		}
		metrics.SourceRequestsTotal.WithLabelValues(p, status(o.Err)).Inc()
		log.Warn("Source failed",
			zap.String("platform", p),
			zap.Duration("duration", o.Duration),
			zap.Error(o.Err),
		)
	}
}

func status(err error) string {
	switch {
	case errors.Is(err, ErrPanic):
		return "panic"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
