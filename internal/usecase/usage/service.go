package usage

import (
	"context"
	"sort"
	"time"

	domusage "github.com/kailas-cloud/learnscout/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	budgets map[string]BudgetReader
	now     func() time.Time
}

// New creates a Service over the budget tracker of each provider. An empty map reports nothing.
func New(budgets map[string]BudgetReader) *Service {
	return &Service{budgets: budgets, now: time.Now}
}

// GetReports builds one report per provider for the given period, sorted by provider.
func (s *Service) GetReports(_ context.Context, period domusage.Period) []domusage.Report {
	start, end := period.Bounds(s.now())

	out := make([]domusage.Report, 0, len(s.budgets))
	for provider, br := range s.budgets {
		var limit, used, remaining int64
		switch period {
		case domusage.PeriodMonth:
			limit, used, remaining = br.MonthlyLimit(), br.MonthlyUsed(), br.RemainingMonthly()
		default:
			limit, used, remaining = br.DailyLimit(), br.DailyUsed(), br.RemainingDaily()
		}
		out = append(out, domusage.NewReport(provider, period, start, end, limit, used, remaining))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Provider() < out[j].Provider() })
	return out
}
