package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/learnscout/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

// --- Tests ---

func newTestService() *Service {
	svc := New(map[string]BudgetReader{
		"openai": &mockBudgetReader{
			dailyLimit: 10000, dailyUsed: 3000, remainingDaily: 7000,
			monthlyLimit: 100000, monthlyUsed: 50000, remainingMonthly: 50000,
		},
		"gemini": &mockBudgetReader{remainingDaily: -1, remainingMonthly: -1, dailyUsed: 12},
	})
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetReports_DailyPeriod(t *testing.T) {
	reports := newTestService().GetReports(context.Background(), domusage.PeriodDay)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Provider() != "gemini" || reports[1].Provider() != "openai" {
		t.Errorf("reports not sorted by provider: %q, %q", reports[0].Provider(), reports[1].Provider())
	}

	r := reports[1]
	if r.Limit() != 10000 || r.Used() != 3000 || r.Remaining() != 7000 {
		t.Errorf("unexpected daily report: limit=%d used=%d remaining=%d", r.Limit(), r.Used(), r.Remaining())
	}
	if !r.End().Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", r.End())
	}
	if reports[0].Remaining() != -1 || reports[0].Exhausted() {
		t.Error("unlimited budget must report -1 and never be exhausted")
	}
}

func TestGetReports_MonthlyPeriod(t *testing.T) {
	reports := newTestService().GetReports(context.Background(), domusage.PeriodMonth)
	r := reports[1]
	if r.Limit() != 100000 || r.Used() != 50000 || r.Remaining() != 50000 {
		t.Errorf("unexpected monthly report: limit=%d used=%d remaining=%d", r.Limit(), r.Used(), r.Remaining())
	}
	if !r.Start().Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", r.Start())
	}
}

func TestGetReports_NoBudgets(t *testing.T) {
	if got := New(nil).GetReports(context.Background(), domusage.PeriodDay); len(got) != 0 {
		t.Errorf("expected no reports, got %d", len(got))
	}
}
