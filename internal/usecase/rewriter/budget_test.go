package rewriter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop())
	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected domain.ErrQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 0, BudgetActionWarn, zap.NewNop())
	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 500, BudgetActionReject, zap.NewNop())
	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected domain.ErrQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionReject, zap.NewNop())
	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Error("expected -1 remaining for unlimited budget")
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.Record(300)

	if daily := bt.RemainingDaily(); daily != 700 {
		t.Errorf("expected daily remaining 700, got %d", daily)
	}
	if monthly := bt.RemainingMonthly(); monthly != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", monthly)
	}

	bt.Record(5000)
	if daily := bt.RemainingDaily(); daily != 0 {
		t.Errorf("expected remaining clamped to 0, got %d", daily)
	}
}

func TestBudgetTracker_IgnoresNonPositive(t *testing.T) {
	bt := NewBudgetTracker("openai", 1000, 0, BudgetActionWarn, zap.NewNop())
	bt.Record(0)
	bt.Record(-5)
	if bt.DailyUsed() != 0 {
		t.Errorf("expected 0 used, got %d", bt.DailyUsed())
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	bt := NewBudgetTracker("openai", 100, 1000, BudgetActionReject, zap.NewNop())
	bt.now = fixedClock(&now)
	bt.day, bt.month = periods(now)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	now = now.Add(2 * time.Minute)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected daily reset after midnight, got %v", err)
	}
	if bt.MonthlyUsed() != 100 {
		t.Errorf("monthly counter must survive the day rollover, got %d", bt.MonthlyUsed())
	}

	now = time.Date(2026, 11, 1, 0, 1, 0, 0, time.UTC)
	if bt.MonthlyUsed() != 0 {
		t.Errorf("expected monthly reset, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionReject, zap.NewNop())
	now := bt.now()
	store.data[bt.dailyKey(now)] = 300
	store.data[bt.monthlyKey(now)] = 5000

	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("expected daily_used=300, got %d", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("expected monthly_used=5000, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 10000, 100000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)

	now := bt.now()
	store.mu.Lock()
	daily, monthly := store.data[bt.dailyKey(now)], store.data[bt.monthlyKey(now)]
	store.mu.Unlock()

	if daily != 300 || monthly != 300 {
		t.Errorf("expected store daily=300 monthly=300, got %d %d", daily, monthly)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero counters on load error, got %d %d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)
	if bt.DailyUsed() != 50 {
		t.Errorf("expected daily_used=50 even with store error, got %d", bt.DailyUsed())
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("gemini", 0, 0, BudgetActionWarn, zap.NewNop())
	at := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	if got := bt.dailyKey(at); got != "learnscout:budget:gemini:daily:2026-03-07" {
		t.Errorf("daily key = %q", got)
	}
	if got := bt.monthlyKey(at); !strings.HasSuffix(got, ":monthly:2026-03") {
		t.Errorf("monthly key = %q", got)
	}
}
