package rewritecache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/db/memory"
	"github.com/kailas-cloud/learnscout/internal/domain"
)

type mockRewriter struct {
	expansion   domain.Expansion
	err         error
	expandCalls int
	rankCalls   int
}

func (m *mockRewriter) Expand(context.Context, string) (domain.Expansion, error) {
	m.expandCalls++
	return m.expansion, m.err
}

func (m *mockRewriter) Rank(context.Context, string, []domain.RankCandidate, int) (domain.Ranking, error) {
	m.rankCalls++
	return domain.Ranking{Indices: []int{1, 0}}, nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func TestCachedRewriter_MissThenHit(t *testing.T) {
	inner := &mockRewriter{expansion: domain.Expansion{Keywords: []string{"react", "hooks"}, TotalTokens: 25}}
	counter := newCounter()
	c := New(inner, memory.New(), time.Hour, counter, zap.NewNop())
	ctx := context.Background()

	first, err := c.Expand(ctx, "React Hooks")
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalTokens != 25 {
		t.Errorf("miss must report provider tokens, got %d", first.TotalTokens)
	}

	second, err := c.Expand(ctx, "  react   hooks ")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(second.Keywords, []string{"react", "hooks"}) {
		t.Errorf("cached keywords = %v", second.Keywords)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit must report zero tokens, got %d", second.TotalTokens)
	}
	if inner.expandCalls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.expandCalls)
	}
	if testutil.ToFloat64(counter.WithLabelValues("hit")) != 1 || testutil.ToFloat64(counter.WithLabelValues("miss")) != 1 {
		t.Error("expected one hit and one miss")
	}
}

func TestCachedRewriter_ErrorNotCached(t *testing.T) {
	inner := &mockRewriter{err: domain.ErrRewriterUnavailable}
	c := New(inner, memory.New(), time.Hour, nil, zap.NewNop())

	for range 2 {
		if _, err := c.Expand(context.Background(), "go"); !errors.Is(err, domain.ErrRewriterUnavailable) {
			t.Fatalf("expected ErrRewriterUnavailable, got %v", err)
		}
	}
	if inner.expandCalls != 2 {
		t.Errorf("errors must not be cached, got %d calls", inner.expandCalls)
	}
}

func TestCachedRewriter_EmptyNotCached(t *testing.T) {
	inner := &mockRewriter{}
	c := New(inner, memory.New(), time.Hour, nil, zap.NewNop())

	_, _ = c.Expand(context.Background(), "go")
	_, _ = c.Expand(context.Background(), "go")
	if inner.expandCalls != 2 {
		t.Errorf("empty expansions must not be cached, got %d calls", inner.expandCalls)
	}
}

func TestCachedRewriter_RankPassesThrough(t *testing.T) {
	inner := &mockRewriter{}
	c := New(inner, memory.New(), 0, nil, zap.NewNop())

	res, err := c.Rank(context.Background(), "go", nil, 5)
	if err != nil || !reflect.DeepEqual(res.Indices, []int{1, 0}) {
		t.Fatalf("Rank = %v, %v", res, err)
	}
	if inner.rankCalls != 1 {
		t.Errorf("expected 1 rank call, got %d", inner.rankCalls)
	}
}
