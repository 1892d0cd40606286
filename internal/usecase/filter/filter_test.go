package filter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type mockChecker struct {
	calls atomic.Int32
	fn    func(s item.Scored) (bool, error)
}

func (m *mockChecker) Check(_ context.Context, s item.Scored, _ RequestContext) (bool, error) {
	m.calls.Add(1)
	return m.fn(s)
}

func repo(name string, stars int, age time.Duration, score float64) item.Scored {
	r := item.Repository{
		FullName:  name,
		URL:       "https://github.com/" + name,
		Stars:     stars,
		CreatedAt: now.Add(-age),
	}
	return item.NewScored(item.Normalize(r), r, score)
}

func githubPolicy() map[platform.Platform]Policy {
	return map[platform.Platform]Policy{
		platform.GitHub: {MinScore: 4, MinPopularity: 3, Grace: 90 * 24 * time.Hour, Cap: 15},
	}
}

func rc() RequestContext {
	return RequestContext{Query: "react hooks", Now: now}
}

func TestAccept_NoSignalRejected(t *testing.T) {
	f := New(nil, zap.NewNop())
	s := repo("foo/bar", 0, 400*24*time.Hour, 0)
	assert.False(t, f.Accept(context.Background(), s, rc()))
}

func TestAccept_ScoreThreshold(t *testing.T) {
	f := New(githubPolicy(), zap.NewNop())
	assert.True(t, f.Accept(context.Background(), repo("a/b", 50, 400*24*time.Hour, 4), rc()))
	assert.False(t, f.Accept(context.Background(), repo("a/b", 50, 400*24*time.Hour, 3), rc()))
}

func TestAccept_GracePeriod(t *testing.T) {
	f := New(githubPolicy(), zap.NewNop())

	fresh := repo("new/repo", 1, 10*24*time.Hour, 6)
	assert.True(t, f.Accept(context.Background(), fresh, rc()), "young repository bypasses the star floor")

	stale := repo("old/repo", 1, 200*24*time.Hour, 6)
	assert.False(t, f.Accept(context.Background(), stale, rc()), "old repository must meet the star floor")
}

func post(ups int, age time.Duration, score float64) item.Scored {
	p := item.Post{
		Title:     "Learning react hooks, week one",
		URL:       "https://www.reddit.com/r/reactjs/comments/x1",
		Subreddit: "reactjs",
		Upvotes:   ups,
		CreatedAt: now.Add(-age),
	}
	return item.NewScored(item.Normalize(p), p, score)
}

func TestAccept_RedditGracePeriod(t *testing.T) {
	// shipped reddit block: min_score 4, min_popularity 5, grace_days 7, cap 15
	f := New(map[platform.Platform]Policy{
		platform.Reddit: {MinScore: 4, MinPopularity: 5, Grace: 7 * 24 * time.Hour, Cap: 15},
	}, zap.NewNop())

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"one day old bypasses the upvote floor", 24 * time.Hour, true},
		{"eight days old must meet the upvote floor", 8 * 24 * time.Hour, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.Accept(context.Background(), post(0, tc.age, 6), rc()))
		})
	}
}

func TestAccept_NoPublishDateGetsNoGrace(t *testing.T) {
	f := New(map[platform.Platform]Policy{
		platform.Archive: {MinScore: 1, MinPopularity: 10, Grace: 7 * 24 * time.Hour},
	}, zap.NewNop())
	d := item.ArchiveDocument{Identifier: "x", Downloads: 2}
	s := item.NewScored(item.Normalize(d), d, 5)
	assert.False(t, f.Accept(context.Background(), s, rc()))
}

func TestAccept_FailOpen(t *testing.T) {
	checker := &mockChecker{fn: func(item.Scored) (bool, error) {
		return false, errors.New("llm timeout")
	}}
	f := New(githubPolicy(), zap.NewNop(), WithChecker(platform.GitHub, checker))

	// would fail every other rule
	s := repo("foo/bar", 0, 400*24*time.Hour, -3)
	assert.True(t, f.Accept(context.Background(), s, rc()))
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestAccept_SemanticReject(t *testing.T) {
	checker := &mockChecker{fn: func(item.Scored) (bool, error) { return false, nil }}
	f := New(githubPolicy(), zap.NewNop(), WithChecker(platform.GitHub, checker))

	s := repo("acme/react-hooks", 5000, 400*24*time.Hour, 14)
	assert.False(t, f.Accept(context.Background(), s, rc()))
}

func TestAccept_CheckerOnlyForItsPlatform(t *testing.T) {
	checker := &mockChecker{fn: func(item.Scored) (bool, error) { return false, nil }}
	f := New(nil, zap.NewNop(), WithChecker(platform.Reddit, checker))

	assert.True(t, f.Accept(context.Background(), repo("a/b", 500, 0, 9), rc()))
	assert.Zero(t, checker.calls.Load())
}

func TestApply_CapKeepsOrder(t *testing.T) {
	pol := map[platform.Platform]Policy{platform.GitHub: {MinScore: 1, Cap: 3}}
	f := New(pol, zap.NewNop(), WithConcurrency(4))

	var items []item.Scored
	for i := range 10 {
		items = append(items, repo(fmt.Sprintf("acme/r%d", i), 100, 0, 5))
	}

	got := f.Apply(context.Background(), items, rc())
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, items[i].URL(), s.URL())
	}
}

func TestApply_SkipsRejectedAndStopsAtCap(t *testing.T) {
	checker := &mockChecker{fn: func(s item.Scored) (bool, error) {
		time.Sleep(time.Millisecond)
		return s.Title() != "acme/r1", nil
	}}
	pol := map[platform.Platform]Policy{platform.GitHub: {MinScore: 1, Cap: 2}}
	f := New(pol, zap.NewNop(), WithChecker(platform.GitHub, checker), WithConcurrency(2))

	var items []item.Scored
	for i := range 8 {
		items = append(items, repo(fmt.Sprintf("acme/r%d", i), 100, 0, 5))
	}

	got := f.Apply(context.Background(), items, rc())
	require.Len(t, got, 2)
	assert.Equal(t, "acme/r0", got[0].Title())
	assert.Equal(t, "acme/r2", got[1].Title())
	// windows of two: [r0 r1] [r2 r3], then capped
	assert.Equal(t, int32(4), checker.calls.Load())
}

func TestApply_Empty(t *testing.T) {
	f := New(nil, zap.NewNop())
	assert.Empty(t, f.Apply(context.Background(), nil, rc()))
}

func TestPolicy_Default(t *testing.T) {
	f := New(nil, zap.NewNop())
	pol := f.Policy(platform.YouTube)
	assert.Equal(t, float64(DefaultMinScore), pol.MinScore)
	assert.Equal(t, DefaultCap, pol.capOrDefault())
}
