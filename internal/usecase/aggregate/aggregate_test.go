package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	items []item.Raw
	err   error
	delay time.Duration
	panic bool
	gotKW []string
}

func (f *fakeSource) Search(ctx context.Context, keywords []string, _ string) ([]item.Raw, error) {
	f.gotKW = keywords
	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.items, f.err
}

func posts(n int) []item.Raw {
	out := make([]item.Raw, n)
	for i := range out {
		out[i] = item.Post{Title: "post", URL: string(rune('a' + i))}
	}
	return out
}

func plan(t *testing.T, sources ...platform.Platform) query.Plan {
	t.Helper()
	q, err := query.New("react hooks", "all")
	require.NoError(t, err)
	return query.Plan{Query: q, Keywords: []string{"react", "hooks"}, Sources: sources}
}

func TestFanout_PreservesOrder(t *testing.T) {
	sources := []platform.Platform{platform.Reddit, platform.GitHub, platform.Archive}
	out := Fanout(context.Background(), sources, time.Second,
		func(_ context.Context, p platform.Platform) ([]string, error) {
			if p == platform.Reddit {
				time.Sleep(10 * time.Millisecond)
			}
			return []string{p.String()}, nil
		})

	require.Len(t, out, 3)
	for i, p := range sources {
		assert.Equal(t, p, out[i].Source)
		assert.Equal(t, []string{p.String()}, out[i].Items)
		assert.NoError(t, out[i].Err)
	}
}

func TestFanout_Empty(t *testing.T) {
	out := Fanout(context.Background(), nil, time.Second,
		func(context.Context, platform.Platform) ([]int, error) { return nil, nil })
	assert.Empty(t, out)
}

func TestAggregate_FailureIsolation(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.GitHub: &fakeSource{err: &domain.UpstreamError{Service: "github", StatusCode: 502}},
		platform.Reddit: &fakeSource{items: posts(3)},
	}, time.Second, zap.NewNop())

	out := a.Aggregate(context.Background(), plan(t, platform.GitHub, platform.Reddit))
	require.Len(t, out, 2)

	assert.ErrorIs(t, out[0].Err, domain.ErrSourceUnavailable)
	assert.Empty(t, out[0].Items)
	assert.NoError(t, out[1].Err)
	assert.Len(t, out[1].Items, 3)
}

func TestAggregate_PanicBecomesOutcome(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.YouTube: &fakeSource{panic: true},
		platform.Archive: &fakeSource{items: posts(1)},
	}, time.Second, zap.NewNop())

	out := a.Aggregate(context.Background(), plan(t, platform.YouTube, platform.Archive))
	assert.ErrorIs(t, out[0].Err, ErrPanic)
	assert.Len(t, out[1].Items, 1)
}

func TestAggregate_Timeout(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.GitHub: &fakeSource{delay: 5 * time.Second, items: posts(2)},
		platform.Reddit: &fakeSource{items: posts(2)},
	}, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	out := a.Aggregate(context.Background(), plan(t, platform.GitHub, platform.Reddit))
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.True(t, errors.Is(out[0].Err, context.DeadlineExceeded))
	assert.Empty(t, out[0].Items)
	assert.Len(t, out[1].Items, 2)
	assert.Equal(t, "timeout", status(out[0].Err))
}

func TestAggregate_UnconfiguredSource(t *testing.T) {
	a := New(map[platform.Platform]Source{}, time.Second, zap.NewNop())
	out := a.Aggregate(context.Background(), plan(t, platform.FreeCodeCamp))
	assert.ErrorIs(t, out[0].Err, domain.ErrSourceUnavailable)
}

func TestAggregate_SameKeywordsForEverySource(t *testing.T) {
	gh, rd := &fakeSource{}, &fakeSource{}
	a := New(map[platform.Platform]Source{platform.GitHub: gh, platform.Reddit: rd}, time.Second, zap.NewNop())

	a.Aggregate(context.Background(), plan(t, platform.GitHub, platform.Reddit))
	assert.Equal(t, []string{"react", "hooks"}, gh.gotKW)
	assert.Equal(t, gh.gotKW, rd.gotKW)
}

func TestProcess_RunsStagePerSource(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.Reddit: &fakeSource{items: posts(3)},
		platform.GitHub: &fakeSource{err: errors.New("down")},
	}, time.Second, zap.NewNop())

	var staged []platform.Platform
	out := a.Process(context.Background(), plan(t, platform.Reddit, platform.GitHub),
		func(_ context.Context, p platform.Platform, raws []item.Raw) []item.Scored {
			staged = append(staged, p)
			scored := make([]item.Scored, 0, len(raws))
			for _, r := range raws[:2] {
				scored = append(scored, item.NewScored(item.Normalize(r), r, 1))
			}
			return scored
		})

	assert.Equal(t, []platform.Platform{platform.Reddit}, staged)
	assert.Len(t, out[0].Items, 2)
	assert.Error(t, out[1].Err)
}

func TestProcess_TimeoutBoundsOnlySourceCall(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.Reddit: &fakeSource{items: posts(3)},
	}, 50*time.Millisecond, zap.NewNop())

	out := a.Process(context.Background(), plan(t, platform.Reddit),
		func(ctx context.Context, _ platform.Platform, raws []item.Raw) []item.Scored {
			time.Sleep(150 * time.Millisecond)
			assert.NoError(t, ctx.Err())
			scored := make([]item.Scored, 0, len(raws))
			for _, r := range raws {
				scored = append(scored, item.NewScored(item.Normalize(r), r, 1))
			}
			return scored
		})

	require.NoError(t, out[0].Err)
	assert.Len(t, out[0].Items, 3)
}

func TestProcess_SlowSourceStillTimesOut(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.GitHub: &fakeSource{delay: 5 * time.Second, items: posts(2)},
	}, 50*time.Millisecond, zap.NewNop())

	staged := false
	out := a.Process(context.Background(), plan(t, platform.GitHub),
		func(context.Context, platform.Platform, []item.Raw) []item.Scored {
			staged = true
			return nil
		})

	assert.ErrorIs(t, out[0].Err, context.DeadlineExceeded)
	assert.False(t, staged)
}

func TestEnabled(t *testing.T) {
	a := New(map[platform.Platform]Source{
		platform.FreeCodeCamp: &fakeSource{},
		platform.GitHub:       &fakeSource{},
	}, 0, zap.NewNop())
	assert.Equal(t, []platform.Platform{platform.GitHub, platform.FreeCodeCamp}, a.Enabled())
}
