// Package aggregate calls the selected sources concurrently and isolates their failures.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// ErrPanic marks an outcome whose task panicked.
var ErrPanic = errors.New("source panicked")

// Outcome is the result of one source task. Err set means Items is empty.
type Outcome[T any] struct {
	Source   platform.Platform
	Items    []T
	Err      error
	Duration time.Duration
}

// Fanout runs fn for every source concurrently, each under its own timeout, and returns
// one outcome per source in input order. A failing, panicking or slow source never
// cancels or delays its siblings beyond the timeout. A non-positive timeout disables it.
func Fanout[T any](
	ctx context.Context, sources []platform.Platform, timeout time.Duration,
	fn func(ctx context.Context, p platform.Platform) ([]T, error),
) []Outcome[T] {
	outcomes := make([]Outcome[T], len(sources))
	var g errgroup.Group
	for i, p := range sources {
		g.Go(func() error {
			outcomes[i] = run(ctx, p, timeout, fn)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

type result[T any] struct {
	items []T
	err   error
}

func run[T any](
	ctx context.Context, p platform.Platform, timeout time.Duration,
	fn func(ctx context.Context, p platform.Platform) ([]T, error),
) Outcome[T] {
	start := time.Now()
	cctx, cancel := context.WithCancel(ctx)
	if timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("%w: %s: %v", ErrPanic, p, r)}
			}
		}()
		items, err := fn(cctx, p)
		done <- result[T]{items: items, err: err}
	}()

	var res result[T]
	select {
	case res = <-done:
	case <-cctx.Done():
		res = result[T]{err: fmt.Errorf("%s: %w: %w", p, domain.ErrSourceUnavailable, cctx.Err())}
	}

	out := Outcome[T]{Source: p, Duration: time.Since(start)}
	if res.err != nil {
		out.Err = res.err
		return out
	}
	out.Items = res.items
	return out
}
