package domain

import (
	"context"
	"sync"
)

type rewriteUsageKey struct{}

// RewriteUsage collects language model token usage for a single search request.
// The handler puts a pointer into the context; rewriter and relevance calls add to it
// from several goroutines; the handler reads it for response headers.
type RewriteUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RewriteUsage) {
	u := &RewriteUsage{}
	return context.WithValue(ctx, rewriteUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RewriteUsage {
	u, _ := ctx.Value(rewriteUsageKey{}).(*RewriteUsage)
	return u
}

// AddTokens records one model call and the tokens it consumed.
func (u *RewriteUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.calls++
	u.mu.Unlock()
}

// TotalTokens returns the tokens consumed so far.
func (u *RewriteUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Calls returns the number of model calls recorded.
func (u *RewriteUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}
