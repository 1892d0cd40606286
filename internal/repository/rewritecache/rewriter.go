package rewritecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/db"
	"github.com/kailas-cloud/learnscout/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "expand_cache:"

// DefaultTTL keeps expansions for a day.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for the expansion cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRewriter caches keyword expansions per normalized query. Ranking is not cached:
// its input depends on what the sources returned.
type CachedRewriter struct {
	inner      domain.Rewriter
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Rewriter,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRewriter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedRewriter{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Expand returns cached keywords or calls the inner rewriter.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedRewriter) Expand(ctx context.Context, query string) (domain.Expansion, error) {
	key := c.cacheKey(query)

	if kw, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Expansion{Keywords: kw}, nil
	}

	c.incCache("miss")

	res, err := c.inner.Expand(ctx, query)
	if err != nil {
		return domain.Expansion{}, fmt.Errorf("expand query: %w", err)
	}

	if len(res.Keywords) > 0 {
		c.putToCache(ctx, key, res.Keywords)
	}
	return res, nil
}

// Rank delegates to the inner rewriter.
func (c *CachedRewriter) Rank(
	ctx context.Context, query string, candidates []domain.RankCandidate, topN int,
) (domain.Ranking, error) {
	res, err := c.inner.Rank(ctx, query, candidates, topN)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("rank: %w", err)
	}
	return res, nil
}

func (c *CachedRewriter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRewriter) cacheKey(query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	h := sha256.Sum256([]byte(norm))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedRewriter) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached expansion", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	kw := strings.Fields(string(data))
	if len(kw) == 0 {
		return nil, false
	}
	return kw, true
}

// putToCache stores keywords newline-separated; keywords never contain whitespace.
func (c *CachedRewriter) putToCache(ctx context.Context, key string, keywords []string) {
	clean := make([]string, 0, len(keywords))
	for _, k := range keywords {
		clean = append(clean, strings.Fields(k)...)
	}
	if err := c.store.SetWithTTL(ctx, key, []byte(strings.Join(clean, "\n")), c.ttl); err != nil {
		c.logger.Warn("Failed to cache expansion", zap.String("key", key), zap.Error(err))
	}
}
