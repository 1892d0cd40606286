package relevance

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/usecase/filter"
)

const (
	// DefaultNewPostWindow is how long a post counts as new.
	DefaultNewPostWindow = 7 * 24 * time.Hour

	highQualityUpvotes  = 15
	highQualityComments = 10
)

// RedditChecker accepts posts from learning subreddits that are new or well received,
// and any post the model rates relevant.
type RedditChecker struct {
	scorer    domain.SemanticScorer
	threshold float64
	newWindow time.Duration
}

// NewRedditChecker creates a post checker. Non-positive arguments use the defaults.
func NewRedditChecker(scorer domain.SemanticScorer, threshold float64, newWindow time.Duration) *RedditChecker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if newWindow <= 0 {
		newWindow = DefaultNewPostWindow
	}
	return &RedditChecker{scorer: scorer, threshold: threshold, newWindow: newWindow}
}

// Check implements filter.SemanticChecker.
func (c *RedditChecker) Check(ctx context.Context, s item.Scored, rc filter.RequestContext) (bool, error) {
	p, ok := s.Raw().(item.Post)
	if !ok {
		return true, nil
	}

	now := rc.Now
	if now.IsZero() {
		now = time.Now()
	}
	age, dated := s.Age(now)
	isNew := dated && age < c.newWindow
	highQuality := p.Upvotes >= highQualityUpvotes || p.Comments >= highQualityComments

	if item.IsEducationalSubreddit(p.Subreddit) && (highQuality || isNew) {
		return true, nil
	}

	res, err := c.scorer.Relevance(ctx, rc.Query, p.Title+"\n"+p.Body)
	if err != nil {
		return false, fmt.Errorf("semantic relevance: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Score >= c.threshold, nil
}
