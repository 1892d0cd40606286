// Package relevance holds the semantic checkers the filter consults per platform.
package relevance

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/usecase/filter"
)

const (
	// DefaultThreshold is the minimum model relevance for acceptance.
	DefaultThreshold = 0.5
	// MinReadmeLength rejects repositories with placeholder READMEs.
	MinReadmeLength = 50
	// documentedReadmeLength lowers the threshold by 10% for well documented repositories.
	documentedReadmeLength = 500
	readmeExcerpt          = 1500
)

// GitHubChecker accepts repositories with a real README that the model rates relevant,
// or whose topics match the query.
type GitHubChecker struct {
	readme    ReadmeFetcher
	scorer    domain.SemanticScorer
	threshold float64
}

// NewGitHubChecker creates a repository checker. A non-positive threshold uses DefaultThreshold.
func NewGitHubChecker(readme ReadmeFetcher, scorer domain.SemanticScorer, threshold float64) *GitHubChecker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &GitHubChecker{readme: readme, scorer: scorer, threshold: threshold}
}

// Check implements filter.SemanticChecker.
func (c *GitHubChecker) Check(ctx context.Context, s item.Scored, rc filter.RequestContext) (bool, error) {
	r, ok := s.Raw().(item.Repository)
	if !ok {
		return true, nil
	}

	readme, err := c.readme.Readme(ctx, r.FullName)
	if err != nil {
		return false, fmt.Errorf("fetch readme %s: %w", r.FullName, err)
	}
	n := utf8.RuneCountInString(readme)
	if n < MinReadmeLength {
		return false, nil
	}
	if topicMatches(r.Topics, rc.Query) {
		return true, nil
	}

	content := r.Description + "\n" + textutil.Head(readme, readmeExcerpt)
	res, err := c.scorer.Relevance(ctx, rc.Query, content)
	if err != nil {
		return false, fmt.Errorf("semantic relevance: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	threshold := c.threshold
	if n > documentedReadmeLength {
		threshold *= 0.9
	}
	return res.Score >= threshold, nil
}

// topicMatches reports whether a topic contains the query or the query contains a topic.
func topicMatches(topics []string, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, t := range topics {
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		if strings.Contains(q, t) || strings.Contains(t, q) {
			return true
		}
	}
	return false
}
