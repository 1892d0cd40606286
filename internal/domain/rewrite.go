package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rewriter is the hosted language model used to expand queries and rerank results.
// Callers must tolerate every error it returns.
type Rewriter interface {
	Expand(ctx context.Context, query string) (Expansion, error)
	Rank(ctx context.Context, query string, candidates []RankCandidate, topN int) (Ranking, error)
}

// SemanticScorer rates how relevant a text is to a query.
type SemanticScorer interface {
	Relevance(ctx context.Context, query, text string) (RelevanceScore, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Expansion carries rewriter keywords and token usage through the decorator chain.
type Expansion struct {
	Keywords    []string
	TotalTokens int
}

// Ranking carries the indices chosen by the rewriter, unvalidated.
type Ranking struct {
	Indices     []int
	TotalTokens int
}

// RelevanceScore is a model relevance probability in [0, 1] and the tokens it cost.
// It is compared only against its own threshold, never added to the heuristic score.
type RelevanceScore struct {
	Score       float64
	TotalTokens int
}

// RankCandidate is the slice of an item the rewriter sees when ranking.
type RankCandidate struct {
	Title       string
	Description string
}

// ParseRelevanceScore reads the first number in a model answer and clamps it to [0, 1].
func ParseRelevanceScore(answer string) (float64, error) {
	for _, field := range strings.Fields(answer) {
		v, err := strconv.ParseFloat(strings.TrimRight(strings.Trim(field, "\"'`,;:()[]{}*"), "."), 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		return min(max(v, 0), 1), nil
	}
	return 0, fmt.Errorf("relevance answer %q: %w", truncateAnswer(answer), ErrMalformedResponse)
}

func truncateAnswer(s string) string {
	const n = 64
	if len(s) <= n {
		return s
	}
	return s[:n]
}
