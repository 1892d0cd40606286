// Package openai implements the query rewriter and relevance scorer over an OpenAI-compatible chat API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

const (
	expandPrompt = `Extract the main topics and search keywords from a learning query.
Answer with JSON only: {"keywords": ["..."]}. At most %d keywords, single words or short technical terms, lowercase.`

	rankPrompt = `You rank learning resources for a query. Candidates are numbered from 0.
Answer with JSON only: {"indices": [...]} holding the %d most useful candidate numbers, best first.`

	relevancePrompt = `Analyze if this content is relevant to the query "%s". Content: "%s". ` +
		`Return only a number between 0 and 1 representing relevance score.`
)

// DefaultMaxKeywords caps the expansion size.
const DefaultMaxKeywords = 10

// Rewriter is a query rewriter and relevance scorer using the OpenAI-compatible API.
type Rewriter struct {
	client      *openai.Client
	model       string
	maxKeywords int
	user        string
	provider    string
	logger      *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxKeywords int
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewRewriter creates an OpenAI-compatible rewriter.
func NewRewriter(cfg *Config) *Rewriter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	return &Rewriter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxKeywords: maxKeywords,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Expand implements domain.Rewriter.
func (r *Rewriter) Expand(ctx context.Context, query string) (domain.Expansion, error) {
	content, tokens, err := r.complete(ctx, "expand", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(expandPrompt, r.maxKeywords)},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}, true)
	if err != nil {
		return domain.Expansion{}, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(stripFence(content)), &parsed); err != nil {
		r.countError("expand", "malformed_response")
		return domain.Expansion{}, fmt.Errorf("parse keywords: %w: %w", domain.ErrMalformedResponse, err)
	}

	keywords := make([]string, 0, len(parsed.Keywords))
	for _, k := range parsed.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
		if len(keywords) == r.maxKeywords {
			break
		}
	}
	return domain.Expansion{Keywords: keywords, TotalTokens: tokens}, nil
}

// Rank implements domain.Rewriter. Indices are returned as the model wrote them.
func (r *Rewriter) Rank(
	ctx context.Context, query string, candidates []domain.RankCandidate, topN int,
) (domain.Ranking, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s: %s\n", i, c.Title, c.Description)
	}

	content, tokens, err := r.complete(ctx, "rank", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(rankPrompt, topN)},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	}, true)
	if err != nil {
		return domain.Ranking{}, err
	}

	var parsed struct {
		Indices []int `json:"indices"`
	}
	if err := json.Unmarshal([]byte(stripFence(content)), &parsed); err != nil {
		r.countError("rank", "malformed_response")
		return domain.Ranking{}, fmt.Errorf("parse indices: %w: %w", domain.ErrMalformedResponse, err)
	}
	return domain.Ranking{Indices: parsed.Indices, TotalTokens: tokens}, nil
}

// Relevance implements domain.SemanticScorer.
func (r *Rewriter) Relevance(ctx context.Context, query, text string) (domain.RelevanceScore, error) {
	content, tokens, err := r.complete(ctx, "relevance", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(relevancePrompt, query, text)},
	}, false)
	if err != nil {
		return domain.RelevanceScore{}, err
	}

	score, err := domain.ParseRelevanceScore(content)
	if err != nil {
		r.countError("relevance", "malformed_response")
		return domain.RelevanceScore{}, fmt.Errorf("parse relevance: %w", err)
	}
	return domain.RelevanceScore{Score: score, TotalTokens: tokens}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Rewriter) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", parseAPIError(err))
	}
	return nil
}

func (r *Rewriter) complete(
	ctx context.Context, op string, messages []openai.ChatCompletionMessage, jsonMode bool,
) (string, int, error) {
	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: 0.2,
		User:        r.user,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.RewriterRequestsTotal.WithLabelValues(r.provider, op, "error").Inc()
		r.countError(op, "api_error")
		return "", 0, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.RewriterRequestsTotal.WithLabelValues(r.provider, op, "error").Inc()
		r.countError(op, "empty_response")
		return "", 0, fmt.Errorf("empty %s response: %w", op, domain.ErrMalformedResponse)
	}

	metrics.RewriterRequestsTotal.WithLabelValues(r.provider, op, "success").Inc()
	metrics.RewriterRequestDuration.WithLabelValues(r.provider, op).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.RewriterTokensTotal.WithLabelValues(r.provider, op).Add(float64(totalTokens))
	}

	return resp.Choices[0].Message.Content, totalTokens, nil
}

func (r *Rewriter) countError(op, kind string) {
	metrics.RewriterErrorsTotal.WithLabelValues(r.provider, op, kind).Inc()
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
