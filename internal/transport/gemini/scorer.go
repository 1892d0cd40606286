// Package gemini implements the semantic relevance scorer over the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/metrics"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gemini-2.0-flash"

const relevancePrompt = `Analyze if this content is relevant to the query "%s". Content: "%s". ` +
	`Return only a number between 0 and 1 representing relevance score.`

// Config holds the Gemini scorer settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// Scorer rates relevance with a Gemini model.
type Scorer struct {
	client   *genai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// NewScorer creates a Gemini relevance scorer.
func NewScorer(ctx context.Context, cfg *Config) (*Scorer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "gemini"
	}

	return &Scorer{client: client, model: model, provider: provider, logger: cfg.Logger}, nil
}

// Relevance implements domain.SemanticScorer.
func (s *Scorer) Relevance(ctx context.Context, query, text string) (domain.RelevanceScore, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(relevancePrompt, query, text), genai.RoleUser),
	}
	temperature := float32(0)

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.RewriterRequestsTotal.WithLabelValues(s.provider, "relevance", "error").Inc()
		metrics.RewriterErrorsTotal.WithLabelValues(s.provider, "relevance", "api_error").Inc()
		return domain.RelevanceScore{}, parseAPIError(err)
	}

	metrics.RewriterRequestsTotal.WithLabelValues(s.provider, "relevance", "success").Inc()
	metrics.RewriterRequestDuration.WithLabelValues(s.provider, "relevance").Observe(duration.Seconds())

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
		metrics.RewriterTokensTotal.WithLabelValues(s.provider, "relevance").Add(float64(tokens))
	}

	score, err := domain.ParseRelevanceScore(resp.Text())
	if err != nil {
		metrics.RewriterErrorsTotal.WithLabelValues(s.provider, "relevance", "malformed_response").Inc()
		return domain.RelevanceScore{}, fmt.Errorf("parse relevance: %w", err)
	}
	return domain.RelevanceScore{Score: score, TotalTokens: tokens}, nil
}

func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		sentinel := domain.ErrRewriterUnavailable
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			sentinel = fmt.Errorf("%w: %w", domain.ErrRewriterUnavailable, domain.ErrRateLimited)
		}
		return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message, sentinel)
	}
	return fmt.Errorf("gemini request failed: %w: %w", domain.ErrRewriterUnavailable, err)
}
