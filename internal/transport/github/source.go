// Package github is the GitHub repository search adapter.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/version"
)

const (
	// DefaultFetchSize is the number of repositories requested per search.
	DefaultFetchSize = 30
	// maxQueryTerms keeps the search string short; GitHub ANDs every term.
	maxQueryTerms = 4
)

// Config holds the adapter settings.
type Config struct {
	Token     string
	BaseURL   string
	FetchSize int
	Logger    *zap.Logger
}

// Source searches GitHub repositories sorted by stars.
type Source struct {
	client    *github.Client
	fetchSize int
	logger    *zap.Logger
}

// New creates a GitHub adapter. An empty token uses unauthenticated access.
func New(ctx context.Context, cfg *Config) (*Source, error) {
	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(hc)
	client.UserAgent = version.UserAgent()
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = base
	}

	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}

	return &Source{client: client, fetchSize: fetchSize, logger: cfg.Logger}, nil
}

// Search implements aggregate.Source.
func (s *Source) Search(ctx context.Context, keywords []string, query string) ([]item.Raw, error) {
	q := searchString(keywords, query)

	result, _, err := s.client.Search.Repositories(ctx, q, &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: s.fetchSize},
	})
	if err != nil {
		return nil, mapError(ctx, err)
	}

	out := make([]item.Raw, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		if r == nil || r.GetHTMLURL() == "" {
			continue
		}
		out = append(out, item.Repository{
			FullName:    r.GetFullName(),
			Description: textutil.Clean(r.GetDescription()),
			URL:         r.GetHTMLURL(),
			Homepage:    r.GetHomepage(),
			Language:    r.GetLanguage(),
			OwnerAvatar: r.GetOwner().GetAvatarURL(),
			Stars:       r.GetStargazersCount(),
			Forks:       r.GetForksCount(),
			Topics:      r.Topics,
			Fork:        r.GetFork(),
			Archived:    r.GetArchived(),
			CreatedAt:   r.GetCreatedAt().Time,
		})
	}
	return out, nil
}

// Readme implements relevance.ReadmeFetcher. A repository without a README returns
// domain.ErrNotFound, so the semantic check cannot be made and the item is accepted.
func (s *Source) Readme(ctx context.Context, fullName string) (string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", fmt.Errorf("readme %q: %w", fullName, domain.ErrNotFound)
	}

	content, _, err := s.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("readme %s: %w", fullName, domain.ErrNotFound)
		}
		return "", mapError(ctx, err)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme: %w: %w", domain.ErrMalformedResponse, err)
	}
	return text, nil
}

func searchString(keywords []string, query string) string {
	if len(keywords) == 0 {
		return query
	}
	return strings.Join(keywords[:min(len(keywords), maxQueryTerms)], " ")
}

func mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("github: %w", ctxErr)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.UpstreamError{Service: "github", StatusCode: http.StatusTooManyRequests, Body: rateErr.Message}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &domain.UpstreamError{Service: "github", StatusCode: http.StatusTooManyRequests, Body: abuseErr.Message}
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &domain.UpstreamError{Service: "github", StatusCode: ghErr.Response.StatusCode, Body: ghErr.Message}
	}
	return fmt.Errorf("github: %w: %w", domain.ErrSourceUnavailable, err)
}
