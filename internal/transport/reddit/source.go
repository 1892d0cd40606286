// Package reddit is the Reddit search adapter.
package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
)

const (
	// DefaultBaseURL is the public Reddit endpoint.
	DefaultBaseURL = "https://www.reddit.com"
	// DefaultFetchSize is the number of posts requested per search.
	DefaultFetchSize = 25
)

// Config holds the adapter settings. Reddit rejects requests without a descriptive User-Agent.
type Config struct {
	BaseURL   string
	FetchSize int
	UserAgent string
	Logger    *zap.Logger
	Options   []upstream.Option
}

// Source searches Reddit submissions.
type Source struct {
	http      *upstream.Client
	baseURL   string
	fetchSize int
	logger    *zap.Logger
}

// New creates a Reddit adapter.
func New(cfg *Config) *Source {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	opts := append([]upstream.Option{upstream.WithUserAgent(cfg.UserAgent)}, cfg.Options...)
	return &Source{
		http:      upstream.New("reddit", opts...),
		baseURL:   strings.TrimSuffix(base, "/"),
		fetchSize: fetchSize,
		logger:    cfg.Logger,
	}
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				Subreddit   string  `json:"subreddit"`
				Author      string  `json:"author"`
				Thumbnail   string  `json:"thumbnail"`
				Ups         int     `json:"ups"`
				NumComments int     `json:"num_comments"`
				Over18      bool    `json:"over_18"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search implements aggregate.Source.
func (s *Source) Search(ctx context.Context, keywords []string, query string) ([]item.Raw, error) {
	q := query
	if len(keywords) > 0 {
		q = strings.Join(keywords, " ")
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(s.fetchSize))
	params.Set("sort", "relevance")
	params.Set("type", "link")
	params.Set("raw_json", "1")

	var l listing
	if err := s.http.GetJSON(ctx, s.baseURL+"/search.json?"+params.Encode(), nil, &l); err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}

	out := make([]item.Raw, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		if d.Permalink == "" {
			continue
		}
		post := item.Post{
			Title:     textutil.Clean(d.Title),
			Body:      textutil.Clean(d.Selftext),
			URL:       DefaultBaseURL + d.Permalink,
			Subreddit: d.Subreddit,
			Author:    d.Author,
			Upvotes:   d.Ups,
			Comments:  d.NumComments,
			NSFW:      d.Over18,
		}
		if strings.HasPrefix(d.Thumbnail, "http") {
			post.Thumbnail = d.Thumbnail
		}
		if d.CreatedUTC > 0 {
			post.CreatedAt = time.Unix(int64(d.CreatedUTC), 0).UTC()
		}
		out = append(out, post)
	}
	return out, nil
}
