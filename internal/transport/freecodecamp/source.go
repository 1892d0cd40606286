// Package freecodecamp is the freeCodeCamp adapter: the embedded curriculum catalog plus forum search.
package freecodecamp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
)

const (
	// DefaultForumURL is the freeCodeCamp Discourse forum.
	DefaultForumURL = "https://forum.freecodecamp.org"
	// DefaultFetchSize caps the forum topics kept per search.
	DefaultFetchSize = 20
)

// Config holds the adapter settings.
type Config struct {
	ForumURL  string
	FetchSize int
	Catalog   *Catalog
	Logger    *zap.Logger
	Options   []upstream.Option
}

// Source combines catalog matches with forum topics.
type Source struct {
	http      *upstream.Client
	catalog   *Catalog
	forumURL  string
	fetchSize int
	logger    *zap.Logger
}

// New creates a freeCodeCamp adapter. A nil Catalog loads the embedded curriculum.
func New(cfg *Config) (*Source, error) {
	catalog := cfg.Catalog
	if catalog == nil {
		var err error
		if catalog, err = LoadCatalog(); err != nil {
			return nil, err
		}
	}
	forum := cfg.ForumURL
	if forum == "" {
		forum = DefaultForumURL
	}
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	return &Source{
		http:      upstream.New("freecodecamp", cfg.Options...),
		catalog:   catalog,
		forumURL:  strings.TrimSuffix(forum, "/"),
		fetchSize: fetchSize,
		logger:    cfg.Logger,
	}, nil
}

type forumResponse struct {
	Topics []struct {
		ID         int      `json:"id"`
		Title      string   `json:"title"`
		Slug       string   `json:"slug"`
		PostsCount int      `json:"posts_count"`
		ReplyCount int      `json:"reply_count"`
		Views      int      `json:"views"`
		CreatedAt  string   `json:"created_at"`
		Tags       []string `json:"tags"`
	} `json:"topics"`
	Posts []struct {
		TopicID  int    `json:"topic_id"`
		Username string `json:"username"`
		Blurb    string `json:"blurb"`
	} `json:"posts"`
}

// Search implements aggregate.Source. Catalog hits come first; a forum failure is
// reported only when the catalog had nothing either.
func (s *Source) Search(ctx context.Context, keywords []string, q string) ([]item.Raw, error) {
	terms := keywords
	if len(terms) == 0 {
		terms = query.Split(q)
	}

	var out []item.Raw
	for _, c := range s.catalog.Match(terms) {
		out = append(out, c)
	}

	topics, err := s.forum(ctx, strings.Join(terms, " "))
	if err != nil {
		if len(out) == 0 {
			return nil, err
		}
		s.logger.Warn("freeCodeCamp forum unavailable, returning catalog matches",
			zap.Int("catalog_matches", len(out)), zap.Error(err))
		return out, nil
	}
	for _, t := range topics {
		out = append(out, t)
	}
	return out, nil
}

func (s *Source) forum(ctx context.Context, terms string) ([]item.Course, error) {
	params := url.Values{}
	params.Set("q", terms)

	var fr forumResponse
	if err := s.http.GetJSON(ctx, s.forumURL+"/search.json?"+params.Encode(), nil, &fr); err != nil {
		return nil, fmt.Errorf("freecodecamp forum search: %w", err)
	}

	type firstPost struct{ author, blurb string }
	posts := make(map[int]firstPost, len(fr.Posts))
	for _, p := range fr.Posts {
		if _, ok := posts[p.TopicID]; !ok {
			posts[p.TopicID] = firstPost{author: p.Username, blurb: p.Blurb}
		}
	}

	out := make([]item.Course, 0, min(len(fr.Topics), s.fetchSize))
	for _, t := range fr.Topics {
		if len(out) == s.fetchSize {
			break
		}
		if t.ID == 0 || t.Slug == "" {
			continue
		}
		p := posts[t.ID]
		replies := t.ReplyCount
		if replies == 0 && t.PostsCount > 0 {
			replies = t.PostsCount - 1
		}
		c := item.Course{
			Kind:        item.TypeForum,
			Title:       textutil.Clean(t.Title),
			Description: textutil.Clean(p.blurb),
			URL:         s.forumURL + "/t/" + t.Slug + "/" + strconv.Itoa(t.ID),
			Author:      p.author,
			Keywords:    t.Tags,
			Replies:     replies,
			Views:       t.Views,
		}
		if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			c.PublishedAt = ts
		}
		out = append(out, c)
	}
	return out, nil
}
