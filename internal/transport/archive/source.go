// Package archive is the Internet Archive advanced search adapter.
package archive

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
)

const (
	// DefaultBaseURL is the public Archive endpoint.
	DefaultBaseURL = "https://archive.org"
	// DefaultFetchSize is the number of documents requested per search.
	DefaultFetchSize = 25
)

var fields = []string{"identifier", "title", "description", "mediatype", "creator", "subject", "downloads", "year"}

// Config holds the adapter settings.
type Config struct {
	BaseURL   string
	FetchSize int
	Logger    *zap.Logger
	Options   []upstream.Option
}

// Source searches Internet Archive texts and videos.
type Source struct {
	http      *upstream.Client
	baseURL   string
	fetchSize int
	logger    *zap.Logger
}

// New creates an Archive adapter.
func New(cfg *Config) *Source {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	return &Source{
		http:      upstream.New("archive", cfg.Options...),
		baseURL:   strings.TrimSuffix(base, "/"),
		fetchSize: fetchSize,
		logger:    cfg.Logger,
	}
}

// Search implements aggregate.Source.
func (s *Source) Search(ctx context.Context, keywords []string, query string) ([]item.Raw, error) {
	terms := query
	if len(keywords) > 0 {
		terms = strings.Join(keywords, " ")
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("(%s) AND mediatype:(texts OR movies)", terms))
	for _, f := range fields {
		params.Add("fl[]", f)
	}
	params.Set("sort[]", "downloads desc")
	params.Set("rows", strconv.Itoa(s.fetchSize))
	params.Set("page", "1")
	params.Set("output", "json")

	body, err := s.http.Get(ctx, s.baseURL+"/advancedsearch.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("archive search: %w", domain.ErrMalformedResponse)
	}

	docs := gjson.GetBytes(body, "response.docs").Array()
	out := make([]item.Raw, 0, len(docs))
	for _, doc := range docs {
		id := doc.Get("identifier").String()
		if id == "" {
			continue
		}
		out = append(out, item.ArchiveDocument{
			Identifier:  id,
			Title:       textutil.Clean(first(doc.Get("title"))),
			Description: textutil.Clean(first(doc.Get("description"))),
			URL:         "https://archive.org/details/" + url.PathEscape(id),
			MediaType:   doc.Get("mediatype").String(),
			Creator:     textutil.Clean(first(doc.Get("creator"))),
			Subjects:    all(doc.Get("subject")),
			Downloads:   doc.Get("downloads").Int(),
			Year:        year(doc.Get("year")),
		})
	}
	return out, nil
}

// first returns a scalar field or the first element of a repeated one.
func first(r gjson.Result) string {
	if r.IsArray() {
		arr := r.Array()
		if len(arr) == 0 {
			return ""
		}
		return arr[0].String()
	}
	return r.String()
}

// all returns every value of a field that may be scalar, repeated, or ";"-joined.
func all(r gjson.Result) []string {
	var out []string
	add := func(s string) {
		for _, part := range strings.Split(s, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if r.IsArray() {
		for _, v := range r.Array() {
			add(v.String())
		}
		return out
	}
	if r.Exists() {
		add(r.String())
	}
	return out
}

// year accepts both numeric and "1999" or "1999-2001" string years.
func year(r gjson.Result) int {
	if r.Type == gjson.Number {
		return int(r.Int())
	}
	s := first(r)
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y
		}
	}
	return 0
}
