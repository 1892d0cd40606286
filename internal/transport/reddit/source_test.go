package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
)

func TestSource_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "learnscout-test/1.0" {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Query().Get("q") != "golang concurrency" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("unexpected query: %v", r.URL.Query())
		}
		_, _ = w.Write([]byte(`{
			"data": {"children": [
				{"data": {
					"title": "Best way to learn Go concurrency?",
					"selftext": "I read the **tour** &amp; want more",
					"permalink": "/r/golang/comments/abc/best_way/",
					"subreddit": "golang",
					"author": "gopher",
					"thumbnail": "self",
					"ups": 42,
					"num_comments": 17,
					"created_utc": 1700000000
				}},
				{"data": {"title": "no permalink"}}
			]}
		}`))
	}))
	defer server.Close()

	s := New(&Config{BaseURL: server.URL, FetchSize: 10, UserAgent: "learnscout-test/1.0", Logger: zap.NewNop()})
	raws, err := s.Search(context.Background(), []string{"golang", "concurrency"}, "go concurrency")
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected 1 post, got %d", len(raws))
	}

	p := raws[0].(item.Post)
	if p.URL != "https://www.reddit.com/r/golang/comments/abc/best_way/" {
		t.Errorf("url = %q", p.URL)
	}
	if p.Upvotes != 42 || p.Comments != 17 || p.Subreddit != "golang" {
		t.Errorf("unexpected post: %+v", p)
	}
	if p.Thumbnail != "" {
		t.Errorf("placeholder thumbnail must be dropped, got %q", p.Thumbnail)
	}
	if p.CreatedAt.Unix() != 1700000000 {
		t.Errorf("created = %v", p.CreatedAt)
	}
}

func TestSource_Search_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := New(&Config{BaseURL: server.URL, Logger: zap.NewNop()})
	if _, err := s.Search(context.Background(), nil, "go"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
