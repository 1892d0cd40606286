package freecodecamp

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

const forumBody = `{
	"posts": [
		{"topic_id": 11, "username": "camper", "blurb": "How do <b>hooks</b> work with state?"},
		{"topic_id": 11, "username": "other", "blurb": "second post"}
	],
	"topics": [
		{"id": 11, "title": "React hooks question", "slug": "react-hooks-question", "posts_count": 4,
		 "views": 300, "created_at": "2024-05-01T10:00:00.000Z", "tags": ["react"]},
		{"id": 0, "title": "broken"}
	]
}`

func TestCatalog_Embedded(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded curriculum is empty")
	}
}

func TestCatalog_Match(t *testing.T) {
	c, err := ParseCatalog([]byte(`
entries:
  - {title: Python Basics, kind: course, url: "https://a", keywords: [Python]}
  - {title: Data Analysis, kind: course, url: "https://b", keywords: [python, pandas]}
  - {title: Go News, kind: article, url: "https://c", keywords: [go]}
`))
	if err != nil {
		t.Fatal(err)
	}

	got := c.Match([]string{"python", "Pandas"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Title != "Data Analysis" {
		t.Errorf("expected the two-keyword match first, got %q", got[0].Title)
	}

	article := c.Match([]string{"go"})
	if len(article) != 1 || article[0].Kind != item.TypeArticle {
		t.Errorf("unexpected article match: %+v", article)
	}

	if c.Match(nil) != nil {
		t.Error("expected no matches without terms")
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	if _, err := ParseCatalog([]byte(`entries: [{title: "no url"}]`)); err == nil {
		t.Error("expected error for entry without url")
	}
	if _, err := ParseCatalog([]byte(`entries: {`)); err == nil {
		t.Error("expected YAML error")
	}
}

func TestSource_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" || r.URL.Query().Get("q") != "react hooks" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		_, _ = w.Write([]byte(forumBody))
	}))
	defer server.Close()

	s, err := New(&Config{ForumURL: server.URL, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}

	raws, err := s.Search(context.Background(), []string{"react", "hooks"}, "react hooks")
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) < 2 {
		t.Fatalf("expected catalog and forum results, got %d", len(raws))
	}
	if c := raws[0].(item.Course); c.Kind != item.TypeCourse {
		t.Errorf("expected catalog course first, got %+v", c)
	}

	forum := raws[len(raws)-1].(item.Course)
	if forum.Kind != item.TypeForum {
		t.Fatalf("expected forum topic last, got %+v", forum)
	}
	if forum.URL != server.URL+"/t/react-hooks-question/11" {
		t.Errorf("url = %q", forum.URL)
	}
	if forum.Replies != 3 || forum.Views != 300 || forum.Author != "camper" {
		t.Errorf("unexpected topic: %+v", forum)
	}
	if forum.Description != "How do hooks work with state?" {
		t.Errorf("description = %q", forum.Description)
	}
	if forum.PublishedAt.IsZero() {
		t.Error("expected created_at to be parsed")
	}
}

func TestSource_Search_ForumDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s, err := New(&Config{ForumURL: server.URL, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}

	raws, err := s.Search(context.Background(), []string{"python"}, "python")
	if err != nil {
		t.Fatalf("catalog matches must survive a forum failure, got %v", err)
	}
	if len(raws) == 0 {
		t.Fatal("expected catalog matches")
	}

	if _, err := s.Search(context.Background(), []string{"zzzunknown"}, "zzzunknown"); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable without catalog matches, got %v", err)
	}
}
