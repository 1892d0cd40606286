package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

const page = `<!doctype html>
<html><head>
<title>  Go by Example </title>
<meta name="description" content="Hands-on &amp; annotated example programs.">
<meta property="og:image" content="/img/og.png">
<meta property="og:site_name" content="gobyexample">
<script>var x = "<p>not a paragraph</p>";</script>
</head><body>
<nav><p>Navigation links should never become the description text.</p></nav>
<p>Go is an open source programming language designed for building simple, fast, and reliable software.</p>
</body></html>`

func TestExtract_MetaDescription(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	p := Extract(doc)

	if p.Title != "Go by Example" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Description != "Hands-on & annotated example programs." {
		t.Errorf("description = %q", p.Description)
	}
	if p.SiteName != "gobyexample" || p.Image != "/img/og.png" {
		t.Errorf("unexpected preview: %+v", p)
	}
}

func TestExtract_OpenGraphWins(t *testing.T) {
	doc, _ := html.Parse(strings.NewReader(`<html><head>
		<title>Plain</title>
		<meta property="og:title" content="OG Title">
		<meta name="description" content="meta">
		<meta property="og:description" content="og">
	</head></html>`))
	p := Extract(doc)
	if p.Title != "OG Title" || p.Description != "og" {
		t.Errorf("unexpected preview: %+v", p)
	}
}

func TestExtract_ParagraphFallback(t *testing.T) {
	doc, _ := html.Parse(strings.NewReader(`<html><body>
		<nav><p>Skip this navigation paragraph that is long enough to count.</p></nav>
		<p>Too short.</p>
		<p>This paragraph is the <b>first</b> one long enough to describe the page.</p>
	</body></html>`))
	p := Extract(doc)
	if p.Description != "This paragraph is the first one long enough to describe the page." {
		t.Errorf("description = %q", p.Description)
	}
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept"), "text/html") {
			t.Errorf("unexpected accept: %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	p, err := NewFetcher().Fetch(context.Background(), server.URL+"/docs/")
	if err != nil {
		t.Fatal(err)
	}
	if p.URL != server.URL+"/docs/" {
		t.Errorf("url = %q", p.URL)
	}
	if p.Image != server.URL+"/img/og.png" {
		t.Errorf("image not resolved: %q", p.Image)
	}
}

func TestFetcher_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if _, err := NewFetcher().Fetch(context.Background(), server.URL); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
