// Package web fetches and summarizes arbitrary HTML pages for link previews.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
)

// DefaultMaxBody caps the HTML read for a preview.
const DefaultMaxBody = 1 << 20

// minParagraph skips cookie banners and one-word paragraphs when no meta description exists.
const minParagraph = 40

// Fetcher downloads a page and extracts its preview card.
type Fetcher struct {
	http *upstream.Client
}

// NewFetcher creates a preview fetcher.
func NewFetcher(opts ...upstream.Option) *Fetcher {
	opts = append([]upstream.Option{upstream.WithMaxBody(DefaultMaxBody)}, opts...)
	return &Fetcher{http: upstream.New("preview", opts...)}
}

// Fetch implements preview.PageFetcher.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (domain.Preview, error) {
	body, err := f.http.Get(ctx, pageURL, http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		return domain.Preview{}, fmt.Errorf("fetch preview: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return domain.Preview{}, fmt.Errorf("parse preview: %w: %w", domain.ErrMalformedResponse, err)
	}

	p := Extract(doc)
	p.URL = pageURL
	if p.Image != "" {
		p.Image = resolve(pageURL, p.Image)
	}
	return p, nil
}

// Extract reads title, description, image and site name from a parsed document.
// Open Graph values win over plain meta tags; the first substantial paragraph is the last resort.
func Extract(doc *html.Node) domain.Preview {
	var (
		p         domain.Preview
		title     string
		metaDesc  string
		ogDesc    string
		paragraph string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer:
				return
			case atom.Title:
				if title == "" {
					title = text(n)
				}
				return
			case atom.Meta:
				key, content := metaPair(n)
				switch key {
				case "og:title":
					p.Title = content
				case "og:description":
					ogDesc = content
				case "description":
					metaDesc = content
				case "og:image":
					p.Image = content
				case "og:site_name":
					p.SiteName = content
				}
				return
			case atom.P:
				if paragraph == "" {
					if t := text(n); len(t) >= minParagraph {
						paragraph = t
					}
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if p.Title == "" {
		p.Title = title
	}
	p.Title = textutil.Clean(p.Title)
	p.SiteName = textutil.Clean(p.SiteName)
	for _, d := range []string{ogDesc, metaDesc, paragraph} {
		if d = textutil.Clean(d); d != "" {
			p.Description = d
			break
		}
	}
	return p
}

func metaPair(n *html.Node) (key, content string) {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = a.Val
		}
	}
	return key, content
}

func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
