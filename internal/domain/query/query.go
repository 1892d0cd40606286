package query

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// MaxLength caps the accepted query length in runes.
const MaxLength = 256

// Query is a validated user search request. Immutable.
type Query struct {
	text   string
	filter string
}

// New validates and creates a query. An empty filter means all platforms.
func New(text, filter string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, domain.ErrInvalidQuery
	}
	if len([]rune(text)) > MaxLength {
		return Query{}, domain.ErrInvalidQuery
	}
	if !platform.IsValidFilter(filter) {
		return Query{}, domain.ErrInvalidPlatform
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = platform.All
	}
	return Query{text: text, filter: filter}, nil
}

// Text returns the raw query string.
func (q Query) Text() string { return q.text }

// Filter returns the platform filter, "all" or a platform name.
func (q Query) Filter() string { return q.filter }

// Keywords normalizes terms: lowercase, trimmed of surrounding punctuation,
// empty terms dropped, duplicates removed with first-occurrence order kept.
func Keywords(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		k := normalizeTerm(t)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Split is the deterministic keyword fallback: whitespace split of the raw query, normalized.
func Split(text string) []string {
	return Keywords(strings.Fields(text))
}

func normalizeTerm(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.TrimFunc(t, func(r rune) bool {
		// keep c++, c#, .net style terms intact
		if r == '+' || r == '#' {
			return false
		}
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
