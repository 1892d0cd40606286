package freecodecamp

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
)

//go:embed curriculum.yaml
var curriculumYAML []byte

// Entry is one curriculum catalog record.
type Entry struct {
	Title       string   `yaml:"title"`
	Kind        string   `yaml:"kind"`
	URL         string   `yaml:"url"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// Catalog is the embedded freeCodeCamp curriculum, matched by keyword.
type Catalog struct {
	entries []Entry
}

// LoadCatalog parses the embedded curriculum.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(curriculumYAML)
}

// ParseCatalog parses a curriculum document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	for i, e := range doc.Entries {
		if e.Title == "" || e.URL == "" {
			return nil, fmt.Errorf("curriculum entry %d: title and url are required", i)
		}
		for j, k := range e.Keywords {
			doc.Entries[i].Keywords[j] = strings.ToLower(k)
		}
	}
	return &Catalog{entries: doc.Entries}, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Match returns courses whose keywords contain any of the terms, most matches first.
func (c *Catalog) Match(terms []string) []item.Course {
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want[t] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}

	type hit struct {
		entry Entry
		n     int
	}
	var hits []hit
	for _, e := range c.entries {
		n := 0
		for _, k := range e.Keywords {
			if _, ok := want[k]; ok {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, hit{entry: e, n: n})
		}
	}

	// ties keep catalog order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].n > hits[j].n })

	out := make([]item.Course, len(hits))
	for i, h := range hits {
		kind := item.TypeCourse
		if h.entry.Kind == string(item.TypeArticle) {
			kind = item.TypeArticle
		}
		out[i] = item.Course{
			Kind:        kind,
			Title:       h.entry.Title,
			Description: h.entry.Description,
			URL:         h.entry.URL,
			Author:      "freeCodeCamp",
			Keywords:    h.entry.Keywords,
		}
	}
	return out
}
