package item

import (
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Scored is a normalized item with its relevance score. Immutable after creation.
type Scored struct {
	item       Item
	raw        Raw
	relevance  float64
	popularity float64
}

// NewScored creates a scored item. raw is kept for secondary relevance checks.
func NewScored(it Item, raw Raw, relevance float64) Scored {
	return Scored{item: it, raw: raw, relevance: relevance, popularity: Popularity(raw)}
}

// Item returns the normalized item.
func (s *Scored) Item() Item { return s.item }

// Raw returns the adapter record the item was built from.
func (s *Scored) Raw() Raw { return s.raw }

// Relevance returns the additive relevance score.
func (s *Scored) Relevance() float64 { return s.relevance }

// Popularity returns the platform's popularity metric (stars, views, upvotes, downloads).
func (s *Scored) Popularity() float64 { return s.popularity }

// Platform returns the source platform.
func (s *Scored) Platform() platform.Platform { return s.item.Platform }

// Type returns the result kind.
func (s *Scored) Type() Type { return s.item.Type }

// URL returns the result link.
func (s *Scored) URL() string { return s.item.URL }

// Title returns the result title.
func (s *Scored) Title() string { return s.item.Title }

// Description returns the result description.
func (s *Scored) Description() string { return s.item.Description }

// Age returns how long ago the item was published, and false when the platform gave no date.
func (s *Scored) Age(now time.Time) (time.Duration, bool) {
	if s.item.PublishedAt.IsZero() {
		return 0, false
	}
	return now.Sub(s.item.PublishedAt), true
}

// Popularity selects the popularity metric for a raw item by its variant.
func Popularity(raw Raw) float64 {
	switch r := raw.(type) {
	case Repository:
		return float64(r.Stars)
	case Video:
		return float64(r.Views)
	case Post:
		return float64(r.Upvotes)
	case ArchiveDocument:
		return float64(r.Downloads)
	case Course:
		return float64(r.Views)
	default:
		return 0
	}
}
