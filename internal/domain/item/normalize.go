package item

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Normalize converts a raw variant into the shared item shape, carrying over every
// field that feeds a badge.
func Normalize(raw Raw) Item {
	switch r := raw.(type) {
	case Repository:
		return Item{
			Platform:    platform.GitHub,
			Type:        TypeRepository,
			Title:       r.FullName,
			Description: r.Description,
			URL:         r.URL,
			Thumbnail:   r.OwnerAvatar,
			PublishedAt: r.CreatedAt,
			Badges:      Badges{Stars: r.Stars, Forks: r.Forks, Language: r.Language},
		}
	case Video:
		kind := r.Kind
		if kind == "" {
			kind = TypeVideo
		}
		return Item{
			Platform:    platform.YouTube,
			Type:        kind,
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Thumbnail:   r.Thumbnail,
			Author:      r.Channel,
			PublishedAt: r.PublishedAt,
			Badges: Badges{
				Views:    r.Views,
				Likes:    r.Likes,
				Duration: FormatDuration(r.Duration),
				Channel:  r.Channel,
			},
		}
	case Post:
		return Item{
			Platform:    platform.Reddit,
			Type:        TypePost,
			Title:       r.Title,
			Description: r.Body,
			URL:         r.URL,
			Thumbnail:   r.Thumbnail,
			Author:      r.Author,
			PublishedAt: r.CreatedAt,
			Badges:      Badges{Upvotes: r.Upvotes, Comments: r.Comments, Subreddit: r.Subreddit},
		}
	case ArchiveDocument:
		return Item{
			Platform:    platform.Archive,
			Type:        TypeDocument,
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Thumbnail:   "https://archive.org/services/img/" + r.Identifier,
			Author:      r.Creator,
			Badges:      Badges{Downloads: r.Downloads, Year: r.Year, MediaType: r.MediaType},
		}
	case Course:
		kind := r.Kind
		if kind == "" {
			kind = TypeCourse
		}
		return Item{
			Platform:    platform.FreeCodeCamp,
			Type:        kind,
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Author:      r.Author,
			PublishedAt: r.PublishedAt,
			Badges:      Badges{Replies: r.Replies, Views: int64(r.Views)},
		}
	default:
		return Item{}
	}
}

// FormatDuration renders a video length as m:ss or h:mm:ss. Zero renders empty.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
