package item

import (
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Type is the presentation kind of a result.
type Type string

// Result kinds.
const (
	TypeRepository Type = "repository"
	TypeVideo      Type = "video"
	TypePlaylist   Type = "playlist"
	TypePost       Type = "post"
	TypeDocument   Type = "document"
	TypeCourse     Type = "course"
	TypeArticle    Type = "article"
	TypeForum      Type = "forum"
)

// Priority orders kinds for the local ranking fallback. Lower sorts first:
// structured courses and playlists, then standalone references, then single videos and threads.
func (t Type) Priority() int {
	switch t {
	case TypeCourse, TypePlaylist:
		return 0
	case TypeRepository, TypeArticle, TypeDocument:
		return 1
	default:
		return 2
	}
}

// Badges holds the per-platform fields the UI renders next to a result.
// Only the fields of the item's platform are set.
type Badges struct {
	Stars     int
	Forks     int
	Language  string
	Views     int64
	Likes     int64
	Duration  string
	Channel   string
	Upvotes   int
	Comments  int
	Subreddit string
	Downloads int64
	Year      int
	MediaType string
	Replies   int
}

// Item is the platform-independent shape every source is converted to.
type Item struct {
	Platform    platform.Platform
	Type        Type
	Title       string
	Description string
	URL         string
	Thumbnail   string
	Author      string
	PublishedAt time.Time
	Badges      Badges
}
