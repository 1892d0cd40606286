package item

import (
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

// Raw is a platform record as returned by a source adapter.
// The set of variants is closed: Repository, Video, Post, ArchiveDocument, Course.
// Adapters own the values they return; nothing downstream mutates them.
type Raw interface {
	Platform() platform.Platform
	isRaw()
}

// Repository is a GitHub repository search hit.
type Repository struct {
	FullName    string
	Description string
	URL         string
	Homepage    string
	Language    string
	OwnerAvatar string
	Stars       int
	Forks       int
	Topics      []string
	Fork        bool
	Archived    bool
	CreatedAt   time.Time
}

// Video is a YouTube video or playlist.
type Video struct {
	ID          string
	Kind        Type // TypeVideo or TypePlaylist
	Title       string
	Description string
	URL         string
	Channel     string
	Thumbnail   string
	Views       int64
	Likes       int64
	Duration    time.Duration
	PublishedAt time.Time
}

// Post is a Reddit submission.
type Post struct {
	Title     string
	Body      string
	URL       string
	Subreddit string
	Author    string
	Thumbnail string
	Upvotes   int
	Comments  int
	NSFW      bool
	CreatedAt time.Time
}

// ArchiveDocument is an Internet Archive item.
type ArchiveDocument struct {
	Identifier  string
	Title       string
	Description string
	URL         string
	MediaType   string
	Creator     string
	Subjects    []string
	Downloads   int64
	Year        int
}

// Course is a freeCodeCamp curriculum entry, news article or forum topic.
type Course struct {
	Kind        Type // TypeCourse, TypeArticle or TypeForum
	Title       string
	Description string
	URL         string
	Author      string
	Keywords    []string
	Replies     int
	Views       int
	PublishedAt time.Time
}

func (Repository) Platform() platform.Platform      { return platform.GitHub }
func (Video) Platform() platform.Platform           { return platform.YouTube }
func (Post) Platform() platform.Platform            { return platform.Reddit }
func (ArchiveDocument) Platform() platform.Platform { return platform.Archive }
func (Course) Platform() platform.Platform          { return platform.FreeCodeCamp }

func (Repository) isRaw()      {}
func (Video) isRaw()           {}
func (Post) isRaw()            {}
func (ArchiveDocument) isRaw() {}
func (Course) isRaw()          {}
