package client

import "time"

// Platform filter values accepted by Search.
const (
	PlatformAll          = "all"
	PlatformGitHub       = "github"
	PlatformYouTube      = "youtube"
	PlatformReddit       = "reddit"
	PlatformArchive      = "archive"
	PlatformFreeCodeCamp = "freecodecamp"
)

// Badges are the per-platform counters shown next to a result.
type Badges struct {
	Stars     int    `json:"stars,omitempty"`
	Forks     int    `json:"forks,omitempty"`
	Language  string `json:"language,omitempty"`
	Views     int64  `json:"views,omitempty"`
	Likes     int64  `json:"likes,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Upvotes   int    `json:"upvotes,omitempty"`
	Comments  int    `json:"numComments,omitempty"`
	Subreddit string `json:"subreddit,omitempty"`
	Downloads int64  `json:"downloads,omitempty"`
	Year      int    `json:"year,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Replies   int    `json:"replies,omitempty"`
}

// Item is one search result. Badge fields are inlined in the JSON object.
type Item struct {
	Platform    string     `json:"platform"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Relevance   float64    `json:"relevance"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Badges
}

// SearchResult is a ranked result list with request metadata from response headers.
type SearchResult struct {
	Items          []Item
	RewriterTokens int
	FailedSources  []string
}

// Tags is a resource's tag set and the globally popular tags.
type Tags struct {
	Tags        []string `json:"tags"`
	PopularTags []string `json:"popularTags"`
}

// Preview is a link summary card.
type Preview struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Image    string `json:"image,omitempty"`
	SiteName string `json:"siteName,omitempty"`
}

// ProviderUsage is the token consumption of one language model provider.
type ProviderUsage struct {
	Provider  string    `json:"provider"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Limit     int64     `json:"limit"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"`
	Exhausted bool      `json:"exhausted"`
}

// Usage is the token report for a period.
type Usage struct {
	Period    string          `json:"period"`
	Providers []ProviderUsage `json:"providers"`
}

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status  string            `json:"status"` // "ok" or "degraded"
	Checks  map[string]string `json:"checks"`
	Sources []string          `json:"sources"`
}
