// Package youtube is the YouTube Data API v3 adapter.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
)

const (
	// DefaultBaseURL is the public Data API endpoint.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	// DefaultFetchSize is the number of search hits requested; the API caps it at 50.
	DefaultFetchSize = 25
	maxFetchSize     = 50
)

// Config holds the adapter settings.
type Config struct {
	APIKey    string
	BaseURL   string
	FetchSize int
	Logger    *zap.Logger
	Options   []upstream.Option
}

// Source searches videos and playlists, then enriches videos with statistics.
type Source struct {
	http      *upstream.Client
	apiKey    string
	baseURL   string
	fetchSize int
	logger    *zap.Logger
}

// New creates a YouTube adapter.
func New(cfg *Config) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	return &Source{
		http:      upstream.New("youtube", cfg.Options...),
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(base, "/"),
		fetchSize: min(fetchSize, maxFetchSize),
		logger:    cfg.Logger,
	}, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			Kind       string `json:"kind"`
			VideoID    string `json:"videoId"`
			PlaylistID string `json:"playlistId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search implements aggregate.Source.
func (s *Source) Search(ctx context.Context, keywords []string, query string) ([]item.Raw, error) {
	q := query
	if len(keywords) > 0 {
		q = strings.Join(keywords, " ")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video,playlist")
	params.Set("q", q)
	params.Set("maxResults", strconv.Itoa(s.fetchSize))
	params.Set("safeSearch", "moderate")
	params.Set("key", s.apiKey)

	var sr searchResponse
	if err := s.http.GetJSON(ctx, s.baseURL+"/search?"+params.Encode(), nil, &sr); err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	videos := make([]item.Video, 0, len(sr.Items))
	var ids []string
	for _, hit := range sr.Items {
		v := item.Video{
			Title:       textutil.Clean(hit.Snippet.Title),
			Description: textutil.Clean(hit.Snippet.Description),
			Channel:     textutil.Clean(hit.Snippet.ChannelTitle),
			Thumbnail:   thumbnail(hit.Snippet),
			PublishedAt: parseTime(hit.Snippet.PublishedAt),
		}
		switch {
		case hit.ID.VideoID != "":
			v.ID = hit.ID.VideoID
			v.Kind = item.TypeVideo
			v.URL = "https://www.youtube.com/watch?v=" + v.ID
			ids = append(ids, v.ID)
		case hit.ID.PlaylistID != "":
			v.ID = hit.ID.PlaylistID
			v.Kind = item.TypePlaylist
			v.URL = "https://www.youtube.com/playlist?list=" + v.ID
		default:
			continue
		}
		videos = append(videos, v)
	}

	if len(ids) > 0 {
		s.enrich(ctx, videos, ids)
	}

	out := make([]item.Raw, len(videos))
	for i, v := range videos {
		out[i] = v
	}
	return out, nil
}

// enrich adds view, like and duration figures. Failure keeps the search hits without them.
func (s *Source) enrich(ctx context.Context, videos []item.Video, ids []string) {
	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", s.apiKey)

	var vr videosResponse
	if err := s.http.GetJSON(ctx, s.baseURL+"/videos?"+params.Encode(), nil, &vr); err != nil {
		s.logger.Warn("YouTube statistics unavailable", zap.Int("videos", len(ids)), zap.Error(err))
		return
	}

	byID := make(map[string]int, len(videos))
	for i, v := range videos {
		byID[v.ID] = i
	}
	for _, stat := range vr.Items {
		i, ok := byID[stat.ID]
		if !ok {
			continue
		}
		videos[i].Views, _ = strconv.ParseInt(stat.Statistics.ViewCount, 10, 64)
		videos[i].Likes, _ = strconv.ParseInt(stat.Statistics.LikeCount, 10, 64)
		videos[i].Duration = ParseDuration(stat.ContentDetails.Duration)
	}
}

func thumbnail(sn snippet) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := sn.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseDuration reads an ISO 8601 duration such as PT1H2M3S. Unknown input yields 0.
func ParseDuration(s string) time.Duration {
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return 0
	}

	var total time.Duration
	inTime := false
	num := 0
	digits := false
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			digits = true
			continue
		case r == 'T':
			inTime = true
			continue
		}
		if !digits {
			return 0
		}
		n := time.Duration(num)
		switch {
		case r == 'W' && !inTime:
			total += n * 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			total += n * 24 * time.Hour
		case r == 'H' && inTime:
			total += n * time.Hour
		case r == 'M' && inTime:
			total += n * time.Minute
		case r == 'S' && inTime:
			total += n * time.Second
		default:
			return 0
		}
		num, digits = 0, false
	}
	return total
}
