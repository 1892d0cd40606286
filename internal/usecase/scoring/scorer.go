// Package scoring rates raw platform items against the request keywords.
// Scores are plain additive integers on one scale for every platform.
package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/query"
)

const (
	keywordWeight     = 2
	titleWeightStrong = 3 // repositories and courses
	titleWeight       = 2

	shortVideo = 2 * time.Minute
)

var educationalTerms = []string{
	"tutorial", "course", "guide", "introduction", "intro to", "beginner",
	"learn", "lesson", "explained", "fundamentals", "basics", "how to", "crash course",
}

// ScoreAll scores raw items from one source and returns them sorted by relevance,
// highest first. Ties keep the source's order.
func ScoreAll(raws []item.Raw, keywords []string, q string) []item.Scored {
	out := make([]item.Scored, 0, len(raws))
	for _, r := range raws {
		if r == nil {
			continue
		}
		out = append(out, ScoreItem(r, keywords, q))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance() > out[j].Relevance()
	})
	return out
}

// ScoreItem normalizes a raw item and attaches its score.
func ScoreItem(raw item.Raw, keywords []string, q string) item.Scored {
	return item.NewScored(item.Normalize(raw), raw, Score(raw, keywords, q))
}

// Score computes the relevance of one raw item. Pure.
// With no keywords the whitespace split of q is used.
func Score(raw item.Raw, keywords []string, q string) float64 {
	if len(keywords) == 0 {
		keywords = query.Split(q)
	}

	switch r := raw.(type) {
	case item.Repository:
		return scoreRepository(r, keywords)
	case item.Video:
		return scoreVideo(r, keywords)
	case item.Post:
		return scorePost(r, keywords)
	case item.ArchiveDocument:
		return scoreArchive(r, keywords)
	case item.Course:
		return scoreCourse(r, keywords)
	default:
		return 0
	}
}

func scoreRepository(r item.Repository, keywords []string) float64 {
	s := keywordScore(r.FullName, searchable(r.FullName, r.Description, strings.Join(r.Topics, " ")),
		keywords, titleWeightStrong)
	s += tier(float64(r.Stars), 100, 1000, 10000)

	if !r.Fork {
		s++
	}
	if r.Homepage != "" {
		s++
	}
	if len(r.Topics) >= 3 {
		s++
	}
	if r.Archived {
		s--
	}
	return float64(s)
}

func scoreVideo(r item.Video, keywords []string) float64 {
	s := keywordScore(r.Title, searchable(r.Title, r.Description), keywords, titleWeight)
	s += tier(float64(r.Views), 1e3, 1e4, 1e5)
	s += tier(float64(r.Likes), 100, 1000)

	if educationalTitle(r.Title) {
		s++
	}
	if r.Duration > 0 && r.Duration < shortVideo {
		s -= 2
	}
	return float64(s)
}

func scorePost(r item.Post, keywords []string) float64 {
	s := keywordScore(r.Title, searchable(r.Title, r.Body, r.Subreddit), keywords, titleWeight)
	s += tier(float64(r.Upvotes), 10, 100, 1000)

	if item.IsEducationalSubreddit(r.Subreddit) {
		s += 2
	}
	if r.Comments >= 10 {
		s++
	}
	if educationalTitle(r.Title) {
		s++
	}
	if r.NSFW {
		s -= 5
	}
	return float64(s)
}

func scoreArchive(r item.ArchiveDocument, keywords []string) float64 {
	s := keywordScore(r.Title, searchable(r.Title, r.Description, strings.Join(r.Subjects, " ")),
		keywords, titleWeight)
	s += tier(float64(r.Downloads), 100, 1000, 10000)

	if educationalTitle(r.Title) {
		s++
	}
	switch strings.ToLower(r.MediaType) {
	case "texts", "movies":
		s++
	case "audio", "image":
		s--
	}
	if len(r.Subjects) > 0 {
		s++
	}
	return float64(s)
}

func scoreCourse(r item.Course, keywords []string) float64 {
	s := keywordScore(r.Title, searchable(r.Title, r.Description, strings.Join(r.Keywords, " ")),
		keywords, titleWeightStrong)
	s += tier(float64(r.Views), 100, 1000)
	if r.Replies > 5 {
		s++
	}
	if r.Kind == item.TypeCourse || r.Kind == "" {
		s += 2
	}
	return float64(s)
}

// keywordScore adds keywordWeight per keyword in text and titleBonus per keyword in title.
func keywordScore(title, text string, keywords []string, titleBonus int) int {
	title = strings.ToLower(title)
	s := 0
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(text, k) {
			s += keywordWeight
		}
		if strings.Contains(title, k) {
			s += titleBonus
		}
	}
	return s
}

// tier returns how many ascending thresholds v strictly exceeds.
func tier(v float64, thresholds ...float64) int {
	n := 0
	for _, t := range thresholds {
		if v > t {
			n++
		}
	}
	return n
}

func searchable(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

func educationalTitle(title string) bool {
	title = strings.ToLower(title)
	for _, term := range educationalTerms {
		if strings.Contains(title, term) {
			return true
		}
	}
	return false
}
