package item

import (
	"testing"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain/platform"
)

func TestNormalize_Repository(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	it := Normalize(Repository{
		FullName:    "acme/hooks",
		Description: "react hooks tutorial",
		URL:         "https://github.com/acme/hooks",
		Language:    "TypeScript",
		Stars:       12000,
		Forks:       300,
		CreatedAt:   created,
	})

	if it.Platform != platform.GitHub || it.Type != TypeRepository {
		t.Fatalf("unexpected platform/type: %s/%s", it.Platform, it.Type)
	}
	if it.Title != "acme/hooks" {
		t.Errorf("Title = %q", it.Title)
	}
	if it.Badges.Stars != 12000 || it.Badges.Forks != 300 || it.Badges.Language != "TypeScript" {
		t.Errorf("badges not carried over: %+v", it.Badges)
	}
	if !it.PublishedAt.Equal(created) {
		t.Errorf("PublishedAt = %v, want %v", it.PublishedAt, created)
	}
}

func TestNormalize_DefaultsKind(t *testing.T) {
	if got := Normalize(Video{Title: "v"}).Type; got != TypeVideo {
		t.Errorf("video kind = %q, want %q", got, TypeVideo)
	}
	if got := Normalize(Course{Title: "c"}).Type; got != TypeCourse {
		t.Errorf("course kind = %q, want %q", got, TypeCourse)
	}
	if got := Normalize(Video{Kind: TypePlaylist}).Type; got != TypePlaylist {
		t.Errorf("playlist kind = %q, want %q", got, TypePlaylist)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{45 * time.Second, "0:45"},
		{15*time.Minute + 33*time.Second, "15:33"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTypePriority(t *testing.T) {
	if TypeCourse.Priority() >= TypeVideo.Priority() {
		t.Error("courses must sort before single videos")
	}
	if TypePlaylist.Priority() >= TypePost.Priority() {
		t.Error("playlists must sort before posts")
	}
	if TypeRepository.Priority() != TypeDocument.Priority() {
		t.Error("repositories and documents share a tier")
	}
}

func TestScored_PopularityAndAge(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	raw := Post{Title: "t", Upvotes: 42, CreatedAt: now.Add(-24 * time.Hour)}
	s := NewScored(Normalize(raw), raw, 5)

	if s.Popularity() != 42 {
		t.Errorf("Popularity = %v, want 42", s.Popularity())
	}
	age, ok := s.Age(now)
	if !ok || age != 24*time.Hour {
		t.Errorf("Age = %v, %v; want 24h, true", age, ok)
	}

	doc := ArchiveDocument{Identifier: "x", Downloads: 7}
	sd := NewScored(Normalize(doc), doc, 1)
	if _, ok := sd.Age(now); ok {
		t.Error("archive documents carry no publish date")
	}
}
