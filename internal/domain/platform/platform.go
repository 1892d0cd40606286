package platform

import "strings"

// Platform identifies a content source.
type Platform string

// Platform constants.
const (
	GitHub       Platform = "github"
	YouTube      Platform = "youtube"
	Reddit       Platform = "reddit"
	Archive      Platform = "archive"
	FreeCodeCamp Platform = "freecodecamp"
)

// All is the platform filter value that selects every configured source.
const All = "all"

// Ordered returns every platform in fan-out and presentation order.
func Ordered() []Platform {
	return []Platform{GitHub, YouTube, Reddit, Archive, FreeCodeCamp}
}

// IsValid checks if the platform is one of the supported values.
func (p Platform) IsValid() bool {
	switch p {
	case GitHub, YouTube, Reddit, Archive, FreeCodeCamp:
		return true
	}
	return false
}

// String returns the wire name.
func (p Platform) String() string { return string(p) }

// Parse normalizes a user-supplied platform name.
func Parse(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// IsValidFilter reports whether s is "all" or a known platform. Empty means "all".
func IsValidFilter(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == All {
		return true
	}
	_, ok := Parse(s)
	return ok
}
