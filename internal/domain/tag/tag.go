package tag

import (
	"strings"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// MaxLength caps a tag in runes.
const MaxLength = 40

// MaxResourceIDLength caps a resource identifier in bytes.
const MaxResourceIDLength = 512

// Count is a tag with the number of resources carrying it.
type Count struct {
	Tag   string
	Count int64
}

// Normalize lowercases and trims a tag, collapsing inner whitespace to single dashes.
func Normalize(raw string) (string, error) {
	t := strings.Join(strings.Fields(strings.ToLower(raw)), "-")
	if t == "" || len([]rune(t)) > MaxLength {
		return "", domain.ErrInvalidTag
	}
	return t, nil
}

// ValidateResourceID checks the identifier a tag set is attached to.
func ValidateResourceID(id string) error {
	if strings.TrimSpace(id) == "" || len(id) > MaxResourceIDLength {
		return domain.ErrInvalidTag
	}
	return nil
}
