package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugInvalid   = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun       = regexp.MustCompile(`-+`)
)

// GenerateSlug builds the QR login token for a table: the normalized
// username followed by 8 random hex characters.
func GenerateSlug(username string) string {
	base := strings.ToLower(strings.TrimSpace(username))
	base = whitespaceRun.ReplaceAllString(base, "-")
	base = slugInvalid.ReplaceAllString(base, "")
	base = dashRun.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
