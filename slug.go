package enrich

import (
	"regexp"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s_-]+`)
	slugTrimRe     = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a stable URL-safe identifier from a title: lowercase,
// non-word characters stripped, whitespace/underscore/hyphen runs collapsed
// to a single hyphen, leading and trailing hyphens trimmed.
//
// Slugify is a pure function and idempotent: applying it to its own output
// yields the same string.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return slugTrimRe.ReplaceAllString(s, "")
}
