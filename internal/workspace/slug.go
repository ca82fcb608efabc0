package workspace

import (
	"regexp"
	"strings"
)

// leadingVerbs are stripped from the front of a commit message's first
// line before slugging, per SPEC_FULL.md "Workspace integrate()".
var leadingVerbs = map[string]bool{
	"add":       true,
	"fix":       true,
	"implement": true,
	"update":    true,
	"remove":    true,
	"refactor":  true,
	"support":   true,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugRunes = 40

// deriveSlug turns a commit message into a short, descriptive branch-label
// suffix: strip a leading verb, lowercase, replace runs of non-alphanumeric
// characters with a hyphen, collapse repeats, and trim to a bounded length.
func deriveSlug(message string) string {
	firstLine := message
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		firstLine = message[:idx]
	}

	words := strings.Fields(firstLine)
	if len(words) > 0 && leadingVerbs[nonAlphanumeric.ReplaceAllString(strings.ToLower(words[0]), "")] {
		words = words[1:]
	}

	joined := strings.ToLower(strings.Join(words, " "))
	slug := nonAlphanumeric.ReplaceAllString(joined, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugRunes {
		slug = slug[:maxSlugRunes]
		slug = strings.Trim(slug, "-")
	}
	if slug == "" {
		return "change"
	}
	return slug
}
