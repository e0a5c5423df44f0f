package paths

import (
	"fmt"
	"strings"
	"unicode"
)

// maxSlugLen caps generated project slugs.
const maxSlugLen = 30

// defaultSlug is used when slugification leaves nothing usable.
const defaultSlug = "project"

// Slugify converts free-form text into a project slug: lowercase,
// whitespace collapsed to "-", anything outside [a-z0-9-] dropped,
// capped at 30 characters, leading/trailing dashes trimmed.
// An empty result falls back to "project".
func Slugify(text string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(strings.ToLower(text)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}

// UniqueSlug returns base if it does not appear in existing, otherwise
// the first base-N (N = 1, 2, ...) that is unused.
func UniqueSlug(base string, existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	slug := base
	for n := 1; ; n++ {
		if _, ok := taken[slug]; !ok {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
