package utils

import (
	"strings"
	"unicode"
)

// MaxSlugLength matches the slug column width.
const MaxSlugLength = 200

// Slugify derives a URL slug from a title: lowercased, ASCII letters
// and digits kept, every other run of characters collapsed into a
// single hyphen, trimmed to MaxSlugLength without cutting a word in
// half unless the first word alone exceeds the limit.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
		if i := strings.LastIndexByte(slug, '-'); i > 0 {
			slug = slug[:i]
		}
	}

	return slug
}
