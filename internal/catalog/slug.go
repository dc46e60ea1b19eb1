package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeTitle case-folds and trims a title for identity comparison.
func NormalizeTitle(title string) string {
	return normalizeTitleFold(title)
}

func normalizeTitleFold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Slugify derives a URL- and filesystem-safe slug from a title. Diacritics
// are stripped, letters lowercased, and runs of non-alphanumerics collapse to
// single hyphens. Returns "untitled" when nothing usable remains.
func Slugify(title string) string {
	stripped, _, err := transform.String(diacriticStripper, strings.TrimSpace(title))
	if err != nil {
		stripped = strings.TrimSpace(title)
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			pendingHyphen = true
		}
	}

	slug := b.String()
	if slug == "" {
		return "untitled"
	}
	return slug
}
