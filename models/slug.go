package models

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugSpace also covers \v and the Unicode space separators; RE2 \s alone is ASCII only.
const slugSpace = `\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}`

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9` + slugSpace + `-]`)
	slugSpaces     = regexp.MustCompile(`[` + slugSpace + `]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// isCombiningMark matches the Combining Diacritical Marks block (U+0300..U+036F).
func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
}

// Slugify derives the URL identifier for a display name.
// The result only contains [a-z0-9-], never starts or ends with a hyphen,
// and Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	s := strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isCombiningMark)))
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
