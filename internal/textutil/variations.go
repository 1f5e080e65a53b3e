package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var leadingQualifiers = []string{"ep ", "single ", "the ", "a "}

var titleCaser = cases.Title(language.Und)

// SearchVariations generates alternative spellings of an album title to
// try against the catalog, original first, in order of preference:
//
//	"ep seeds"  -> "seeds"       (leading qualifier removed)
//	"the album" -> "album"
//	lowercase   -> Title Case
//	short title -> ALL CAPS      (likely an acronym)
//	"&" -> "and", punctuation removed
//
// Duplicates are removed while preserving order.
func SearchVariations(title string) []string {
	variations := []string{title}
	titleLower := strings.TrimSpace(strings.ToLower(title))

	appendUnique := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range variations {
			if existing == v {
				return
			}
		}
		variations = append(variations, v)
	}

	for _, prefix := range leadingQualifiers {
		if strings.HasPrefix(titleLower, prefix) {
			appendUnique(strings.TrimSpace(title[len(prefix):]))
		}
	}

	if titleLower == title {
		appendUnique(titleCaser.String(title))
	}

	if len(title) <= 6 && title != strings.ToUpper(title) {
		appendUnique(strings.ToUpper(title))
	}

	appendUnique(strings.ReplaceAll(title, "&", "and"))

	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	appendUnique(strings.Join(strings.Fields(b.String()), " "))

	return variations
}
