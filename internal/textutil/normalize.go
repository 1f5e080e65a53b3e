// Package textutil provides normalization and variation helpers for
// matching artist names and album titles across data sources. The same
// name arrives spelled differently in CSV input, MusicBrainz and Lidarr
// (curly apostrophes, censored profanity, edition suffixes), and these
// helpers fold those differences away before comparison.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// comparisonPunct matches all apostrophes, quotes, hyphens, periods and
// underscores, including the typographic Unicode forms.
var comparisonPunct = regexp.MustCompile("['‘’‚‛\"“”„‟`´\\-._]")

// Normalize folds a name for comparison: NFKD, lowercase, and all
// punctuation that varies between sources removed.
//
//	"Ol' Burger Beats" -> "ol burger beats"
//	"A$AP Rocky"       -> "a$ap rocky"
//	"[bsd.u]"          -> "[bsdu]"... brackets are kept, see UnwrapBrackets
func Normalize(name string) string {
	result := strings.ToLower(strings.TrimSpace(norm.NFKD.String(name)))
	return comparisonPunct.ReplaceAllString(result, "")
}

type profanityRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var profanityRules = []profanityRule{
	{regexp.MustCompile(`(?i)f[*\-_]+ck`), "fuck"},
	{regexp.MustCompile(`(?i)sh[*\-_]+t`), "shit"},
	{regexp.MustCompile(`(?i)b[*\-_]+tch`), "bitch"},
	{regexp.MustCompile(`(?i)d[*\-_]+mn`), "damn"},
	{regexp.MustCompile(`(?i)a[*\-_]+s`), "ass"},
	{regexp.MustCompile(`(?i)h[*\-_]+ll`), "hell"},
}

// ExpandCensoredProfanity rewrites masked words to their canonical
// lowercase form so "F*ck Love" matches the catalog's "Fuck Love".
func ExpandCensoredProfanity(text string) string {
	result := text
	for _, rule := range profanityRules {
		result = rule.pattern.ReplaceAllString(result, rule.replacement)
	}
	return result
}

// suffixPatterns are applied in order; each strips one trailing marker.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*-?\s*EP\s*$`),
	regexp.MustCompile(`\s*-?\s*Single\s*$`),
	regexp.MustCompile(`\s*\([^)]*&[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\(feat\.?[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\(with[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Dd]eluxe[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Ee]xplicit[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Cc]lean[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Rr]emaster[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Cc]ollector'?s[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Aa]nniversary[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Ss]pecial[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\([Bb]onus[^)]*\)\s*$`),
	regexp.MustCompile(`\s*\[[^\]]*\]\s*$`),
}

// StripAlbumSuffixes removes trailing edition, format and featuring
// markers that prevent matching.
//
//	"Winter - EP"                      -> "Winter"
//	"Double Or Nothing (& Metro Boomin)" -> "Double Or Nothing"
//	"Title [Explicit]"                 -> "Title"
func StripAlbumSuffixes(albumTitle string) string {
	result := albumTitle
	for _, pattern := range suffixPatterns {
		result = strings.TrimSpace(pattern.ReplaceAllString(result, ""))
	}
	return result
}

// TitleMatchVariations returns the title variants compared during album
// matching, in order of preference: original, profanity-expanded,
// suffix-stripped, and both. Duplicates are removed, order preserved.
func TitleMatchVariations(albumTitle string) []string {
	candidates := []string{
		albumTitle,
		ExpandCensoredProfanity(albumTitle),
		StripAlbumSuffixes(albumTitle),
		StripAlbumSuffixes(ExpandCensoredProfanity(albumTitle)),
	}
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// EditionVariants lists the lowercase edition suffixes recognized by
// NormalizeTitleForMatching.
func EditionVariants() []string {
	return []string{
		" (deluxe)", " (deluxe edition)", " - deluxe edition", " [deluxe]",
		" (expanded)", " (expanded edition)", " - expanded edition", " [expanded]",
		" (remastered)", " (remaster)", " - remastered", " [remastered]",
		" (special edition)", " - special edition", " [special edition]",
		" (anniversary edition)", " - anniversary edition", " [anniversary edition]",
		" (collector's edition)", " - collector's edition", " [collector's edition]",
		" (bonus track version)", " - bonus track version", " [bonus track version]",
	}
}

// NormalizeTitleForMatching lowercases a title and removes at most one
// trailing edition suffix, so "Album (Deluxe)" compares equal to "Album".
func NormalizeTitleForMatching(title string) string {
	normalized := strings.TrimSpace(strings.ToLower(title))
	for _, variant := range EditionVariants() {
		if strings.HasSuffix(normalized, variant) {
			normalized = strings.TrimSpace(normalized[:len(normalized)-len(variant)])
			break
		}
	}
	return normalized
}

// HasEditionQualifier reports whether a title carries an edition suffix.
func HasEditionQualifier(title string) bool {
	return NormalizeTitleForMatching(title) != strings.TrimSpace(strings.ToLower(title))
}

var (
	zeroWidth    = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)
	singleQuotes = regexp.MustCompile("[‘’‛`´]")
	doubleQuotes = regexp.MustCompile("[“”„‟]")
	multiSpace   = regexp.MustCompile(`\s+`)
)

// CleanInput prepares raw CSV text for API searches: trim, NFKC fold,
// zero-width removal, quote normalization, whitespace collapse and
// profanity expansion. Album titles additionally lose their edition and
// format suffixes.
//
//	"  Son  Lux  "       -> "Son Lux"
//	"F*ck Love  - EP"    -> "fuck Love"
func CleanInput(text string, isArtist bool) string {
	result := strings.TrimSpace(text)
	if result == "" {
		return ""
	}
	result = norm.NFKC.String(result)
	result = zeroWidth.ReplaceAllString(result, "")
	result = singleQuotes.ReplaceAllString(result, "'")
	result = doubleQuotes.ReplaceAllString(result, `"`)
	result = multiSpace.ReplaceAllString(result, " ")
	result = ExpandCensoredProfanity(result)
	if !isArtist {
		result = StripAlbumSuffixes(result)
	}
	return strings.TrimSpace(result)
}

// UnwrapBrackets strips one pair of enclosing square brackets, used for
// names like "[bsd.u]" whose catalog entry drops the brackets. Returns
// the input unchanged when it is not fully bracketed.
func UnwrapBrackets(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if inner != "" {
			return inner
		}
	}
	return name
}
