package musicbrainz

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/StuartRutty/lidarr-music-importer/internal/fuzz"
	"github.com/StuartRutty/lidarr-music-importer/internal/textutil"
)

const minCreditSimilarity = 70

// SearchReleaseGroups resolves an album to catalog candidates, best
// first.
//
// The outer loop walks the title variations (original first); the inner
// loop walks a query cascade from strict to loose. When the request
// carries an artist MBID the cascade collapses to two arid-constrained
// queries, which eliminate artist-name ambiguity entirely. Candidates
// are filtered by artist identity before disambiguation, so a search
// for "Suede" never returns a release credited only to "AJ Suede".
//
// A transport failure on any single query is swallowed and the cascade
// proceeds; only when every query failed to reach the catalog does the
// result carry OutcomeTransportError.
func (c *Client) SearchReleaseGroups(ctx context.Context, req ReleaseGroupRequest) ReleaseGroupResult {
	variations := textutil.SearchVariations(req.Album)
	answered := false

	for _, variant := range variations {
		var queries []string
		if req.ArtistMBID != "" {
			queries = []string{
				fmt.Sprintf(`arid:%s AND releasegroup:"%s"`, req.ArtistMBID, variant),
				fmt.Sprintf(`arid:%s AND releasegroup:%s`, req.ArtistMBID, variant),
			}
		} else {
			queries = buildReleaseGroupQueries(req.Artist, variant)
		}

		for _, query := range queries {
			body, err := c.search(ctx, "release-group", query, req.Limit)
			if err != nil {
				c.debugf("release-group query failed: %v", err)
				continue
			}
			candidates, err := parseReleaseGroups(body)
			if err != nil {
				c.debugf("release-group response unparseable: %v", err)
				continue
			}
			answered = true

			filtered := filterByArtist(candidates, req.Artist, req.Aliases)
			if len(filtered) == 0 {
				continue
			}
			return selectCandidates(filtered, variant, req)
		}
	}

	// Title-only fallback: no artist constraint in the query, but the
	// identity filter still applies to the results.
	for _, variant := range variations {
		body, err := c.search(ctx, "release-group", fmt.Sprintf(`releasegroup:"%s"`, variant), req.Limit)
		if err != nil {
			c.debugf("release-group fallback query failed: %v", err)
			continue
		}
		candidates, err := parseReleaseGroups(body)
		if err != nil {
			c.debugf("release-group fallback response unparseable: %v", err)
			continue
		}
		answered = true

		filtered := filterByArtist(candidates, req.Artist, req.Aliases)
		if len(filtered) == 0 {
			continue
		}
		// Exact-title matches win within the fallback, sorted by the
		// catalog's own relevance.
		if exact := exactTitleMatches(filtered, variant); len(exact) > 0 {
			sortByCatalogScore(exact)
			return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: exact}
		}
		return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: filtered}
	}

	if !answered {
		return ReleaseGroupResult{Outcome: OutcomeTransportError}
	}
	return ReleaseGroupResult{Outcome: OutcomeNotFound}
}

// buildReleaseGroupQueries builds the strict-to-loose cascade for one
// title variant. Bracket-wrapped artist names take their own cascade;
// it entirely supersedes the special-character cleaning branch, so a
// name like "[A$AP]" never gets its characters rewritten.
func buildReleaseGroupQueries(artist, title string) []string {
	if strings.Contains(artist, "[") && strings.Contains(artist, "]") {
		inner := strings.Trim(artist, "[]")
		return []string{
			fmt.Sprintf(`artist:"%s" AND releasegroup:"%s"`, artist, title),
			fmt.Sprintf(`artist:"%s" AND releasegroup:"%s"`, inner, title),
			fmt.Sprintf(`artist:%s AND releasegroup:"%s"`, artist, title),
			fmt.Sprintf(`artist:%s releasegroup:%s`, inner, title),
		}
	}

	// The catalog may not index ! and $ literally.
	clean := strings.ReplaceAll(strings.ReplaceAll(artist, "!", "I"), "$", "S")

	queries := []string{
		fmt.Sprintf(`artist:"%s" AND releasegroup:"%s"`, artist, title),
	}
	if clean != artist {
		queries = append(queries, fmt.Sprintf(`artist:"%s" AND releasegroup:"%s"`, clean, title))
	}
	queries = append(queries, fmt.Sprintf(`artist:%s AND releasegroup:"%s"`, artist, title))
	if clean != artist {
		queries = append(queries, fmt.Sprintf(`artist:%s releasegroup:%s`, clean, title))
	}
	return queries
}

// creditSeparators splits an artist-credit phrase into the individually
// credited names.
var creditSeparators = regexp.MustCompile(`(?i)\s*(?:,|;|&|\bfeat\.?\b|\bft\.?\b|\band\b|\bwith\b|\bx\b)\s*`)

// artistMatches reports whether a candidate's artist-credit phrase
// credits the searched artist. A credited name must equal the query (or
// one of its aliases) after normalization; plain substring containment
// would let "Suede" claim a release by "AJ Suede". Token-sort similarity
// is the last resort for formatting differences the separators miss.
func artistMatches(creditPhrase, artist string, aliases map[string][]string) bool {
	if creditPhrase == "" || artist == "" {
		return false
	}

	queryNorm := textutil.Normalize(artist)
	wanted := map[string]bool{queryNorm: true}
	for _, key := range []string{artist, strings.ToLower(artist)} {
		for _, alias := range aliases[key] {
			wanted[textutil.Normalize(alias)] = true
		}
	}

	for _, segment := range creditSeparators.Split(creditPhrase, -1) {
		segNorm := textutil.Normalize(segment)
		if segNorm != "" && wanted[segNorm] {
			return true
		}
	}

	return fuzz.TokenSortRatio(queryNorm, textutil.Normalize(creditPhrase)) >= minCreditSimilarity
}

func filterByArtist(candidates []CandidateReleaseGroup, artist string, aliases map[string][]string) []CandidateReleaseGroup {
	var out []CandidateReleaseGroup
	for _, rg := range candidates {
		if artistMatches(rg.ArtistCredit, artist, aliases) {
			out = append(out, rg)
		}
	}
	return out
}

// volumePattern captures the number in "Vol. 5", "Volume 5", "Vol #5",
// "Pt. 2" and bare "#5" qualifiers.
var volumePattern = regexp.MustCompile(`(?i)\b(?:vol(?:\.|ume)?|pt\.?)\s*#?:?\s*(\d+)\b|#(\d+)\b`)

func volumeNumber(title string) string {
	m := volumePattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func sortByCatalogScore(candidates []CandidateReleaseGroup) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CatalogScore > candidates[j].CatalogScore
	})
}

func exactTitleMatches(candidates []CandidateReleaseGroup, title string) []CandidateReleaseGroup {
	wanted := strings.ToLower(strings.TrimSpace(title))
	var out []CandidateReleaseGroup
	for _, rg := range candidates {
		if strings.ToLower(strings.TrimSpace(rg.Title)) == wanted {
			out = append(out, rg)
		}
	}
	return out
}

// selectCandidates disambiguates a non-empty filtered candidate set
// using a fixed priority. Each rule short-circuits: the first rule that
// keeps at least one candidate decides the answer.
//
//  1. A known cross-catalog album reference appearing in a candidate's
//     external URLs.
//  2. A known release date sharing the candidate's release year.
//  3. Exact title match against the searched variation.
//  4. Volume guard: a searched volume number must be matched exactly;
//     if no candidate shares it the whole resolution returns empty
//     rather than a confidently wrong volume.
//  5. Title similarity of edition-stripped normalized titles, with the
//     catalog score breaking ties.
func selectCandidates(candidates []CandidateReleaseGroup, variant string, req ReleaseGroupRequest) ReleaseGroupResult {
	if req.KnownAlbumRef != "" {
		var matched []CandidateReleaseGroup
		for _, rg := range candidates {
			for _, u := range rg.URLs {
				if strings.Contains(u, req.KnownAlbumRef) {
					matched = append(matched, rg)
					break
				}
			}
		}
		if len(matched) > 0 {
			sortByCatalogScore(matched)
			return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: matched}
		}
	}

	if year := releaseYear(req.KnownReleaseDate); year != "" {
		var matched []CandidateReleaseGroup
		for _, rg := range candidates {
			if releaseYear(rg.FirstReleaseDate) == year {
				matched = append(matched, rg)
			}
		}
		if len(matched) > 0 {
			sortByCatalogScore(matched)
			return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: matched}
		}
	}

	if exact := exactTitleMatches(candidates, variant); len(exact) > 0 {
		sortByCatalogScore(exact)
		return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: exact}
	}

	if wantedVol := volumeNumber(variant); wantedVol != "" {
		var matched []CandidateReleaseGroup
		for _, rg := range candidates {
			if volumeNumber(rg.Title) == wantedVol {
				matched = append(matched, rg)
			}
		}
		if len(matched) > 0 {
			sortByCatalogScore(matched)
			return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: matched}
		}
		// The request names a specific volume and no candidate has it.
		return ReleaseGroupResult{Outcome: OutcomeNotFound}
	}

	wantedNorm := textutil.NormalizeTitleForMatching(variant)
	type scored struct {
		similarity int
		rg         CandidateReleaseGroup
	}
	ranked := make([]scored, 0, len(candidates))
	for _, rg := range candidates {
		sim := fuzz.TokenSetRatio(wantedNorm, textutil.NormalizeTitleForMatching(rg.Title))
		ranked = append(ranked, scored{similarity: sim, rg: rg})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].similarity != ranked[j].similarity {
			return ranked[i].similarity > ranked[j].similarity
		}
		return ranked[i].rg.CatalogScore > ranked[j].rg.CatalogScore
	})

	out := make([]CandidateReleaseGroup, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.rg)
	}
	return ReleaseGroupResult{Outcome: OutcomeFound, Candidates: out}
}

func releaseYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}
