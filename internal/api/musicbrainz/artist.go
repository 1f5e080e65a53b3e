package musicbrainz

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/StuartRutty/lidarr-music-importer/internal/fuzz"
	"github.com/StuartRutty/lidarr-music-importer/internal/textutil"
)

const (
	minArtistSimilarity     = 70
	relaxedArtistSimilarity = 60

	quotedBoost = 2000
	prefixBoost = 1000
)

// leading qualifier tokens that distinguish otherwise-similar names,
// e.g. "DJ Shadow" vs "Shadow".
var qualifierPrefixes = map[string]bool{"dj": true, "the": true, "mc": true}

// SearchArtists resolves an artist name to ranked catalog identities.
//
// The quoted exact-phrase query runs first, then an unquoted fallback;
// candidates from both are merged by id, preferring quoted provenance.
// If the quoted attempt failed transiently while the unquoted one
// produced results, the quoted form is retried once so quoted matches
// keep their ranking preference. Transport failure of every attempt
// yields OutcomeTransportError; an answered search with no survivors
// yields OutcomeNotFound.
func (c *Client) SearchArtists(ctx context.Context, artist string, limit int) ArtistResult {
	searchArtist := textutil.UnwrapBrackets(artist)
	searchNorm := textutil.Normalize(searchArtist)

	queries := []struct {
		query  string
		quoted bool
	}{
		{fmt.Sprintf(`artist:"%s"`, searchArtist), true},
		{fmt.Sprintf(`artist:%s`, searchArtist), false},
	}

	collected := make(map[string]*CandidateArtist)
	quotedFailed := false
	answered := false

	runQuery := func(query string, quoted bool) bool {
		body, err := c.search(ctx, "artist", query, limit)
		if err != nil {
			c.debugf("artist query failed: %v", err)
			return false
		}
		raw, err := parseArtists(body)
		if err != nil {
			// Malformed body counts as "no result for this query."
			c.debugf("artist response unparseable: %v", err)
			return false
		}
		answered = true
		for _, a := range raw {
			similarity := fuzz.Ratio(searchNorm, textutil.Normalize(a.Name))
			if existing, ok := collected[a.ID]; ok {
				if similarity > existing.MatchScore {
					existing.MatchScore = similarity
				}
				if a.CatalogScore > existing.CatalogScore {
					existing.CatalogScore = a.CatalogScore
				}
				existing.Quoted = existing.Quoted || quoted
			} else {
				collected[a.ID] = &CandidateArtist{
					ID:           a.ID,
					Name:         a.Name,
					MatchScore:   similarity,
					CatalogScore: a.CatalogScore,
					Quoted:       quoted,
				}
			}
		}
		return true
	}

	for _, q := range queries {
		if !runQuery(q.query, q.quoted) && q.quoted {
			quotedFailed = true
		}
	}

	if len(collected) == 0 {
		if !answered {
			return ArtistResult{Outcome: OutcomeTransportError}
		}
		return ArtistResult{Outcome: OutcomeNotFound}
	}

	// The quoted query failed transiently but the unquoted one produced
	// candidates. Retry quoted once so its matches rank first.
	hasQuoted := false
	for _, a := range collected {
		if a.Quoted {
			hasQuoted = true
			break
		}
	}
	if !hasQuoted && quotedFailed {
		runQuery(fmt.Sprintf(`artist:"%s"`, searchArtist), true)
	}

	candidates := make([]CandidateArtist, 0, len(collected))
	for _, a := range collected {
		candidates = append(candidates, *a)
	}

	candidates = filterBySimilarity(candidates)
	if len(candidates) == 0 {
		return ArtistResult{Outcome: OutcomeNotFound}
	}

	rankArtists(candidates, searchArtist)
	return ArtistResult{Outcome: OutcomeFound, Candidates: candidates}
}

// filterBySimilarity keeps candidates scoring at least 70, relaxing once
// to 60 when nothing survives. Never relaxes further.
func filterBySimilarity(candidates []CandidateArtist) []CandidateArtist {
	keep := func(threshold int) []CandidateArtist {
		var out []CandidateArtist
		for _, a := range candidates {
			if a.MatchScore >= threshold {
				out = append(out, a)
			}
		}
		return out
	}
	filtered := keep(minArtistSimilarity)
	if len(filtered) == 0 {
		filtered = keep(relaxedArtistSimilarity)
	}
	return filtered
}

// rankArtists orders candidates by composite key: quoted provenance
// first, then preserved leading qualifier, then similarity, with the
// catalog's own relevance score breaking ties.
func rankArtists(candidates []CandidateArtist, searchArtist string) {
	tokens := strings.Fields(strings.ToLower(searchArtist))
	searchPrefix := ""
	if len(tokens) > 0 && qualifierPrefixes[tokens[0]] {
		searchPrefix = tokens[0]
	}

	key := func(a CandidateArtist) int {
		k := a.MatchScore
		if a.Quoted {
			k += quotedBoost
		}
		if searchPrefix != "" && strings.HasPrefix(textutil.Normalize(a.Name), searchPrefix) {
			k += prefixBoost
		}
		return k
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ki, kj := key(candidates[i]), key(candidates[j])
		if ki != kj {
			return ki > kj
		}
		return candidates[i].CatalogScore > candidates[j].CatalogScore
	})
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.config.Debug {
		log.Printf("DEBUG: "+format, args...)
	}
}
