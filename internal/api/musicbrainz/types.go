package musicbrainz

// Outcome distinguishes "the catalog answered with nothing" from "we
// never got an answer," so callers can branch exhaustively.
type Outcome int

const (
	// OutcomeFound means at least one candidate survived filtering.
	OutcomeFound Outcome = iota
	// OutcomeNotFound means the catalog answered but nothing matched.
	OutcomeNotFound
	// OutcomeTransportError means every query attempt failed to reach
	// the catalog; the caller should classify this as retryable.
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransportError:
		return "transport_error"
	}
	return "unknown"
}

// CandidateArtist is one artist identity returned by resolution.
type CandidateArtist struct {
	ID           string
	Name         string
	MatchScore   int // similarity of normalized names, 0..100
	CatalogScore int // MusicBrainz relevance score
	Quoted       bool
}

// ArtistResult is the outcome of an artist resolution call. Candidates
// are ordered best match first and is empty unless Outcome is Found.
type ArtistResult struct {
	Outcome    Outcome
	Candidates []CandidateArtist
}

// CandidateReleaseGroup is one album candidate returned by resolution.
type CandidateReleaseGroup struct {
	ID               string
	Title            string
	ArtistCredit     string
	CatalogScore     int
	URLs             []string
	FirstReleaseDate string // YYYY or YYYY-MM-DD, may be empty
	TrackCount       int    // 0 when unknown
}

// ReleaseGroupResult is the outcome of a release-group resolution call.
type ReleaseGroupResult struct {
	Outcome    Outcome
	Candidates []CandidateReleaseGroup
}

// ReleaseGroupRequest carries everything known about the wanted album.
// ArtistMBID, KnownAlbumRef and KnownReleaseDate are optional; when
// present they constrain or disambiguate the search.
type ReleaseGroupRequest struct {
	Artist string
	Album  string
	Limit  int

	// Aliases maps a canonical artist name to alternate spellings
	// accepted by the artist-identity filter.
	Aliases map[string][]string

	// ArtistMBID switches the query cascade to identity-constrained
	// arid: queries, which eliminate artist-name ambiguity.
	ArtistMBID string

	// KnownAlbumRef is a cross-catalog album reference (for example a
	// Spotify album id); candidates whose external URLs mention it win
	// disambiguation outright.
	KnownAlbumRef string

	// KnownReleaseDate disambiguates by matching the 4-digit year.
	KnownReleaseDate string
}
