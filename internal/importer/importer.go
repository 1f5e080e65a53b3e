// Package importer turns resolved (artist, album) identities into
// idempotent Lidarr add/monitor/unmonitor actions. It owns the decision
// logic per work item; the API clients stay thin.
package importer

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/StuartRutty/lidarr-music-importer/internal/api/lidarr"
	"github.com/StuartRutty/lidarr-music-importer/internal/api/musicbrainz"
	"github.com/StuartRutty/lidarr-music-importer/internal/config"
	"github.com/StuartRutty/lidarr-music-importer/internal/csvfile"
	"github.com/StuartRutty/lidarr-music-importer/internal/fuzz"
	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
	"github.com/StuartRutty/lidarr-music-importer/internal/status"
	"github.com/StuartRutty/lidarr-music-importer/internal/textutil"
)

const (
	searchLimit = 5

	// minTitleSimilarity gates the monitor-by-title fallback.
	minTitleSimilarity = 85
)

// Importer processes work items against MusicBrainz and Lidarr.
type Importer struct {
	cfg    *config.Config
	mb     *musicbrainz.Client
	lidarr *lidarr.Client

	// SkipExistingArtists ends items whose artist is already in the
	// library with skip_artist_exists, for add-new-artists-only runs.
	SkipExistingArtists bool
}

// New creates an importer. mb may be nil when MusicBrainz is disabled.
func New(cfg *config.Config, mb *musicbrainz.Client, ld *lidarr.Client) *Importer {
	return &Importer{cfg: cfg, mb: mb, lidarr: ld}
}

// ProcessItem runs the full state machine for one work item and returns
// its terminal status. The item's MusicBrainz id fields are enriched in
// place when resolution discovers them. Errors never propagate; they are
// classified into the retryable status codes so the queue keeps moving.
func (imp *Importer) ProcessItem(ctx context.Context, item *csvfile.WorkItem) status.Code {
	artist := textutil.CleanInput(item.Artist, true)
	album := textutil.CleanInput(item.Album, false)
	if artist == "" || album == "" {
		return status.Skip
	}

	// A known release identity lets us answer "already monitored"
	// without any resolution work.
	if item.MBReleaseID != "" {
		albums, err := imp.lidarr.GetAllAlbums(ctx)
		if err != nil {
			return classify(err)
		}
		for _, a := range albums {
			if a.ForeignAlbumID == item.MBReleaseID && a.Monitored {
				return status.AlreadyMonitored
			}
		}
	}

	libraryArtists, err := imp.lidarr.GetArtists(ctx)
	if err != nil {
		return classify(err)
	}
	existing := imp.findExistingArtist(libraryArtists, artist)
	if existing != nil && imp.SkipExistingArtists {
		return status.SkipArtistExists
	}

	if existing != nil {
		albums, err := imp.lidarr.GetArtistAlbums(ctx, existing.ID)
		if err != nil {
			return classify(err)
		}
		if monitoredTitleMatch(albums, album) {
			return status.AlreadyMonitored
		}
	}

	artistMBID := item.MBArtistID
	if artistMBID == "" && existing != nil {
		artistMBID = existing.ForeignArtistID
	}
	releaseMBID := item.MBReleaseID

	if imp.cfg.UseMusicBrainz && imp.mb != nil {
		if artistMBID == "" {
			result := imp.mb.SearchArtists(ctx, artist, searchLimit)
			switch result.Outcome {
			case musicbrainz.OutcomeTransportError:
				return status.ErrorConnection
			case musicbrainz.OutcomeFound:
				artistMBID = result.Candidates[0].ID
				item.MBArtistID = artistMBID
			}
		}
		if releaseMBID == "" && artistMBID != "" {
			result := imp.mb.SearchReleaseGroups(ctx, musicbrainz.ReleaseGroupRequest{
				Artist:     artist,
				Album:      album,
				Limit:      searchLimit,
				Aliases:    imp.cfg.ArtistAliases,
				ArtistMBID: artistMBID,
			})
			switch result.Outcome {
			case musicbrainz.OutcomeTransportError:
				return status.ErrorConnection
			case musicbrainz.OutcomeFound:
				releaseMBID = result.Candidates[0].ID
				item.MBReleaseID = releaseMBID
			}
		}
	}

	if existing == nil && artistMBID == "" {
		if !imp.cfg.UseMusicBrainz || imp.mb == nil {
			// Without catalog access and without a library entry there
			// is no identity to work from.
			return status.SkipNoMusicBrainz
		}
		// The catalog answered and had no match; a transport failure
		// would have returned a retryable error above.
		return status.SkipNoArtistMatch
	}

	if existing == nil {
		var code status.Code
		existing, code = imp.ensureArtist(ctx, artist, artistMBID)
		if existing == nil {
			return code
		}
	}

	if releaseMBID == "" {
		return status.SkipAlbumNoResults
	}

	if code, done := imp.monitorByID(ctx, existing, releaseMBID); done {
		return code
	}
	if code, done := imp.monitorByTitle(ctx, existing, album); done {
		return code
	}

	// Nothing to monitor yet: the library has not cached this release.
	// Ask it to refresh the artist and let a later run pick this up.
	if err := imp.lidarr.RefreshArtist(ctx, existing.ID); err != nil {
		return classify(err)
	}
	return status.PendingRefresh
}

// findExistingArtist matches the library by normalized name equality,
// consulting the alias table in both directions and trying the
// bracket-unwrapped form. Never fuzzy: a wrong artist here silently
// pollutes someone else's library entry.
func (imp *Importer) findExistingArtist(artists []lidarr.Artist, name string) *lidarr.Artist {
	wanted := map[string]bool{
		textutil.Normalize(name): true,
		textutil.Normalize(textutil.UnwrapBrackets(name)): true,
	}
	lowerName := strings.ToLower(name)
	for _, alias := range imp.cfg.ArtistAliases[lowerName] {
		wanted[textutil.Normalize(alias)] = true
	}
	for canonical, aliases := range imp.cfg.ArtistAliases {
		for _, alias := range aliases {
			if textutil.Normalize(alias) == textutil.Normalize(name) {
				wanted[textutil.Normalize(canonical)] = true
			}
		}
	}

	for i := range artists {
		if wanted[textutil.Normalize(artists[i].ArtistName)] {
			return &artists[i]
		}
	}
	return nil
}

// monitoredTitleMatch reports whether any monitored album matches one of
// the title's match variations.
func monitoredTitleMatch(albums []lidarr.Album, title string) bool {
	for _, variant := range textutil.TitleMatchVariations(title) {
		wanted := textutil.NormalizeTitleForMatching(variant)
		for _, a := range albums {
			if a.Monitored && textutil.NormalizeTitleForMatching(a.Title) == wanted {
				return true
			}
		}
	}
	return false
}

// ensureArtist adds the artist to the library unmonitored with
// auto-search off, so only the requested album gets enabled later. A
// concurrent-add conflict triggers one refetch before giving up.
func (imp *Importer) ensureArtist(ctx context.Context, name, mbid string) (*lidarr.Artist, status.Code) {
	lookup, err := imp.lidarr.LookupArtist(ctx, name, mbid)
	if err != nil {
		return nil, classify(err)
	}
	if lookup == nil {
		return nil, status.SkipNoArtistMatch
	}

	added, err := imp.lidarr.AddArtist(ctx, *lookup, false, false)
	if err != nil {
		if !errors.Is(err, lidarr.ErrAlreadyExists) {
			return nil, classify(err)
		}
		artists, ferr := imp.lidarr.GetArtists(ctx)
		if ferr != nil {
			return nil, classify(ferr)
		}
		for i := range artists {
			if mbid != "" && artists[i].ForeignArtistID == mbid {
				return &artists[i], ""
			}
		}
		if found := imp.findExistingArtist(artists, name); found != nil {
			return found, ""
		}
		return nil, status.ErrorUnknown
	}

	// A freshly added artist may come with albums pre-monitored by the
	// server's defaults; clear them so only our target gets enabled.
	imp.unmonitorAll(ctx, added.ID)
	return added, ""
}

func (imp *Importer) unmonitorAll(ctx context.Context, artistID int) {
	albums, err := imp.lidarr.GetArtistAlbums(ctx, artistID)
	if err != nil {
		imp.debugf("could not list albums for unmonitor pass: %v", err)
		return
	}
	for _, a := range albums {
		if !a.Monitored {
			continue
		}
		a.Monitored = false
		if err := imp.lidarr.UpdateAlbum(ctx, a); err != nil {
			imp.debugf("failed to unmonitor album %d: %v", a.ID, err)
		}
	}
}

// monitorByID enables the release identified by its MusicBrainz id. The
// bool result reports whether this step settled the item; false means
// the caller should fall back to title matching.
func (imp *Importer) monitorByID(ctx context.Context, artist *lidarr.Artist, releaseMBID string) (status.Code, bool) {
	albums, err := imp.lidarr.GetArtistAlbums(ctx, artist.ID)
	if err != nil {
		return classify(err), true
	}
	for _, a := range albums {
		if a.ForeignAlbumID == releaseMBID {
			return imp.enableAlbum(ctx, artist, a), true
		}
	}

	// The library has not cached this release yet; fetch it by identity
	// directly, bypassing name search.
	results, err := imp.lidarr.LookupAlbumByMBID(ctx, releaseMBID)
	if err != nil {
		return classify(err), true
	}
	if len(results) == 0 {
		return "", false
	}

	album := results[0]
	switch {
	case album.Artist != nil && album.Artist.ForeignArtistID == artist.ForeignArtistID:
		// Verified: the release belongs to the expected artist.
	case album.Artist != nil && album.Artist.ID == 0 &&
		namesEquivalent(album.Artist.ArtistName, artist.ArtistName):
		// Lookup returned an artist stub without a library id; the
		// names agree, so associate it with our library artist.
	default:
		imp.debugf("release %s credits a different artist, not adding by id", releaseMBID)
		return "", false
	}
	album.ArtistID = artist.ID
	album.Artist = nil

	added, err := imp.lidarr.AddAlbum(ctx, album, true, true)
	if err != nil {
		if !errors.Is(err, lidarr.ErrAlreadyExists) {
			return classify(err), true
		}
		// Added concurrently; refetch and enable the existing entry.
		albums, ferr := imp.lidarr.GetArtistAlbums(ctx, artist.ID)
		if ferr != nil {
			return classify(ferr), true
		}
		for _, a := range albums {
			if a.ForeignAlbumID == releaseMBID {
				return imp.enableAlbum(ctx, artist, a), true
			}
		}
		return "", false
	}

	imp.unmonitorSiblings(ctx, artist.ID, added.ID, added.ForeignAlbumID, added.Title)
	return status.Success, true
}

// namesEquivalent compares artist names ignoring case, periods and
// hyphens, the punctuation Lidarr's metadata mirror rewrites.
func namesEquivalent(a, b string) bool {
	fold := strings.NewReplacer(".", "", "-", "")
	return fold.Replace(strings.ToLower(a)) == fold.Replace(strings.ToLower(b))
}

// monitorByTitle is the fallback when no release identity led anywhere:
// pick the best fuzzy title match among the artist's cached albums. An
// exact case-insensitive match wins outright; otherwise the best
// token-sort score of at least 85 does, and among equally scored titles
// the most recent release date wins unless the query itself names an
// edition.
func (imp *Importer) monitorByTitle(ctx context.Context, artist *lidarr.Artist, title string) (status.Code, bool) {
	albums, err := imp.lidarr.GetArtistAlbums(ctx, artist.ID)
	if err != nil {
		return classify(err), true
	}
	if len(albums) == 0 {
		return "", false
	}

	wanted := strings.ToLower(strings.TrimSpace(title))
	for _, a := range albums {
		if strings.ToLower(strings.TrimSpace(a.Title)) == wanted {
			return imp.enableAlbum(ctx, artist, a), true
		}
	}

	wantedNorm := textutil.NormalizeTitleForMatching(title)
	preferNewest := !textutil.HasEditionQualifier(title)
	best := -1
	bestScore := 0
	for i, a := range albums {
		score := fuzz.TokenSortRatio(wantedNorm, textutil.NormalizeTitleForMatching(a.Title))
		if score < minTitleSimilarity {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
			continue
		}
		if score == bestScore && best >= 0 && preferNewest &&
			a.ReleaseDate > albums[best].ReleaseDate {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return imp.enableAlbum(ctx, artist, albums[best]), true
}

// enableAlbum flips one album to monitored, triggers a file search and
// runs the sibling cleanup so nothing else starts downloading.
func (imp *Importer) enableAlbum(ctx context.Context, artist *lidarr.Artist, album lidarr.Album) status.Code {
	if !album.Monitored {
		album.Monitored = true
		if err := imp.lidarr.UpdateAlbum(ctx, album); err != nil {
			return classify(err)
		}
	}
	if err := imp.lidarr.SearchForAlbum(ctx, album.ID); err != nil {
		return classify(err)
	}
	imp.unmonitorSiblings(ctx, artist.ID, album.ID, album.ForeignAlbumID, album.Title)
	return status.Success
}

// unmonitorSiblings disables every other monitored release of the
// artist so a single import never starts unrelated downloads. The kept
// album is identified by library id, then catalog identity, then the
// first title-containment match. Failures are logged and skipped; the
// item's own status is already decided.
func (imp *Importer) unmonitorSiblings(ctx context.Context, artistID, keepID int, keepForeignID, keepTitle string) {
	albums, err := imp.lidarr.GetArtistAlbums(ctx, artistID)
	if err != nil {
		imp.debugf("could not list albums for cleanup: %v", err)
		return
	}

	keep := keepID
	if keep == 0 && keepForeignID != "" {
		for _, a := range albums {
			if a.ForeignAlbumID == keepForeignID {
				keep = a.ID
				break
			}
		}
	}
	if keep == 0 && keepTitle != "" {
		wanted := textutil.NormalizeTitleForMatching(keepTitle)
		for _, a := range albums {
			if strings.Contains(textutil.NormalizeTitleForMatching(a.Title), wanted) {
				keep = a.ID
				break
			}
		}
	}

	for _, a := range albums {
		if !a.Monitored || a.ID == keep {
			continue
		}
		a.Monitored = false
		if err := imp.lidarr.UpdateAlbum(ctx, a); err != nil {
			imp.debugf("failed to unmonitor sibling album %d: %v", a.ID, err)
		}
	}
}

// classify maps a transport error to its retryable status code. Only
// the orchestrator assigns status codes, so this mapping lives here.
func classify(err error) status.Code {
	switch shared.HTTPStatusCode(err) {
	case 0:
		// Not an HTTP-level failure; fall through to inspection below.
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return status.ErrorTimeout
	default:
		return status.ErrorConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return status.ErrorTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return status.ErrorTimeout
	case strings.Contains(msg, "connection"), strings.Contains(msg, "refused"),
		strings.Contains(msg, "no such host"):
		return status.ErrorConnection
	case strings.Contains(msg, "unmarshal"), strings.Contains(msg, "invalid"):
		return status.ErrorInvalidData
	}
	return status.ErrorUnknown
}

func (imp *Importer) debugf(format string, args ...interface{}) {
	if imp.cfg.Debug {
		log.Printf("DEBUG: "+format, args...)
	}
}
