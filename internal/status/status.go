// Package status defines the per-item outcome taxonomy persisted to the
// CSV status column. Codes divide into success, pending (work started
// but not finished), permanent skips (re-running will not help) and
// retryable errors (transient, worth another run).
package status

// Code is a persisted processing outcome.
type Code string

const (
	// Success outcomes.
	Success          Code = "success"
	AlreadyMonitored Code = "already_monitored"

	// Pending outcomes: the item was handed to the library but the
	// final state is not yet observable.
	PendingRefresh Code = "pending_refresh"
	PendingImport  Code = "pending_import"

	// Permanent skips.
	Skip                Code = "skip"
	SkipNoMusicBrainz   Code = "skip_no_musicbrainz"
	SkipNoArtistMatch   Code = "skip_no_artist_match"
	SkipAPIError        Code = "skip_api_error"
	SkipArtistExists    Code = "skip_artist_exists"
	SkipAlbumNoResults  Code = "skip_album_mb_noresults"

	// Retryable errors.
	ErrorConnection  Code = "error_connection"
	ErrorTimeout     Code = "error_timeout"
	ErrorInvalidData Code = "error_invalid_data"
	ErrorUnknown     Code = "error_unknown"

	// DryRun marks items inspected without any API calls.
	DryRun Code = "dry_run"
)

// IsSuccess reports whether the item completed fully.
func (c Code) IsSuccess() bool {
	return c == Success
}

// IsPending reports whether the item is waiting on the library service.
func (c Code) IsPending() bool {
	return c == PendingRefresh || c == PendingImport
}

// IsPermanentSkip reports whether re-processing the item cannot change
// the outcome. already_monitored counts: the album is in the library.
func (c Code) IsPermanentSkip() bool {
	switch c {
	case Skip, SkipNoMusicBrainz, SkipNoArtistMatch, SkipAPIError,
		SkipArtistExists, SkipAlbumNoResults, AlreadyMonitored:
		return true
	}
	return false
}

// IsRetryableError reports whether the failure was transient.
func (c Code) IsRetryableError() bool {
	switch c {
	case ErrorConnection, ErrorTimeout, ErrorInvalidData, ErrorUnknown:
		return true
	}
	return false
}

// ShouldRetry reports whether a re-run should process the item again:
// never-attempted items, transient failures and pending hand-offs.
func (c Code) ShouldRetry() bool {
	return c == "" || c.IsRetryableError() || c.IsPending()
}

// All lists every persisted code, for CLI validation and summaries.
func All() []Code {
	return []Code{
		Success, AlreadyMonitored,
		PendingRefresh, PendingImport,
		Skip, SkipNoMusicBrainz, SkipNoArtistMatch, SkipAPIError,
		SkipArtistExists, SkipAlbumNoResults,
		ErrorConnection, ErrorTimeout, ErrorInvalidData, ErrorUnknown,
		DryRun,
	}
}

// Valid reports whether s names a known code.
func Valid(s string) bool {
	for _, c := range All() {
		if string(c) == s {
			return true
		}
	}
	return false
}
