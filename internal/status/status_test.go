package status

import "testing"

func TestIsSuccess(t *testing.T) {
	if !Success.IsSuccess() {
		t.Error("success should be success")
	}
	if AlreadyMonitored.IsSuccess() {
		t.Error("already_monitored is reported separately, not as success")
	}
}

func TestIsPermanentSkip(t *testing.T) {
	permanent := []Code{
		Skip, SkipNoMusicBrainz, SkipNoArtistMatch, SkipAPIError,
		SkipArtistExists, SkipAlbumNoResults, AlreadyMonitored,
	}
	for _, c := range permanent {
		if !c.IsPermanentSkip() {
			t.Errorf("%s should be a permanent skip", c)
		}
	}
	for _, c := range []Code{Success, PendingRefresh, ErrorConnection, DryRun, ""} {
		if c.IsPermanentSkip() {
			t.Errorf("%s should not be a permanent skip", c)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	retry := []Code{"", ErrorConnection, ErrorTimeout, ErrorInvalidData, ErrorUnknown, PendingRefresh, PendingImport}
	for _, c := range retry {
		if !c.ShouldRetry() {
			t.Errorf("%q should be retried", c)
		}
	}
	noRetry := []Code{Success, AlreadyMonitored, Skip, SkipNoArtistMatch, SkipAlbumNoResults}
	for _, c := range noRetry {
		if c.ShouldRetry() {
			t.Errorf("%q should not be retried", c)
		}
	}
}

func TestValid(t *testing.T) {
	for _, c := range All() {
		if !Valid(string(c)) {
			t.Errorf("%s should be valid", c)
		}
	}
	if Valid("not_a_status") {
		t.Error("unknown code should be invalid")
	}
	if Valid("") {
		t.Error("empty string is not a named code")
	}
}
