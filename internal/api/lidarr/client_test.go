package lidarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
)

func newTestClient(serverURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = serverURL
	cfg.APIKey = "test-key"
	cfg.QualityProfileID = 2
	cfg.MetadataProfileID = 3
	cfg.RootFolderPath = "/music"
	cfg.MaxRetries = 1
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	c := NewClient(cfg)

	now := time.Unix(0, 0)
	c.SetRateLimiter(shared.NewRateLimiterWithClock(time.Millisecond,
		func() time.Time { return now },
		func(d time.Duration) { now = now.Add(d) }))
	return c
}

func TestAPIKeyHeaderSent(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).GetArtists(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want test-key", gotKey)
	}
}

func TestGetArtists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/artist" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id":1,"artistName":"Eevee","foreignArtistId":"mbid-eevee","monitored":true}]`)
	}))
	defer server.Close()

	artists, err := newTestClient(server.URL).GetArtists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(artists) != 1 || artists[0].ArtistName != "Eevee" || artists[0].ForeignArtistID != "mbid-eevee" {
		t.Errorf("unexpected artists: %+v", artists)
	}
}

func TestLookupArtistPrefersMBID(t *testing.T) {
	var terms []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		terms = append(terms, term)
		if term == "mbid:mbid-eevee" {
			fmt.Fprint(w, `[{"artistName":"Eevee","foreignArtistId":"mbid-eevee"}]`)
			return
		}
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	artist, err := newTestClient(server.URL).LookupArtist(context.Background(), "Eevee", "mbid-eevee")
	if err != nil {
		t.Fatal(err)
	}
	if artist == nil || artist.ForeignArtistID != "mbid-eevee" {
		t.Fatalf("unexpected artist: %+v", artist)
	}
	if len(terms) != 1 || terms[0] != "mbid:mbid-eevee" {
		t.Errorf("expected a single mbid-prefixed lookup, got %v", terms)
	}
}

func TestLookupArtistFallsBackToName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "Eevee" {
			fmt.Fprint(w, `[{"artistName":"Eevee"}]`)
			return
		}
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	artist, err := newTestClient(server.URL).LookupArtist(context.Background(), "Eevee", "mbid-miss")
	if err != nil {
		t.Fatal(err)
	}
	if artist == nil || artist.ArtistName != "Eevee" {
		t.Errorf("expected name fallback to find the artist, got %+v", artist)
	}
}

func TestLookupArtistNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	artist, err := newTestClient(server.URL).LookupArtist(context.Background(), "Nobody", "")
	if err != nil {
		t.Fatal(err)
	}
	if artist != nil {
		t.Errorf("expected nil for no results, got %+v", artist)
	}
}

func TestAddArtistAppliesProfiles(t *testing.T) {
	var received Artist
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatal(err)
		}
		received.ID = 42
		json.NewEncoder(w).Encode(received)
	}))
	defer server.Close()

	added, err := newTestClient(server.URL).AddArtist(context.Background(),
		Artist{ArtistName: "Eevee", ForeignArtistID: "mbid-eevee"}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if added.ID != 42 {
		t.Errorf("expected library id from response, got %+v", added)
	}
	if received.QualityProfileID != 2 || received.MetadataProfileID != 3 || received.RootFolderPath != "/music" {
		t.Errorf("profiles not applied: %+v", received)
	}
	if received.Monitored {
		t.Error("artist should be added unmonitored")
	}
	if received.AddOptions == nil || received.AddOptions.SearchForMissingAlbums {
		t.Errorf("auto-search should be disabled: %+v", received.AddOptions)
	}
}

func TestAddArtistAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `[{"errorMessage":"This artist has already been added"}]`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AddArtist(context.Background(), Artist{ArtistName: "Eevee"}, false, false)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddAlbumConflictIsAlreadyExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).AddAlbum(context.Background(), Album{Title: "Seeds"}, true, true)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists on 409, got %v", err)
	}
}

func TestUpdateAlbumRequiresID(t *testing.T) {
	if err := newTestClient("http://unused").UpdateAlbum(context.Background(), Album{Title: "Seeds"}); err == nil {
		t.Error("expected error for album without id")
	}
}

func TestUpdateAlbumPutsToAlbumPath(t *testing.T) {
	var path, method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateAlbum(context.Background(), Album{ID: 7, Title: "Seeds"})
	if err != nil {
		t.Fatal(err)
	}
	if method != "PUT" || path != "/api/v1/album/7" {
		t.Errorf("got %s %s, want PUT /api/v1/album/7", method, path)
	}
}

func TestCommands(t *testing.T) {
	var received Command
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/command" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if err := c.SearchForAlbum(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if received.Name != "AlbumSearch" || len(received.AlbumIDs) != 1 || received.AlbumIDs[0] != 7 {
		t.Errorf("unexpected command: %+v", received)
	}

	if err := c.RefreshArtist(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if received.Name != "RefreshArtist" || received.ArtistID != 3 {
		t.Errorf("unexpected command: %+v", received)
	}
}

func TestLookupAlbumByMBIDUsesLidarrTerm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") != "lidarr:mbid-seeds" {
			t.Errorf("unexpected term %q", r.URL.Query().Get("term"))
		}
		fmt.Fprint(w, `[{"title":"Seeds","foreignAlbumId":"mbid-seeds"}]`)
	}))
	defer server.Close()

	albums, err := newTestClient(server.URL).LookupAlbumByMBID(context.Background(), "mbid-seeds")
	if err != nil {
		t.Fatal(err)
	}
	if len(albums) != 1 || albums[0].ForeignAlbumID != "mbid-seeds" {
		t.Errorf("unexpected albums: %+v", albums)
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	c.config.MaxRetries = 3
	if _, err := c.GetArtists(context.Background()); err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
