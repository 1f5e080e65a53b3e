// Package lidarr is a typed client for the Lidarr Web Service API v1:
// artist and album lookup, creation, monitoring updates, and
// asynchronous command submission. Every request carries the API key
// header and is paced by a shared rate limiter.
package lidarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 500 * time.Millisecond
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
)

// ErrAlreadyExists signals that Lidarr rejected a create because the
// entity is already in the library. Callers treat it as a benign race.
var ErrAlreadyExists = errors.New("already exists in Lidarr")

// Config holds configuration for the Lidarr API client
type Config struct {
	BaseURL           string        `json:"base_url"`
	APIKey            string        `json:"api_key"`
	QualityProfileID  int           `json:"quality_profile_id"`
	MetadataProfileID int           `json:"metadata_profile_id"`
	RootFolderPath    string        `json:"root_folder_path"`
	Timeout           time.Duration `json:"timeout"`
	MaxRetries        int           `json:"max_retries"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	RateLimit         time.Duration `json:"rate_limit"`
	Debug             bool          `json:"debug"`
}

// Client represents a Lidarr API client
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *shared.RateLimiter
}

// DefaultConfig returns sensible defaults for the Lidarr API client
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8686",
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
	}
}

// NewClient creates a new Lidarr API client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaultRateLimit
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: shared.NewRateLimiter(config.RateLimit),
	}
}

// SetRateLimiter replaces the limiter, used by tests to inject a fake clock.
func (c *Client) SetRateLimiter(rl *shared.RateLimiter) {
	c.rateLimiter = rl
}

// QualityProfileID returns the configured default quality profile.
func (c *Client) QualityProfileID() int { return c.config.QualityProfileID }

// MetadataProfileID returns the configured default metadata profile.
func (c *Client) MetadataProfileID() int { return c.config.MetadataProfileID }

// RootFolderPath returns the configured music root folder.
func (c *Client) RootFolderPath() string { return c.config.RootFolderPath }

func (c *Client) apiURL(path string, query url.Values) string {
	u := strings.TrimRight(c.config.BaseURL, "/") + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes one request with rate limiting and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	c.rateLimiter.Wait()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := string(respBody)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// doWithRetry wraps do with the shared backoff policy for transient
// HTTP failures.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	return shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			return c.do(ctx, method, path, query, payload, out)
		},
		c.config.Debug,
	)
}

// GetArtists returns every artist in the library.
func (c *Client) GetArtists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	if err := c.doWithRetry(ctx, "GET", "/artist", nil, nil, &artists); err != nil {
		return nil, fmt.Errorf("failed to get artists: %w", err)
	}
	return artists, nil
}

// GetArtistByID fetches one library artist.
func (c *Client) GetArtistByID(ctx context.Context, id int) (*Artist, error) {
	var artist Artist
	if err := c.doWithRetry(ctx, "GET", "/artist/"+strconv.Itoa(id), nil, nil, &artist); err != nil {
		return nil, fmt.Errorf("failed to get artist %d: %w", id, err)
	}
	return &artist, nil
}

// LookupArtist queries Lidarr's metadata lookup. A MusicBrainz id, when
// available, takes precedence over the name: the "mbid:" prefixed form
// is tried first, then the raw id, then the plain name search.
func (c *Client) LookupArtist(ctx context.Context, name, mbid string) (*Artist, error) {
	if mbid != "" {
		for _, term := range []string{"mbid:" + mbid, mbid} {
			results, err := c.lookupArtistTerm(ctx, term)
			if err != nil {
				continue
			}
			if len(results) > 0 {
				return &results[0], nil
			}
		}
	}

	results, err := c.lookupArtistTerm(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("artist lookup failed for %q: %w", name, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (c *Client) lookupArtistTerm(ctx context.Context, term string) ([]Artist, error) {
	query := url.Values{"term": {term}}
	var results []Artist
	if err := c.doWithRetry(ctx, "GET", "/artist/lookup", query, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddArtist creates a library artist from lookup data, applying the
// configured profiles and root folder. Returns ErrAlreadyExists when
// Lidarr reports a concurrent add.
func (c *Client) AddArtist(ctx context.Context, artist Artist, monitor, search bool) (*Artist, error) {
	artist.QualityProfileID = c.config.QualityProfileID
	artist.MetadataProfileID = c.config.MetadataProfileID
	artist.RootFolderPath = c.config.RootFolderPath
	artist.Monitored = monitor
	artist.AddOptions = &AddArtistOptions{SearchForMissingAlbums: search}

	var added Artist
	err := c.doWithRetry(ctx, "POST", "/artist", nil, artist, &added)
	if err != nil {
		if isAlreadyExists(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to add artist %q: %w", artist.ArtistName, err)
	}
	return &added, nil
}

// GetArtistAlbums returns every album Lidarr knows for one artist.
func (c *Client) GetArtistAlbums(ctx context.Context, artistID int) ([]Album, error) {
	query := url.Values{"artistId": {strconv.Itoa(artistID)}}
	var albums []Album
	if err := c.doWithRetry(ctx, "GET", "/album", query, nil, &albums); err != nil {
		return nil, fmt.Errorf("failed to get albums for artist %d: %w", artistID, err)
	}
	return albums, nil
}

// GetAllAlbums returns every album in the library.
func (c *Client) GetAllAlbums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := c.doWithRetry(ctx, "GET", "/album", nil, nil, &albums); err != nil {
		return nil, fmt.Errorf("failed to get all albums: %w", err)
	}
	return albums, nil
}

// LookupAlbumByMBID asks Lidarr's metadata lookup for a release group
// by its MusicBrainz id, bypassing name search entirely.
func (c *Client) LookupAlbumByMBID(ctx context.Context, mbid string) ([]Album, error) {
	query := url.Values{"term": {"lidarr:" + mbid}}
	var results []Album
	if err := c.doWithRetry(ctx, "GET", "/album/lookup", query, nil, &results); err != nil {
		return nil, fmt.Errorf("album lookup failed for MBID %s: %w", mbid, err)
	}
	return results, nil
}

// UpdateAlbum writes back a modified album, typically to toggle its
// monitored flag.
func (c *Client) UpdateAlbum(ctx context.Context, album Album) error {
	if album.ID == 0 {
		return fmt.Errorf("cannot update album without an id")
	}
	if err := c.doWithRetry(ctx, "PUT", "/album/"+strconv.Itoa(album.ID), nil, album, nil); err != nil {
		return fmt.Errorf("failed to update album %d: %w", album.ID, err)
	}
	return nil
}

// AddAlbum creates an album entry. Returns ErrAlreadyExists on a
// conflict or an "already exists" rejection.
func (c *Client) AddAlbum(ctx context.Context, album Album, monitored, search bool) (*Album, error) {
	album.Monitored = monitored
	album.AddOptions = &AddAlbumOptions{SearchForMissingAlbums: search}

	var added Album
	err := c.doWithRetry(ctx, "POST", "/album", nil, album, &added)
	if err != nil {
		if isAlreadyExists(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to add album %q: %w", album.Title, err)
	}
	return &added, nil
}

// SearchForAlbum triggers Lidarr's file search for one album.
func (c *Client) SearchForAlbum(ctx context.Context, albumID int) error {
	cmd := Command{Name: "AlbumSearch", AlbumIDs: []int{albumID}}
	if err := c.doWithRetry(ctx, "POST", "/command", nil, cmd, nil); err != nil {
		return fmt.Errorf("failed to trigger search for album %d: %w", albumID, err)
	}
	return nil
}

// RefreshArtist triggers a metadata refresh, updating the artist's
// album list from the catalog.
func (c *Client) RefreshArtist(ctx context.Context, artistID int) error {
	cmd := Command{Name: "RefreshArtist", ArtistID: artistID}
	if err := c.doWithRetry(ctx, "POST", "/command", nil, cmd, nil); err != nil {
		return fmt.Errorf("failed to trigger refresh for artist %d: %w", artistID, err)
	}
	return nil
}

// isAlreadyExists recognizes Lidarr's two ways of reporting a duplicate
// create: a 409 conflict, or a 400 whose body mentions the duplicate.
func isAlreadyExists(err error) bool {
	switch shared.HTTPStatusCode(err) {
	case http.StatusConflict:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(err.Error()), "already exists") ||
			strings.Contains(strings.ToLower(err.Error()), "already been added")
	}
	return false
}
