// Package musicbrainz resolves artist names and album titles against
// the MusicBrainz Web Service API v2. Search is fuzzy and free-text, so
// the resolvers here issue progressively looser query cascades, filter
// candidates by artist identity, and disambiguate with a fixed priority
// of tie-break rules.
//
// MusicBrainz Terms of Service require at most one request per second
// and a proper user agent: https://musicbrainz.org/doc/MusicBrainz_API/Rate_Limiting
package musicbrainz

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
)

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2/"
	defaultUserAgent    = "lidarr-music-importer/1.0 ( rutty.stuart@gmail.com )"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = time.Second // MusicBrainz TOS: 1 request per second
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 60 * time.Second
	defaultSearchLimit  = 5
)

// Config holds configuration for the MusicBrainz API client
type Config struct {
	BaseURL      string        `json:"base_url"`
	UserAgent    string        `json:"user_agent"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	Debug        bool          `json:"debug"`
}

// Client represents a MusicBrainz API client
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *shared.RateLimiter
}

// DefaultConfig returns sensible defaults for the MusicBrainz API client
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		Debug:        false,
	}
}

// NewClient creates a new MusicBrainz API client with default configuration
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new MusicBrainz API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	if config.RateLimit < defaultRateLimit {
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

// SetDebug enables or disables debug logging for the client
func (c *Client) SetDebug(debug bool) {
	c.config.Debug = debug
}

// makeRequest creates and executes an HTTP request with proper headers
func (c *Client) makeRequest(ctx context.Context, path string) (*http.Response, error) {
	reqURL, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/xml, application/json")

	return c.httpClient.Do(req)
}

// get makes a single GET request to the MusicBrainz API
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	c.rateLimiter.Wait()

	resp, err := c.makeRequest(ctx, path)
	if err != nil {
		// Handle network timeouts
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > 200 {
			message = message[:200] + "..."
		}
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	return body, nil
}

// getWithRetry makes a GET request with retry logic
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var result []byte
	var err error

	retryErr := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxRetries,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			result, err = c.get(ctx, path)
			return err
		},
		c.config.Debug,
	)

	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// search issues a free-text search against an entity endpoint and
// returns the raw response body, which may be XML or JSON.
func (c *Client) search(ctx context.Context, entity, query string, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	path := fmt.Sprintf("%s?query=%s&limit=%d", entity, url.QueryEscape(query), limit)
	return c.getWithRetry(ctx, path)
}
