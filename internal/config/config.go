package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	RequestTimeout    = 2 * time.Minute
	DefaultMaxRetries = 3

	// MusicBrainz requires at least one second between requests.
	MusicBrainzDelayFloor = 1.0
)

// UserAgentOptions identifies this tool to the MusicBrainz API, which
// rejects anonymous clients.
type UserAgentOptions struct {
	AppName string `json:"app_name"`
	Version string `json:"version"`
	Contact string `json:"contact"`
}

// Configuration structure
type Config struct {
	LidarrBaseURL string `json:"LidarrBaseURL"`
	LidarrAPIKey  string `json:"LidarrAPIKey"`

	QualityProfileID  int    `json:"QualityProfileID"`
	MetadataProfileID int    `json:"MetadataProfileID"`
	RootFolderPath    string `json:"RootFolderPath"`

	// Delays are seconds; fractional values are allowed.
	MusicBrainzDelay   float64 `json:"MusicBrainzDelay"`
	UseMusicBrainz     bool    `json:"UseMusicBrainz"`
	LidarrRequestDelay float64 `json:"LidarrRequestDelay"`
	MaxRetries         int     `json:"MaxRetries"`
	RetryDelay         float64 `json:"RetryDelay"`
	APIErrorDelay      float64 `json:"APIErrorDelay"`

	BatchSize  int     `json:"BatchSize"`
	BatchPause float64 `json:"BatchPause"`

	MusicBrainzUserAgent UserAgentOptions `json:"MusicBrainzUserAgent"`

	// ArtistAliases maps a lowercase artist name to alternate
	// spellings checked during library lookup.
	ArtistAliases map[string][]string `json:"ArtistAliases"`

	Debug bool `json:"Debug"`
}

// DefaultConfig returns a config with every field at its default.
func DefaultConfig() *Config {
	return &Config{
		LidarrBaseURL:      "http://localhost:8686",
		QualityProfileID:   1,
		MetadataProfileID:  1,
		RootFolderPath:     "/music",
		MusicBrainzDelay:   1.0,
		UseMusicBrainz:     true,
		LidarrRequestDelay: 2.0,
		MaxRetries:         3,
		RetryDelay:         5.0,
		APIErrorDelay:      5.0,
		BatchSize:          10,
		BatchPause:         10.0,
		MusicBrainzUserAgent: UserAgentOptions{
			AppName: "lidarr-music-importer",
			Version: "1.0",
			Contact: "rutty.stuart@gmail.com",
		},
		ArtistAliases: map[string][]string{
			"kanye west":   {"ye", "kanye"},
			"ye":           {"kanye west", "kanye"},
			"travis scott": {"travi$ scott"},
			"a$ap rocky":   {"asap rocky"},
			"mø":           {"mo", "mö"},
		},
	}
}

// ApplyDefaults fills zero-valued fields after loading a partial file.
func (cfg *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if cfg.LidarrBaseURL == "" {
		cfg.LidarrBaseURL = defaults.LidarrBaseURL
	}
	if cfg.QualityProfileID == 0 {
		cfg.QualityProfileID = defaults.QualityProfileID
	}
	if cfg.MetadataProfileID == 0 {
		cfg.MetadataProfileID = defaults.MetadataProfileID
	}
	if cfg.RootFolderPath == "" {
		cfg.RootFolderPath = defaults.RootFolderPath
	}
	if cfg.MusicBrainzDelay == 0 {
		cfg.MusicBrainzDelay = defaults.MusicBrainzDelay
	}
	if cfg.LidarrRequestDelay == 0 {
		cfg.LidarrRequestDelay = defaults.LidarrRequestDelay
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.APIErrorDelay == 0 {
		cfg.APIErrorDelay = defaults.APIErrorDelay
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.BatchPause == 0 {
		cfg.BatchPause = defaults.BatchPause
	}
	if cfg.MusicBrainzUserAgent.AppName == "" {
		cfg.MusicBrainzUserAgent = defaults.MusicBrainzUserAgent
	}
	if cfg.ArtistAliases == nil {
		cfg.ArtistAliases = defaults.ArtistAliases
	}
}

// Validate checks the required fields and rate-limit floor.
func (cfg *Config) Validate() error {
	if cfg.LidarrAPIKey == "" {
		return fmt.Errorf("LidarrAPIKey is required; set it in the config file")
	}
	if cfg.LidarrAPIKey == "YOUR_API_KEY_HERE" {
		return fmt.Errorf("please replace the placeholder LidarrAPIKey with your actual API key")
	}
	if cfg.MusicBrainzDelay < MusicBrainzDelayFloor {
		return fmt.Errorf("MusicBrainzDelay must be at least %.1f seconds to respect MusicBrainz rate limits", MusicBrainzDelayFloor)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// MusicBrainzInterval returns the MusicBrainz pacing interval, clamped
// to the one-second floor.
func (cfg *Config) MusicBrainzInterval() time.Duration {
	if cfg.MusicBrainzDelay < MusicBrainzDelayFloor {
		return seconds(MusicBrainzDelayFloor)
	}
	return seconds(cfg.MusicBrainzDelay)
}

// LidarrInterval returns the pacing interval for Lidarr requests.
func (cfg *Config) LidarrInterval() time.Duration {
	return seconds(cfg.LidarrRequestDelay)
}

// RetryInterval returns the base backoff delay for retries.
func (cfg *Config) RetryInterval() time.Duration {
	return seconds(cfg.RetryDelay)
}

// UserAgent formats the MusicBrainz user agent string.
func (cfg *Config) UserAgent() string {
	ua := cfg.MusicBrainzUserAgent
	return fmt.Sprintf("%s/%s ( %s )", ua.AppName, ua.Version, ua.Contact)
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// Start from defaults so omitted fields keep their default values.
	*config = *DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
