package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/StuartRutty/lidarr-music-importer/internal/api/lidarr"
	"github.com/StuartRutty/lidarr-music-importer/internal/api/musicbrainz"
	"github.com/StuartRutty/lidarr-music-importer/internal/config"
	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
)

const toolVersion = "1.0.0"

const defaultConfigPath = "config/config.json"

// NewRootCommand creates the root command with its subcommands
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lidarr-importer",
		Version: toolVersion,
		Short:   "Import a CSV of albums into Lidarr, resolved through MusicBrainz.",
		Long: fmt.Sprintf(`Lidarr Music Importer (v%s)

Reads a CSV of (artist, album) rows, resolves each pair against the
MusicBrainz catalog, and adds/monitors exactly that album in Lidarr.
Every row's outcome is written back to a status column, so interrupted
or partially failed runs can be resumed safely.`, toolVersion),
	}

	cmd.PersistentFlags().String("config", defaultConfigPath, "Path to the config file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-file", "", "Also write log output to this file")

	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewStatusCommand())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	shared.InitializeColors()
	return NewRootCommand().Execute()
}

// loadConfig reads and validates the config file, creating a default
// one on first run so the user only has to fill in the API key.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := &config.Config{}
	if err := config.LoadConfig(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if serr := config.SaveConfig(path, config.DefaultConfig()); serr != nil {
				return nil, fmt.Errorf("failed to create default config: %w", serr)
			}
			return nil, fmt.Errorf("created %s; fill in LidarrAPIKey and run again", path)
		}
		return nil, err
	}
	cfg.ApplyDefaults()

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging tees log output to --log-file when given.
func setupLogging(cmd *cobra.Command) (func(), error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		return func() {}, nil
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, fh))
	return func() {
		log.SetOutput(os.Stderr)
		fh.Close()
	}, nil
}

// buildClients constructs the two API clients from the loaded config.
func buildClients(cfg *config.Config) (*musicbrainz.Client, *lidarr.Client) {
	mbCfg := musicbrainz.DefaultConfig()
	mbCfg.UserAgent = cfg.UserAgent()
	mbCfg.RateLimit = cfg.MusicBrainzInterval()
	mbCfg.MaxRetries = cfg.MaxRetries
	mbCfg.InitialDelay = cfg.RetryInterval()
	mbCfg.Debug = cfg.Debug
	mb := musicbrainz.NewClientWithConfig(mbCfg)

	ldCfg := lidarr.DefaultConfig()
	ldCfg.BaseURL = cfg.LidarrBaseURL
	ldCfg.APIKey = cfg.LidarrAPIKey
	ldCfg.QualityProfileID = cfg.QualityProfileID
	ldCfg.MetadataProfileID = cfg.MetadataProfileID
	ldCfg.RootFolderPath = cfg.RootFolderPath
	ldCfg.RateLimit = cfg.LidarrInterval()
	ldCfg.MaxRetries = cfg.MaxRetries
	ldCfg.InitialDelay = cfg.RetryInterval()
	ldCfg.Debug = cfg.Debug
	ld := lidarr.NewClient(ldCfg)

	return mb, ld
}
