package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/StuartRutty/lidarr-music-importer/internal/api/musicbrainz"
	"github.com/StuartRutty/lidarr-music-importer/internal/csvfile"
	"github.com/StuartRutty/lidarr-music-importer/internal/importer"
	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
)

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [csv-file]",
		Short: "Process a CSV of (artist, album) rows against Lidarr.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCommand,
	}

	cmd.Flags().Bool("dry-run", false, "Mark selected rows without calling any API")
	cmd.Flags().Int("max-items", 0, "Process at most this many rows (0 = no limit)")
	cmd.Flags().Bool("skip-completed", true, "Skip rows already succeeded or permanently skipped")
	cmd.Flags().StringSlice("status", nil, "Only process rows with these statuses (also: new, failed)")
	cmd.Flags().StringSlice("not-status", nil, "Skip rows with these statuses (also: new, failed)")
	cmd.Flags().Bool("skip-existing-artists", false, "Mark rows skip_artist_exists when the artist is already in Lidarr")
	cmd.Flags().String("artist", "", "Only process rows whose artist contains this text")
	cmd.Flags().String("album", "", "Only process rows whose album contains this text")
	cmd.Flags().Int("batch-size", 0, "Pause after every N rows (0 = config value)")
	cmd.Flags().Bool("no-batch-pause", false, "Disable the pause between batches")
	cmd.Flags().Float64("request-delay", 0, "Extra seconds to wait between rows")

	return cmd
}

func runImportCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	handler, err := csvfile.NewHandler(args[0])
	if err != nil {
		return err
	}

	opts := importer.Options{}
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.MaxItems, _ = cmd.Flags().GetInt("max-items")
	opts.SkipCompleted, _ = cmd.Flags().GetBool("skip-completed")
	opts.Statuses, _ = cmd.Flags().GetStringSlice("status")
	opts.NotStatuses, _ = cmd.Flags().GetStringSlice("not-status")
	opts.ArtistFilter, _ = cmd.Flags().GetString("artist")
	opts.AlbumFilter, _ = cmd.Flags().GetString("album")
	opts.Progress = shared.IsTTY() && !cfg.Debug

	opts.BatchSize = cfg.BatchSize
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		opts.BatchSize = n
	}
	if noPause, _ := cmd.Flags().GetBool("no-batch-pause"); noPause {
		opts.BatchSize = 0
	} else {
		opts.BatchPause = time.Duration(cfg.BatchPause * float64(time.Second))
	}
	if delay, _ := cmd.Flags().GetFloat64("request-delay"); delay > 0 {
		opts.RequestDelay = time.Duration(delay * float64(time.Second))
	}

	mb, ld := buildClients(cfg)
	var mbClient *musicbrainz.Client
	if cfg.UseMusicBrainz {
		mbClient = mb
	}
	imp := importer.New(cfg, mbClient, ld)
	imp.SkipExistingArtists, _ = cmd.Flags().GetBool("skip-existing-artists")
	runner := importer.NewRunner(imp, handler, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	summary.Print()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			shared.ColorWarning.Println("interrupted; statuses written so far are saved")
			return nil
		}
		return err
	}
	return nil
}
