package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StuartRutty/lidarr-music-importer/internal/csvfile"
	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
	"github.com/StuartRutty/lidarr-music-importer/internal/status"
)

// NewStatusCommand creates the status summary command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [csv-file]",
		Short: "Summarize the status column of a work CSV.",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatusCommand,
	}
}

func runStatusCommand(cmd *cobra.Command, args []string) error {
	handler, err := csvfile.NewHandler(args[0])
	if err != nil {
		return err
	}
	items, err := handler.ReadItems()
	if err != nil {
		return err
	}
	summary := csvfile.StatusSummary(items)

	shared.ColorInfo.Printf("%d item(s) in %s\n\n", len(items), args[0])
	if n := summary[""]; n > 0 {
		fmt.Printf("  %-26s %d\n", "(not processed)", n)
	}
	for _, code := range status.All() {
		n := summary[code]
		if n == 0 {
			continue
		}
		painter := shared.ColorSkip
		switch {
		case code.IsSuccess() || code == status.AlreadyMonitored:
			painter = shared.ColorSuccess
		case code.IsPending():
			painter = shared.ColorWarning
		case code.IsRetryableError():
			painter = shared.ColorError
		}
		painter.Printf("  %-26s %d\n", code, n)
	}

	retry := 0
	for _, item := range items {
		if item.Status.ShouldRetry() {
			retry++
		}
	}
	fmt.Printf("\n%d item(s) would be processed on the next run\n", retry)
	return nil
}
