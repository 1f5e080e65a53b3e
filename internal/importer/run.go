package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/StuartRutty/lidarr-music-importer/internal/csvfile"
	"github.com/StuartRutty/lidarr-music-importer/internal/shared"
	"github.com/StuartRutty/lidarr-music-importer/internal/status"
)

// Options selects and paces the work for one run.
type Options struct {
	// DryRun marks every selected item dry_run without API calls.
	DryRun bool

	// SkipCompleted drops items whose status is success-class or a
	// permanent skip, keeping retryable and never-attempted work.
	SkipCompleted bool

	// Statuses / NotStatuses filter by status tokens. Besides the
	// persisted codes, "new" selects blank statuses and "failed"
	// selects everything ShouldRetry would re-run.
	Statuses    []string
	NotStatuses []string

	// ArtistFilter / AlbumFilter keep items whose field contains the
	// given substring, case-insensitively.
	ArtistFilter string
	AlbumFilter  string

	// MaxItems caps the number of items processed; 0 means no cap.
	MaxItems int

	// BatchSize / BatchPause insert a cooperative pause after every
	// BatchSize items. BatchSize 0 disables batching.
	BatchSize  int
	BatchPause time.Duration

	// RequestDelay sleeps between items, on top of the per-client rate
	// limiters.
	RequestDelay time.Duration

	// Progress renders a progress bar over the selected items.
	Progress bool
}

// statusToken reports whether an item's status matches one filter
// token. "new" is the blank status; "failed" covers everything a re-run
// should pick up again.
func statusToken(code status.Code, token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "new":
		return code == ""
	case "failed":
		return code.ShouldRetry()
	default:
		return string(code) == strings.TrimSpace(token)
	}
}

func matchesAny(code status.Code, tokens []string) bool {
	for _, token := range tokens {
		if statusToken(code, token) {
			return true
		}
	}
	return false
}

// FilterItems applies the selection options in order: skip-completed,
// status include/exclude, artist/album substring, then the item cap.
func FilterItems(items []csvfile.WorkItem, opts Options) []csvfile.WorkItem {
	var out []csvfile.WorkItem
	for _, item := range items {
		if opts.SkipCompleted && (item.Status.IsSuccess() || item.Status.IsPermanentSkip()) {
			continue
		}
		if len(opts.Statuses) > 0 && !matchesAny(item.Status, opts.Statuses) {
			continue
		}
		if len(opts.NotStatuses) > 0 && matchesAny(item.Status, opts.NotStatuses) {
			continue
		}
		if opts.ArtistFilter != "" &&
			!strings.Contains(strings.ToLower(item.Artist), strings.ToLower(opts.ArtistFilter)) {
			continue
		}
		if opts.AlbumFilter != "" &&
			!strings.Contains(strings.ToLower(item.Album), strings.ToLower(opts.AlbumFilter)) {
			continue
		}
		out = append(out, item)
		if opts.MaxItems > 0 && len(out) >= opts.MaxItems {
			break
		}
	}
	return out
}

// Summary aggregates the statuses of one run.
type Summary struct {
	Processed int
	Succeeded int
	Pending   int
	Skipped   int
	Errors    int
	DryRun    int
}

func (s *Summary) record(code status.Code) {
	s.Processed++
	switch {
	case code == status.DryRun:
		s.DryRun++
	case code.IsSuccess() || code == status.AlreadyMonitored:
		s.Succeeded++
	case code.IsPending():
		s.Pending++
	case code.IsRetryableError():
		s.Errors++
	default:
		s.Skipped++
	}
}

// Print writes the run summary with the shared color palette.
func (s Summary) Print() {
	fmt.Println()
	shared.ColorInfo.Printf("Processed %d item(s)\n", s.Processed)
	if s.Succeeded > 0 {
		shared.ColorSuccess.Printf("  succeeded:  %d\n", s.Succeeded)
	}
	if s.Pending > 0 {
		shared.ColorWarning.Printf("  pending:    %d\n", s.Pending)
	}
	if s.Skipped > 0 {
		shared.ColorSkip.Printf("  skipped:    %d\n", s.Skipped)
	}
	if s.Errors > 0 {
		shared.ColorError.Printf("  errors:     %d\n", s.Errors)
	}
	if s.DryRun > 0 {
		shared.ColorInfo.Printf("  dry run:    %d\n", s.DryRun)
	}
}

// Runner drives the queue: read, filter, process sequentially, write
// each status back immediately so an interrupted run stays resumable.
type Runner struct {
	Importer *Importer
	CSV      *csvfile.Handler
	Options  Options

	// sleep is replaceable for tests.
	sleep func(time.Duration)
}

// NewRunner wires a runner over an importer and a CSV queue.
func NewRunner(imp *Importer, csv *csvfile.Handler, opts Options) *Runner {
	return &Runner{Importer: imp, CSV: csv, Options: opts, sleep: time.Sleep}
}

// Run processes the selected items in order and returns the summary.
// Cancellation is cooperative: the context is checked between items,
// never mid-item.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	items, err := r.CSV.ReadItems()
	if err != nil {
		return summary, err
	}
	selected := FilterItems(items, r.Options)
	if len(selected) == 0 {
		return summary, nil
	}

	var bar *pb.ProgressBar
	if r.Options.Progress {
		bar = pb.StartNew(len(selected))
		defer bar.Finish()
	}

	for i := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item := &selected[i]

		var code status.Code
		if r.Options.DryRun {
			code = status.DryRun
		} else {
			code = r.Importer.ProcessItem(ctx, item)
		}
		item.Status = code
		summary.record(code)

		if err := r.CSV.UpdateSingleStatus(item.Artist, item.Album, code); err != nil {
			shared.ColorWarning.Printf("could not write status for %s - %s: %v\n",
				item.Artist, item.Album, err)
		}
		if bar != nil {
			bar.Increment()
		}

		last := i == len(selected)-1
		if !last && !r.Options.DryRun {
			if r.Options.RequestDelay > 0 {
				r.sleep(r.Options.RequestDelay)
			}
			if r.Options.BatchSize > 0 && (i+1)%r.Options.BatchSize == 0 &&
				r.Options.BatchPause > 0 {
				shared.ColorInfo.Printf("batch of %d done, pausing %s\n",
					r.Options.BatchSize, r.Options.BatchPause)
				r.sleep(r.Options.BatchPause)
			}
		}
	}
	return summary, nil
}
