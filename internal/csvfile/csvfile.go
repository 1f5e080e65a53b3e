// Package csvfile reads and updates the CSV work queue. Each row is an
// (artist, album) pair with an optional status column that makes runs
// resumable; extra columns, including enrichment columns carrying
// MusicBrainz ids, are preserved on rewrite.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/StuartRutty/lidarr-music-importer/internal/status"
)

// WorkItem is one row of the queue.
type WorkItem struct {
	Artist      string
	Album       string
	Status      status.Code
	MBArtistID  string
	MBReleaseID string
	RowNum      int
}

// Key identifies the item's CSV row for status write-back.
func (w WorkItem) Key() string {
	return w.Artist + "|" + w.Album
}

// Handler reads and rewrites one CSV file in place.
type Handler struct {
	Path string

	hasStatusColumn bool
}

// NewHandler returns a handler for path, which must already exist.
func NewHandler(path string) (*Handler, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("CSV file not found: %s", path)
	}
	return &Handler{Path: path}, nil
}

// HasStatusColumn reports whether the last read found a status column.
func (h *Handler) HasStatusColumn() bool {
	return h.hasStatusColumn
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

func readAll(path string) (header []string, rows [][]string, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return []string{"artist", "album"}, nil, nil
	}
	return records[0], records[1:], nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadItems reads all rows with both artist and album present. Rows with
// enrichment columns carry their MusicBrainz ids through.
func (h *Handler) ReadItems() ([]WorkItem, error) {
	header, rows, err := readAll(h.Path)
	if err != nil {
		return nil, err
	}

	artistIdx := columnIndex(header, "artist")
	albumIdx := columnIndex(header, "album")
	if artistIdx < 0 || albumIdx < 0 {
		return nil, fmt.Errorf("CSV must have artist and album columns, got %v", header)
	}
	statusIdx := columnIndex(header, "status")
	h.hasStatusColumn = statusIdx >= 0

	mbArtistIdx := columnIndex(header, "mb_artist_id")
	mbReleaseIdx := columnIndex(header, "mb_release_id")

	var items []WorkItem
	for i, row := range rows {
		artist := cell(row, artistIdx)
		album := cell(row, albumIdx)
		if artist == "" || album == "" {
			continue
		}
		items = append(items, WorkItem{
			Artist:      artist,
			Album:       album,
			Status:      status.Code(cell(row, statusIdx)),
			MBArtistID:  cell(row, mbArtistIdx),
			MBReleaseID: cell(row, mbReleaseIdx),
			RowNum:      i + 2, // 1-based, after header
		})
	}
	return items, nil
}

func writeAll(path string, header []string, rows [][]string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	writer := csv.NewWriter(fh)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ensureStatusColumn appends a status column to header and pads rows,
// returning the status column index.
func ensureStatusColumn(header []string, rows [][]string) ([]string, [][]string, int) {
	statusIdx := columnIndex(header, "status")
	if statusIdx < 0 {
		header = append(header, "status")
		statusIdx = len(header) - 1
	}
	for i, row := range rows {
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return header, rows, statusIdx
}

// UpdateSingleStatus rewrites the file with one row's status changed.
// Called after each processed item so interrupted runs stay resumable.
func (h *Handler) UpdateSingleStatus(artist, album string, code status.Code) error {
	header, rows, err := readAll(h.Path)
	if err != nil {
		return err
	}
	artistIdx := columnIndex(header, "artist")
	albumIdx := columnIndex(header, "album")
	if artistIdx < 0 || albumIdx < 0 {
		return fmt.Errorf("CSV must have artist and album columns")
	}
	header, rows, statusIdx := ensureStatusColumn(header, rows)
	h.hasStatusColumn = true

	updated := false
	for _, row := range rows {
		if cell(row, artistIdx) == artist && cell(row, albumIdx) == album {
			row[statusIdx] = string(code)
			updated = true
			break
		}
	}
	if !updated {
		return fmt.Errorf("row not found: %s - %s", artist, album)
	}
	return writeAll(h.Path, header, rows)
}

// UpdateAllStatuses rewrites the file applying every item's status,
// preserving row order and unrelated columns.
func (h *Handler) UpdateAllStatuses(items []WorkItem) error {
	if len(items) == 0 {
		return nil
	}
	header, rows, err := readAll(h.Path)
	if err != nil {
		return err
	}
	artistIdx := columnIndex(header, "artist")
	albumIdx := columnIndex(header, "album")
	if artistIdx < 0 || albumIdx < 0 {
		return fmt.Errorf("CSV must have artist and album columns")
	}
	header, rows, statusIdx := ensureStatusColumn(header, rows)
	h.hasStatusColumn = true

	lookup := make(map[string]status.Code, len(items))
	for _, item := range items {
		lookup[item.Key()] = item.Status
	}

	for _, row := range rows {
		key := cell(row, artistIdx) + "|" + cell(row, albumIdx)
		if code, ok := lookup[key]; ok {
			row[statusIdx] = string(code)
		}
	}
	return writeAll(h.Path, header, rows)
}

// StatusSummary counts items per status code. Unprocessed items are
// keyed by the empty string.
func StatusSummary(items []WorkItem) map[status.Code]int {
	summary := make(map[status.Code]int)
	for _, item := range items {
		summary[item.Status]++
	}
	return summary
}
