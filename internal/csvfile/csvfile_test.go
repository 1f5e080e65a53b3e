package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StuartRutty/lidarr-music-importer/internal/status"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "albums.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewHandlerMissingFile(t *testing.T) {
	if _, err := NewHandler(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadItems(t *testing.T) {
	path := writeTempCSV(t, "artist,album\nSon Lux,Tomorrows\nKhruangbin,Mordechai\n")
	h, err := NewHandler(path)
	if err != nil {
		t.Fatal(err)
	}
	items, err := h.ReadItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Artist != "Son Lux" || items[0].Album != "Tomorrows" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if h.HasStatusColumn() {
		t.Error("no status column expected")
	}
	if items[0].RowNum != 2 {
		t.Errorf("expected row 2, got %d", items[0].RowNum)
	}
}

func TestReadItemsWithStatusAndEnrichment(t *testing.T) {
	path := writeTempCSV(t,
		"artist,album,status,mb_artist_id,mb_release_id\n"+
			"Son Lux,Tomorrows,success,aid-1,rid-1\n"+
			"Khruangbin,Mordechai,,aid-2,\n")
	h, _ := NewHandler(path)
	items, err := h.ReadItems()
	if err != nil {
		t.Fatal(err)
	}
	if !h.HasStatusColumn() {
		t.Error("status column should be detected")
	}
	if items[0].Status != status.Success || items[0].MBReleaseID != "rid-1" {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if items[1].Status != "" || items[1].MBArtistID != "aid-2" {
		t.Errorf("unexpected item: %+v", items[1])
	}
}

func TestReadItemsSkipsIncompleteRows(t *testing.T) {
	path := writeTempCSV(t, "artist,album\nSon Lux,\n,Mordechai\nReal Artist,Real Album\n")
	h, _ := NewHandler(path)
	items, err := h.ReadItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Artist != "Real Artist" {
		t.Errorf("expected only the complete row, got %+v", items)
	}
}

func TestUpdateSingleStatusAddsColumn(t *testing.T) {
	path := writeTempCSV(t, "artist,album\nSon Lux,Tomorrows\nKhruangbin,Mordechai\n")
	h, _ := NewHandler(path)
	if err := h.UpdateSingleStatus("Son Lux", "Tomorrows", status.Success); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, "artist,album,status") {
		t.Errorf("status column not added:\n%s", content)
	}
	if !strings.Contains(content, "Son Lux,Tomorrows,success") {
		t.Errorf("status not written:\n%s", content)
	}
	if !strings.Contains(content, "Khruangbin,Mordechai,") {
		t.Errorf("other rows should keep empty status:\n%s", content)
	}
}

func TestUpdateSingleStatusRowNotFound(t *testing.T) {
	path := writeTempCSV(t, "artist,album\nSon Lux,Tomorrows\n")
	h, _ := NewHandler(path)
	if err := h.UpdateSingleStatus("Nobody", "Nothing", status.Skip); err == nil {
		t.Error("expected error for unknown row")
	}
}

func TestUpdateAllStatuses(t *testing.T) {
	path := writeTempCSV(t, "artist,album,extra\nSon Lux,Tomorrows,x1\nKhruangbin,Mordechai,x2\n")
	h, _ := NewHandler(path)
	items := []WorkItem{
		{Artist: "Son Lux", Album: "Tomorrows", Status: status.Success},
		{Artist: "Khruangbin", Album: "Mordechai", Status: status.SkipNoArtistMatch},
	}
	if err := h.UpdateAllStatuses(items); err != nil {
		t.Fatal(err)
	}

	reread, err := h.ReadItems()
	if err != nil {
		t.Fatal(err)
	}
	if reread[0].Status != status.Success || reread[1].Status != status.SkipNoArtistMatch {
		t.Errorf("statuses not persisted: %+v", reread)
	}

	// Unrelated columns survive the rewrite.
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "x1") || !strings.Contains(string(data), "x2") {
		t.Errorf("extra column lost:\n%s", string(data))
	}
}

func TestStatusSummary(t *testing.T) {
	items := []WorkItem{
		{Status: status.Success},
		{Status: status.Success},
		{Status: status.ErrorConnection},
		{Status: ""},
	}
	summary := StatusSummary(items)
	if summary[status.Success] != 2 || summary[status.ErrorConnection] != 1 || summary[""] != 1 {
		t.Errorf("unexpected summary: %v", summary)
	}
}
