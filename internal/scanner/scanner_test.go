package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filetree-search/internal/database"
)

func testDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/music/artist/album/01 Song.mp3", "01 Song"},
		{"song.flac", "song"},
		{"/music/no-extension", "no-extension"},
		{"/music/dots.in.name.ogg", "dots.in.name"},
	}

	for _, tt := range tests {
		if got := TitleFromPath(tt.path); got != tt.expected {
			t.Errorf("TitleFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestScanIndexesAudioFiles(t *testing.T) {
	db := testDB(t)
	mediaDir := t.TempDir()

	// Untagged files still get indexed under a filename-derived title.
	writeFile(t, filepath.Join(mediaDir, "band", "album", "track one.mp3"), []byte("not real audio"))
	writeFile(t, filepath.Join(mediaDir, "band", "album", "track two.mp3"), []byte("not real audio"))
	writeFile(t, filepath.Join(mediaDir, "band", "cover.jpg"), []byte("not audio"))
	writeFile(t, filepath.Join(mediaDir, "band", "notes.txt"), []byte("not audio"))
	writeFile(t, filepath.Join(mediaDir, ".hidden", "secret.mp3"), []byte("skipped"))
	writeFile(t, filepath.Join(mediaDir, ".dotfile.mp3"), []byte("skipped"))

	s := New(db, mediaDir, nil)
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.TracksScanned != 2 {
		t.Errorf("TracksScanned = %d, want 2", result.TracksScanned)
	}

	tracks, err := db.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected 2 tracks in database, got %d", len(tracks))
	}
	if tracks[0].Title != "track one" {
		t.Errorf("Title = %q, want %q", tracks[0].Title, "track one")
	}
	if tracks[0].Genre != "" || tracks[0].Artist != "" {
		t.Errorf("Untagged file should have empty genre/artist, got %q/%q",
			tracks[0].Genre, tracks[0].Artist)
	}
}

func TestScanRemovesMissingFiles(t *testing.T) {
	db := testDB(t)
	mediaDir := t.TempDir()

	keep := filepath.Join(mediaDir, "keep.mp3")
	gone := filepath.Join(mediaDir, "gone.mp3")
	writeFile(t, keep, []byte("audio"))
	writeFile(t, gone, []byte("audio"))

	s := New(db, mediaDir, nil)
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("First scan failed: %v", err)
	}

	// The prune cutoff has second resolution in sqlite.
	time.Sleep(1100 * time.Millisecond)

	if err := os.Remove(gone); err != nil {
		t.Fatalf("remove: %v", err)
	}

	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}
	if result.TracksRemoved != 1 {
		t.Errorf("TracksRemoved = %d, want 1", result.TracksRemoved)
	}

	tracks, err := db.AllTracks(context.Background())
	if err != nil {
		t.Fatalf("AllTracks failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Path != keep {
		t.Errorf("Expected only %s to survive, got %v", keep, tracks)
	}
}

func TestScanUpdatesStatsAndLastScan(t *testing.T) {
	db := testDB(t)
	mediaDir := t.TempDir()
	writeFile(t, filepath.Join(mediaDir, "a.mp3"), []byte("audio"))

	before := time.Now().Add(-time.Second)

	s := New(db, mediaDir, nil)
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	stats := db.GetStats()
	if stats.TotalTracks != 1 {
		t.Errorf("TotalTracks = %d, want 1", stats.TotalTracks)
	}

	last, err := db.GetLastScan(context.Background())
	if err != nil {
		t.Fatalf("GetLastScan failed: %v", err)
	}
	if last.Before(before) {
		t.Errorf("Last scan %v should be after %v", last, before)
	}
}

func TestScanMissingMediaDir(t *testing.T) {
	db := testDB(t)

	s := New(db, "/nonexistent/media/dir", nil)
	if _, err := s.Scan(context.Background()); err == nil {
		t.Error("Expected error for missing media directory")
	}
}

// stoppedPauser behaves like a memory monitor whose Stop was called: every
// wait reports that processing must not continue.
type stoppedPauser struct{}

func (stoppedPauser) WaitIfPaused() bool { return false }

func TestScanFinishesAfterMonitorStop(t *testing.T) {
	db := testDB(t)
	mediaDir := t.TempDir()

	// More files than the path channel can buffer, so a worker pool that
	// quits without draining would wedge the walker.
	for i := 0; i < batchSize+20; i++ {
		writeFile(t, filepath.Join(mediaDir, fmt.Sprintf("track-%04d.mp3", i)), []byte("audio"))
	}

	s := New(db, mediaDir, stoppedPauser{})

	done := make(chan struct{})
	var result Result
	var err error
	go func() {
		result, err = s.Scan(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("Scan did not finish after the monitor stopped")
	}
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.TracksScanned != 0 {
		t.Errorf("TracksScanned = %d, want 0 with a stopped monitor", result.TracksScanned)
	}
}

func TestScanReportsNotRunningAfterCompletion(t *testing.T) {
	db := testDB(t)
	mediaDir := t.TempDir()

	s := New(db, mediaDir, nil)
	if s.IsRunning() {
		t.Error("New scanner should not be running")
	}
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("Scanner should not be running after Scan returns")
	}

	result, err := s.LastResult()
	if err != nil {
		t.Fatalf("LastResult returned error: %v", err)
	}
	if result.Duration <= 0 {
		t.Error("LastResult should record a positive duration")
	}
}
