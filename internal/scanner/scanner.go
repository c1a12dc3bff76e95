package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"filetree-search/internal/database"
	"filetree-search/internal/filesystem"
	"filetree-search/internal/logging"
	"filetree-search/internal/mediatypes"
	"filetree-search/internal/metrics"
	"filetree-search/internal/workers"
)

const (
	// batchSize is the number of upserts per database transaction.
	batchSize = 500

	// maxWorkers caps the tag-reading pool.
	maxWorkers = 16
)

// Result summarizes a completed library scan.
type Result struct {
	TracksScanned int           `json:"tracksScanned"`
	TracksRemoved int64         `json:"tracksRemoved"`
	Duration      time.Duration `json:"duration"`
}

// Pauser gates work under memory pressure. WaitIfPaused blocks while
// processing is paused and reports false once the pauser shuts down.
// *memory.Monitor satisfies it.
type Pauser interface {
	WaitIfPaused() bool
}

// Scanner walks the media directory, reads audio tags, and syncs the
// tracks table with what is on disk.
type Scanner struct {
	db       *database.Database
	mediaDir string
	monitor  Pauser

	mu         sync.Mutex
	running    bool
	lastResult Result
	lastError  error
}

// New creates a Scanner rooted at mediaDir. The monitor may be nil; when
// set, tag reading pauses under memory pressure.
func New(db *database.Database, mediaDir string, monitor Pauser) *Scanner {
	return &Scanner{
		db:       db,
		mediaDir: mediaDir,
		monitor:  monitor,
	}
}

// IsRunning reports whether a scan is currently in progress.
func (s *Scanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastResult returns the result of the most recent completed scan.
func (s *Scanner) LastResult() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult, s.lastError
}

// Scan walks the media directory and updates the database. Only one scan
// runs at a time; a second call while one is in progress returns an error.
func (s *Scanner) Scan(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("scan already in progress")
	}
	s.running = true
	s.mu.Unlock()

	metrics.ScannerIsRunning.Set(1)
	defer metrics.ScannerIsRunning.Set(0)

	start := time.Now()
	result, err := s.scan(ctx, start)
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.running = false
	s.lastResult = result
	s.lastError = err
	s.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ScannerRunsTotal.WithLabelValues(status).Inc()
	metrics.ScannerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScannerLastRunDuration.Set(result.Duration.Seconds())

	if err != nil {
		logging.Error("Library scan failed after %v: %v", result.Duration, err)
		return result, err
	}

	logging.Info("Library scan complete: %d tracks scanned, %d removed in %v",
		result.TracksScanned, result.TracksRemoved, result.Duration)
	return result, nil
}

func (s *Scanner) scan(ctx context.Context, cutoff time.Time) (Result, error) {
	var result Result

	if _, err := os.Stat(s.mediaDir); err != nil {
		return result, fmt.Errorf("media directory not accessible: %w", err)
	}

	paths := make(chan string, batchSize)
	tracks := make(chan *database.Track, batchSize)

	numWorkers := workers.ForIO(maxWorkers)
	logging.Debug("Scanning %s with %d workers", s.mediaDir, numWorkers)

	// Tag readers
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stopped := false
			for path := range paths {
				if stopped {
					continue
				}
				if s.monitor != nil && !s.monitor.WaitIfPaused() {
					// The monitor shut down mid-scan. Keep draining so
					// the walker never blocks on a full channel.
					stopped = true
					continue
				}
				track, err := s.readTrack(path)
				if err != nil {
					logging.Warn("Skipping %s: %v", path, err)
					continue
				}
				tracks <- track
			}
		}()
	}
	go func() {
		wg.Wait()
		close(tracks)
	}()

	// Collector: batch the tracks into transactions.
	var collectErr error
	collectDone := make(chan struct{})
	scanned := 0
	go func() {
		defer close(collectDone)
		batch := make([]*database.Track, 0, batchSize)
		flush := func() {
			if len(batch) == 0 || collectErr != nil {
				return
			}
			if err := s.writeBatch(batch); err != nil {
				collectErr = err
				return
			}
			scanned += len(batch)
			batch = batch[:0]
		}
		for track := range tracks {
			batch = append(batch, track)
			if len(batch) >= batchSize {
				flush()
			}
		}
		flush()
	}()

	// Walk the tree, feeding audio files to the workers.
	walkErr := filepath.WalkDir(s.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Walk error at %s: %v", path, err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			// Hidden directories hold caches and trash, never music.
			if strings.HasPrefix(name, ".") && path != s.mediaDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !mediatypes.IsAudioFile(ext) {
			return nil
		}

		paths <- path
		return nil
	})
	close(paths)
	<-collectDone

	if walkErr != nil {
		return result, fmt.Errorf("walk failed: %w", walkErr)
	}
	if collectErr != nil {
		return result, fmt.Errorf("batch write failed: %w", collectErr)
	}

	result.TracksScanned = scanned

	// Anything not touched during this scan no longer exists on disk.
	removed, err := s.pruneMissing(cutoff)
	if err != nil {
		return result, err
	}
	result.TracksRemoved = removed

	if err := s.updateStats(ctx, cutoff, time.Since(cutoff)); err != nil {
		logging.Warn("Failed to update library stats: %v", err)
	}

	return result, nil
}

func (s *Scanner) writeBatch(batch []*database.Track) error {
	tx, err := s.db.BeginBatch()
	if err != nil {
		return err
	}
	for _, track := range batch {
		if err = s.db.UpsertTrack(tx, track); err != nil {
			break
		}
	}
	if endErr := s.db.EndBatch(tx, err); endErr != nil {
		return endErr
	}
	metrics.ScannerFilesScanned.Add(float64(len(batch)))
	return nil
}

func (s *Scanner) pruneMissing(cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginBatch()
	if err != nil {
		return 0, err
	}
	removed, err := s.db.DeleteMissing(tx, cutoff)
	if endErr := s.db.EndBatch(tx, err); endErr != nil {
		return 0, endErr
	}
	return removed, nil
}

func (s *Scanner) updateStats(ctx context.Context, scannedAt time.Time, duration time.Duration) error {
	stats, err := s.db.CalculateStats(ctx)
	if err != nil {
		return err
	}
	stats.LastScanned = scannedAt
	stats.ScanDuration = duration.Round(time.Millisecond).String()
	s.db.UpdateStats(stats)

	return s.db.SetLastScan(ctx, scannedAt)
}

// readTrack builds a Track from the file's embedded tags. Files whose tags
// cannot be read still get indexed under a title derived from the filename.
func (s *Scanner) readTrack(path string) (*database.Track, error) {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	track := &database.Track{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		metrics.ScannerTagReadErrors.Inc()
		logging.Debug("No readable tags in %s: %v", path, err)
		track.Title = TitleFromPath(path)
		return track, nil
	}

	track.Genre = strings.TrimSpace(meta.Genre())
	track.Artist = strings.TrimSpace(meta.Artist())
	if track.Artist == "" {
		track.Artist = strings.TrimSpace(meta.AlbumArtist())
	}
	track.Album = strings.TrimSpace(meta.Album())
	track.Title = strings.TrimSpace(meta.Title())
	if track.Title == "" {
		track.Title = TitleFromPath(path)
	}
	track.TrackNumber, _ = meta.Track()

	return track, nil
}

// TitleFromPath derives a display title from a filename when the file
// carries no title tag: the base name without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
