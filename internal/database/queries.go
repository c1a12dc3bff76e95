package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"filetree-search/internal/metrics"
)

// UpsertTrack inserts or updates a track record within a transaction.
// updated_at is always touched so DeleteMissing can treat stale rows as
// files that disappeared from disk.
func (d *Database) UpsertTrack(tx *sql.Tx, track *Track) error {
	query := `
	INSERT INTO tracks (path, genre, artist, album, title, track_number, size, mod_time, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(path) DO UPDATE SET
		genre = excluded.genre,
		artist = excluded.artist,
		album = excluded.album,
		title = excluded.title,
		track_number = excluded.track_number,
		size = excluded.size,
		mod_time = excluded.mod_time,
		updated_at = strftime('%s', 'now')
	`

	// Use background context since we're within a transaction.
	result, err := tx.ExecContext(context.Background(), query,
		track.Path,
		track.Genre,
		track.Artist,
		track.Album,
		track.Title,
		track.TrackNumber,
		track.Size,
		track.ModTime.Unix(),
	)
	if err == nil {
		if rows, _ := result.RowsAffected(); rows > 0 {
			metrics.DBRowsAffected.WithLabelValues("upsert_track").Observe(float64(rows))
		}
	}
	return err
}

// DeleteMissing removes tracks that weren't seen during the current scan.
// Must be called within a transaction.
func (d *Database) DeleteMissing(tx *sql.Tx, cutoffTime time.Time) (int64, error) {
	result, err := tx.ExecContext(context.Background(),
		"DELETE FROM tracks WHERE updated_at < ?",
		cutoffTime.Unix(),
	)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected > 0 {
		metrics.DBRowsAffected.WithLabelValues("delete_tracks").Observe(float64(rowsAffected))
	}
	return rowsAffected, err
}

// AllTracks returns the full library snapshot ordered by path. The order is
// stable so that playlist entry ids are deterministic between rebuilds of
// an unchanged library.
func (d *Database) AllTracks(ctx context.Context) ([]Track, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("all_tracks", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, path, genre, artist, album, title, track_number, size, mod_time
		FROM tracks ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var modTime int64
		if err = rows.Scan(&t.ID, &t.Path, &t.Genre, &t.Artist, &t.Album,
			&t.Title, &t.TrackNumber, &t.Size, &modTime); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.ModTime = time.Unix(modTime, 0)
		tracks = append(tracks, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("track row iteration failed: %w", err)
	}
	return tracks, nil
}

// TrackByID retrieves a single track.
func (d *Database) TrackByID(ctx context.Context, id int64) (*Track, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("track_by_id", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t Track
	var modTime int64
	err = d.db.QueryRowContext(ctx, `
		SELECT id, path, genre, artist, album, title, track_number, size, mod_time
		FROM tracks WHERE id = ?
	`, id).Scan(&t.ID, &t.Path, &t.Genre, &t.Artist, &t.Album,
		&t.Title, &t.TrackNumber, &t.Size, &modTime)
	if err != nil {
		return nil, err
	}

	t.ModTime = time.Unix(modTime, 0)
	return &t, nil
}

// CountTracks returns the number of tracks in the library.
func (d *Database) CountTracks(ctx context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&count)
	return count, err
}

// CalculateStats computes library statistics from the tracks table.
func (d *Database) CalculateStats(ctx context.Context) (LibraryStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var stats LibraryStats
	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT artist),
			COUNT(DISTINCT album),
			COUNT(DISTINCT genre)
		FROM tracks
	`).Scan(&stats.TotalTracks, &stats.TotalArtists, &stats.TotalAlbums, &stats.TotalGenres)
	if err != nil {
		return stats, fmt.Errorf("failed to calculate stats: %w", err)
	}

	return stats, nil
}
