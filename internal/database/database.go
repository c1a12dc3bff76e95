package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// connParams tunes the sqlite connection for a mixed read/write workload:
// WAL so searches keep reading while a scan writes, and a busy timeout so
// concurrent writers queue instead of failing with "database is locked".
const connParams = "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000"

// Database owns the sqlite connection and serializes writes. The mutex
// covers statement-level writes; batch transactions hold it only while the
// transaction begins.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   LibraryStats
	statsMu sync.RWMutex
	txStart time.Time
}

// New opens (creating if needed) the library database at dbPath. dbPath is
// the database FILE, e.g. "/database/library.db"; its parent directory must
// already exist and be writable.
// Use startup.LoadConfig() to ensure proper directory validation before calling this.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := reportPermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	db, err := openSQLite(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	d := &Database{db: db, dbPath: dbPath}
	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func openSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+connParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Main tracks table
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		genre TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		track_number INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_path ON tracks(path);
	CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_genre ON tracks(genre COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_updated ON tracks(updated_at);

	-- Users table (single user, password only)
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	-- Sessions table
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);

	-- Metadata table
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch opens a transaction for a bulk write (a library scan). The
// transaction outlives any request context; EndBatch ends its lifetime.
func (d *Database) BeginBatch() (*sql.Tx, error) {
	d.mu.Lock()
	txStart := time.Now()
	tx, err := d.db.BeginTx(context.Background(), nil)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	d.txStart = txStart
	return tx, nil
}

// EndBatch commits the transaction, or rolls it back when err is non-nil.
func (d *Database) EndBatch(tx *sql.Tx, err error) error {
	duration := time.Since(d.txStart).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// UpdateStats replaces the cached library statistics; the scanner calls it
// after each completed scan.
func (d *Database) UpdateStats(stats LibraryStats) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats = stats
}

func (d *Database) GetStats() LibraryStats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.stats
}

// Vacuum compacts the database file. Holds the write lock for the duration.
func (d *Database) Vacuum() error {
	start := time.Now()
	var err error
	defer func() { recordQuery("vacuum", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "VACUUM")
	return err
}

func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// UpdateDBMetrics publishes connection pool gauges.
func (d *Database) UpdateDBMetrics() {
	metrics.DBConnectionsOpen.Set(float64(d.db.Stats().OpenConnections))
}

// reportPermissions logs the permission state of the database directory,
// file, and WAL side files before opening. A read-only -wal or -shm file
// fails every subsequent write, so those get chmodded back when possible.
func reportPermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}
	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	marker := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(marker, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(marker)
	logging.Debug("Database directory is writable")

	if info, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, info.Mode(), info.Size())
		if readOnly(info) {
			logging.Warn("Database file is read-only! Mode: %v", info.Mode())
		}
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		side := dbPath + suffix
		info, err := os.Stat(side)
		if err != nil {
			continue
		}
		logging.Debug("Side file exists: %s (mode: %v, size: %d bytes)", side, info.Mode(), info.Size())
		if !readOnly(info) {
			continue
		}
		logging.Warn("Side file %s is read-only! Mode: %v - this will cause write failures", side, info.Mode())
		if chmodErr := os.Chmod(side, 0o600); chmodErr != nil {
			logging.Error("Failed to fix %s permissions: %v", side, chmodErr)
		} else {
			logging.Info("Fixed %s permissions", side)
		}
	}

	return nil
}

func readOnly(info os.FileInfo) bool {
	return info.Mode().Perm()&0o200 == 0
}
