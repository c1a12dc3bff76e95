package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetree_search_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetree_search_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetree_search_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"}, // "commit" or "rollback"
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetree_search_db_rows_affected",
			Help:    "Number of rows affected by write operations",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filetree_search_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_scanner_runs_total",
			Help: "Total number of library scans",
		},
		[]string{"status"},
	)

	ScannerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_scanner_last_run_timestamp",
			Help: "Timestamp of the last library scan",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_scanner_last_run_duration_seconds",
			Help: "Duration of the last library scan in seconds",
		},
	)

	ScannerFilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filetree_search_scanner_files_scanned_total",
			Help: "Total number of audio files scanned",
		},
	)

	ScannerTagReadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filetree_search_scanner_tag_read_errors_total",
			Help: "Total number of files whose tags could not be read",
		},
	)

	ScannerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_scanner_running",
			Help: "Whether a library scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Indexer metrics
var (
	IndexRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_index_rebuilds_total",
			Help: "Total number of search index rebuilds",
		},
		[]string{"status"},
	)

	IndexLastRebuildTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_index_last_rebuild_timestamp",
			Help: "Timestamp of the last index rebuild",
		},
	)

	IndexLastRebuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_index_last_rebuild_duration_seconds",
			Help: "Duration of the last index rebuild in seconds",
		},
	)

	IndexNodesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_index_nodes",
			Help: "Number of nodes in the search index",
		},
	)

	IndexEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_index_entries",
			Help: "Number of playlist entries in the search index",
		},
	)

	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filetree_search_searches_total",
			Help: "Total number of search queries",
		},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filetree_search_search_duration_seconds",
			Help:    "Search filter duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	SearchHiddenNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_search_hidden_nodes",
			Help: "Number of nodes hidden by the current search filter",
		},
	)
)

// Export metrics
var (
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_exports_total",
			Help: "Total number of selection exports",
		},
		[]string{"format", "status"},
	)

	ExportEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filetree_search_export_entries",
			Help:    "Number of entries per exported selection",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
)

// Artwork metrics
var (
	ArtworkRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_artwork_requests_total",
			Help: "Total number of artwork thumbnail requests",
		},
		[]string{"status"}, // "hit", "miss", "not_found", "error"
	)

	ArtworkGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filetree_search_artwork_generation_duration_seconds",
			Help:    "Artwork thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ArtworkCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_artwork_cache_size_bytes",
			Help: "Total size of the artwork thumbnail cache in bytes",
		},
	)

	ArtworkCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_artwork_cache_count",
			Help: "Number of thumbnails in the artwork cache",
		},
	)
)

// Library metrics
var (
	LibraryTracksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_library_tracks_total",
			Help: "Total number of tracks in the library",
		},
	)

	LibraryArtistsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_library_artists_total",
			Help: "Total number of distinct artists in the library",
		},
	)

	LibraryAlbumsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_library_albums_total",
			Help: "Total number of distinct albums in the library",
		},
	)

	LibraryGenresTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_library_genres_total",
			Help: "Total number of distinct genres in the library",
		},
	)
)

// Authentication metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_active_sessions",
			Help: "Number of active user sessions",
		},
	)
)

// Memory management metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_memory_usage_ratio",
			Help: "Current heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetree_search_memory_paused",
			Help: "Whether background processing is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filetree_search_memory_gc_pauses_total",
			Help: "Number of times memory pressure paused processing and forced a GC",
		},
	)
)

// Filesystem retry metrics track NFS resilience of file operations
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_filesystem_retry_attempts_total",
			Help: "Number of filesystem operation retries after stale NFS handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_filesystem_retry_success_total",
			Help: "Number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_filesystem_retry_failures_total",
			Help: "Number of filesystem operations that exhausted all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetree_search_filesystem_stale_errors_total",
			Help: "Number of stale NFS file handle errors encountered",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetree_search_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filetree_search_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
