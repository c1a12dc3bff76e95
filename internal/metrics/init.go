package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Database storage sizes ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	// --- DB query operations ---
	for _, op := range []string{"upsert_track", "delete_tracks", "all_tracks", "track_by_id",
		"calculate_stats", "vacuum", "create_user", "validate_password", "create_session",
		"validate_session", "clean_expired_sessions", "update_password"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}

	for _, op := range []string{"upsert_track", "delete_tracks"} {
		DBRowsAffected.WithLabelValues(op)
	}

	// --- Scanner runs ---
	for _, status := range []string{"success", "error"} {
		ScannerRunsTotal.WithLabelValues(status)
	}

	// --- Exports (per format × status) ---
	for _, format := range []string{"json", "m3u", "wpl"} {
		ExportsTotal.WithLabelValues(format, "success")
		ExportsTotal.WithLabelValues(format, "error")
	}

	// --- Artwork requests ---
	for _, status := range []string{"hit", "miss", "not_found", "error"} {
		ArtworkRequestsTotal.WithLabelValues(status)
	}

	// --- Auth attempts ---
	for _, status := range []string{"success", "failure"} {
		AuthAttemptsTotal.WithLabelValues(status)
	}
}
