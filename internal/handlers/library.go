package handlers

import (
	"net/http"

	"filetree-search/internal/indexer"
	"filetree-search/internal/logging"
)

// StatsResponse combines the cached library summary with index state.
type StatsResponse struct {
	TotalTracks  int    `json:"totalTracks"`
	TotalArtists int    `json:"totalArtists"`
	TotalAlbums  int    `json:"totalAlbums"`
	TotalGenres  int    `json:"totalGenres"`
	LastScanned  string `json:"lastScanned,omitempty"`
	ScanDuration string `json:"scanDuration,omitempty"`

	IndexGeneration int64 `json:"indexGeneration"`
	IndexNodes      int   `json:"indexNodes"`
	IndexEntries    int   `json:"indexEntries"`
}

// GetStats returns library statistics and index state.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.db.GetStats()
	status := h.indexer.Status()

	resp := StatsResponse{
		TotalTracks:     stats.TotalTracks,
		TotalArtists:    stats.TotalArtists,
		TotalAlbums:     stats.TotalAlbums,
		TotalGenres:     stats.TotalGenres,
		ScanDuration:    stats.ScanDuration,
		IndexGeneration: status.Generation,
		IndexNodes:      status.Nodes,
		IndexEntries:    status.Entries,
	}
	if !stats.LastScanned.IsZero() {
		resp.LastScanned = stats.LastScanned.Format("2006-01-02T15:04:05Z07:00")
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// TriggerScan starts a library scan in the background. Returns 409 when a
// scan is already running.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.scanner.IsRunning() {
		writeJSONError(w, "scan already in progress", http.StatusConflict)
		return
	}

	go func() {
		// The request context ends with the response; the scan must not.
		if _, err := h.scanner.Scan(contextWithoutCancel(r)); err != nil {
			logging.Error("Background scan failed: %v", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSONStatus(w, "scan started")
}

// TriggerRebuild rebuilds the search index from the current database
// contents and reports the rebuild summary. An optional mode parameter
// ("tag" or "path") switches how tree paths are derived; the switch sticks
// for later periodic rebuilds.
func (h *Handlers) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	mode := r.FormValue("mode")
	switch mode {
	case "", indexer.ModeTag, indexer.ModePath:
	default:
		writeJSONError(w, "invalid mode", http.StatusBadRequest)
		return
	}

	result, err := h.indexer.RebuildWithMode(r.Context(), mode)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"jobId":      result.JobID,
		"generation": result.Generation,
		"mode":       result.Mode,
		"entries":    result.Entries,
		"nodes":      result.Nodes,
		"duration":   result.Duration.String(),
	})
}
