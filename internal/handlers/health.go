package handlers

import (
	"net/http"
	"runtime"
	"time"

	"filetree-search/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Ready       bool   `json:"ready"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Scanning    bool   `json:"scanning"`
	LastRebuild string `json:"lastRebuild,omitempty"`

	// Index state
	IndexGeneration int64 `json:"indexGeneration"`
	IndexNodes      int   `json:"indexNodes"`
	IndexEntries    int   `json:"indexEntries"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Library summary
	TotalTracks int `json:"totalTracks,omitempty"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	status := h.indexer.Status()
	stats := h.db.GetStats()

	response := HealthResponse{
		Ready:           status.Ready,
		Version:         startup.Version,
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		Scanning:        h.scanner.IsRunning(),
		IndexGeneration: status.Generation,
		IndexNodes:      status.Nodes,
		IndexEntries:    status.Entries,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
		TotalTracks:     stats.TotalTracks,
	}

	if status.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !status.LastRebuild.IsZero() {
		response.LastRebuild = status.LastRebuild.Format("2006-01-02T15:04:05Z07:00")
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if the index has never been built
	if !status.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.indexer.Status().Ready {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
