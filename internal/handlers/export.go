package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
	"filetree-search/internal/playlist"
)

// ExportRequest selects the tree nodes to export and the output format.
type ExportRequest struct {
	Nodes  []int64 `json:"nodes"`
	Format string  `json:"format,omitempty"` // json (default), m3u, wpl
	Title  string  `json:"title,omitempty"`
}

// ExportResponse is the JSON-format export payload.
type ExportResponse struct {
	Entries []playlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// Export resolves a node selection into an ordered, deduplicated track
// list, either as JSON or as a downloadable m3u/wpl playlist.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Nodes) == 0 {
		writeJSONError(w, "no nodes selected", http.StatusBadRequest)
		return
	}

	format := req.Format
	if format == "" {
		format = "json"
	}
	title := req.Title
	if title == "" {
		title = "filetree-search export"
	}

	switch format {
	case "json":
		entries, err := h.indexer.Export(req.Nodes)
		if err != nil {
			metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
			writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		metrics.ExportsTotal.WithLabelValues(format, "success").Inc()
		metrics.ExportEntries.Observe(float64(len(entries)))
		logging.Info("Exported %d entries from %d selected nodes", len(entries), len(req.Nodes))

		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, ExportResponse{Entries: entries, Count: len(entries)})

	case "m3u", "wpl":
		// Buffer the playlist so a failed export never sends a partial file.
		var buf bytes.Buffer
		if err := h.indexer.WritePlaylist(&buf, format, title, req.Nodes); err != nil {
			metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
			writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		metrics.ExportsTotal.WithLabelValues(format, "success").Inc()
		logging.Info("Exported %s playlist (%d bytes) from %d selected nodes",
			format, buf.Len(), len(req.Nodes))

		w.Header().Set("Content-Type", playlistContentType(format))
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "playlist."+format))
		if _, err := buf.WriteTo(w); err != nil {
			logging.Error("failed to write playlist response: %v", err)
		}

	default:
		writeJSONError(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
	}
}

func playlistContentType(format string) string {
	switch format {
	case "m3u":
		return "audio/x-mpegurl"
	case "wpl":
		return "application/vnd.ms-wpl"
	default:
		return "application/octet-stream"
	}
}
