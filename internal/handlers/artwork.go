package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filetree-search/internal/artwork"
	"filetree-search/internal/logging"
)

// GetArtwork serves the cached artwork thumbnail for a tree node, resolved
// through the node's representative entry.
func (h *Handlers) GetArtwork(w http.ResponseWriter, r *http.Request) {
	if h.artwork == nil {
		writeJSONError(w, "artwork disabled", http.StatusNotFound)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid node id", http.StatusBadRequest)
		return
	}

	entry, err := h.indexer.RepresentativeEntry(id)
	if err != nil {
		writeJSONError(w, "node not found", http.StatusNotFound)
		return
	}

	thumbPath, err := h.artwork.Thumbnail(entry.Path)
	if err != nil {
		if errors.Is(err, artwork.ErrNotFound) {
			writeJSONError(w, "no artwork", http.StatusNotFound)
			return
		}
		logging.Error("Artwork lookup failed for node %d: %v", id, err)
		writeJSONError(w, "artwork error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, thumbPath)
}
