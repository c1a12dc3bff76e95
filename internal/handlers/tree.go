package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filetree-search/internal/logging"
	"filetree-search/internal/treeview"
)

// TreeResponse wraps a list of rendered tree rows.
type TreeResponse struct {
	Rows  []treeview.Row `json:"rows"`
	Count int            `json:"count"`
	Query string         `json:"query,omitempty"`
}

// GetTree returns the visible top-level rows of the index.
func (h *Handlers) GetTree(w http.ResponseWriter, _ *http.Request) {
	rows, err := h.indexer.Roots()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, TreeResponse{
		Rows:  rows,
		Count: len(rows),
		Query: h.indexer.Query(),
	})
}

// GetTreeChildren returns the visible children of a node.
func (h *Handlers) GetTreeChildren(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid node id", http.StatusBadRequest)
		return
	}

	rows, err := h.indexer.Children(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, TreeResponse{
		Rows:  rows,
		Count: len(rows),
		Query: h.indexer.Query(),
	})
}

// SearchResponse carries everything one search renders: the flattened
// matches, the visible roots, and how many nodes the filter hid.
type SearchResponse struct {
	Rows   []treeview.Row `json:"rows"`
	Roots  []treeview.Row `json:"roots"`
	Count  int            `json:"count"`
	Hidden int            `json:"hidden"`
	Query  string         `json:"query,omitempty"`
}

// Search applies the query to the index and returns the flattened visible
// rows, the visible roots, and the hidden-node count. An empty q parameter
// clears the active filter.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	res, err := h.indexer.Search(query)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	logging.Debug("Search %q returned %d rows", query, len(res.Rows))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResponse{
		Rows:   res.Rows,
		Roots:  res.Roots,
		Count:  len(res.Rows),
		Hidden: res.Hidden,
		Query:  query,
	})
}
