package indexer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"filetree-search/internal/database"
	"filetree-search/internal/logging"
	"filetree-search/internal/metrics"
	"filetree-search/internal/playlist"
	"filetree-search/internal/searchtree"
	"filetree-search/internal/treeview"
)

// Index construction modes.
const (
	ModeTag  = "tag"  // genre/artist/album/title chains from tags
	ModePath = "path" // directory segments relative to the media dir
)

// Result summarizes one index rebuild.
type Result struct {
	JobID      string        `json:"jobId"`
	Generation int64         `json:"generation"`
	Mode       string        `json:"mode"`
	Entries    int           `json:"entries"`
	Nodes      int           `json:"nodes"`
	Duration   time.Duration `json:"duration"`
}

// Status is a snapshot of the indexer for health reporting.
type Status struct {
	Ready       bool      `json:"ready"`
	Generation  int64     `json:"generation"`
	Mode        string    `json:"mode"`
	Entries     int       `json:"entries"`
	Nodes       int       `json:"nodes"`
	Query       string    `json:"query,omitempty"`
	LastRebuild time.Time `json:"lastRebuild,omitempty"`
	LastJobID   string    `json:"lastJobId,omitempty"`
}

// Indexer owns the in-memory search index and the playlist snapshot it is
// built over. All reads and writes go through its lock; a rebuild swaps
// both structures atomically and re-applies the active search.
type Indexer struct {
	db       *database.Database
	mode     string
	mediaDir string

	mu          sync.Mutex
	ix          *searchtree.Index
	pl          *playlist.Playlist
	query       string
	terms       []string
	generation  int64
	lastRebuild time.Time
	lastJobID   string
	indexedScan time.Time
}

// New creates an Indexer over db. The mode selects how tree paths are
// derived; mediaDir is the base for ModePath and ignored otherwise.
func New(db *database.Database, mode, mediaDir string) *Indexer {
	if mode != ModePath {
		mode = ModeTag
	}
	return &Indexer{
		db:       db,
		mode:     mode,
		mediaDir: mediaDir,
	}
}

// Rebuild loads all tracks and constructs a fresh index in the current
// mode, carrying the active search query over to the new tree.
func (n *Indexer) Rebuild(ctx context.Context) (Result, error) {
	return n.RebuildWithMode(ctx, "")
}

// RebuildWithMode rebuilds the index, optionally switching the construction
// mode first. An empty mode keeps the current one; a switch sticks, so
// later periodic rebuilds use the new mode too.
func (n *Indexer) RebuildWithMode(ctx context.Context, mode string) (Result, error) {
	switch mode {
	case "", ModeTag, ModePath:
	default:
		return Result{}, fmt.Errorf("unknown index mode %q", mode)
	}

	start := time.Now()
	jobID := uuid.NewString()

	n.mu.Lock()
	if mode != "" {
		n.mode = mode
	}
	mode = n.mode
	n.mu.Unlock()

	tracks, err := n.db.AllTracks(ctx)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("failed to load tracks: %w", err)
	}
	lastScan, err := n.db.GetLastScan(ctx)
	if err != nil {
		logging.Warn("Failed to read last scan time: %v", err)
	}

	pl := playlist.FromTracks(tracks)
	ix := searchtree.New()
	if mode == ModePath {
		ix.PopulateFromPaths(pl, n.mediaDir)
	} else {
		ix.PopulateFromTags(pl)
	}

	n.mu.Lock()
	ix.Search(n.terms)
	n.ix = ix
	n.pl = pl
	n.generation++
	n.lastRebuild = time.Now()
	n.lastJobID = jobID
	n.indexedScan = lastScan
	result := Result{
		JobID:      jobID,
		Generation: n.generation,
		Mode:       mode,
		Entries:    pl.Len(),
		Nodes:      ix.Len(),
		Duration:   time.Since(start),
	}
	n.mu.Unlock()

	metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexLastRebuildTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexLastRebuildDuration.Set(result.Duration.Seconds())
	metrics.IndexNodesTotal.Set(float64(result.Nodes))
	metrics.IndexEntriesTotal.Set(float64(result.Entries))

	logging.Info("Index rebuild %s: %d entries, %d nodes in %v (generation %d)",
		jobID, result.Entries, result.Nodes, result.Duration, result.Generation)
	return result, nil
}

// Run rebuilds on a fixed interval and additionally polls the database for
// completed scans, rebuilding as soon as one lands. Blocks until ctx ends.
func (n *Indexer) Run(ctx context.Context, interval, pollInterval time.Duration) {
	rebuild := time.NewTicker(interval)
	defer rebuild.Stop()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuild.C:
			if _, err := n.Rebuild(ctx); err != nil {
				logging.Error("Periodic index rebuild failed: %v", err)
			}
		case <-poll.C:
			stale, err := n.staleAgainstScan(ctx)
			if err != nil {
				logging.Warn("Scan poll failed: %v", err)
				continue
			}
			if stale {
				logging.Info("New library scan detected, rebuilding index")
				if _, err := n.Rebuild(ctx); err != nil {
					logging.Error("Scan-triggered rebuild failed: %v", err)
				}
			}
		}
	}
}

func (n *Indexer) staleAgainstScan(ctx context.Context) (bool, error) {
	lastScan, err := n.db.GetLastScan(ctx)
	if err != nil {
		return false, err
	}
	if lastScan.IsZero() {
		return false, nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return lastScan.After(n.indexedScan), nil
}

// SearchResult bundles what one search renders: the flattened matches in
// tree order, the visible roots after filtering, and how many nodes the
// filter hid.
type SearchResult struct {
	Rows   []treeview.Row `json:"rows"`
	Roots  []treeview.Row `json:"roots"`
	Hidden int            `json:"hidden"`
}

// Search applies the query to the index and returns the visible rows,
// roots, and hidden-node count. An empty query clears the filter, so the
// rows cover the whole library.
func (n *Indexer) Search(query string) (SearchResult, error) {
	start := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ix == nil {
		return SearchResult{}, fmt.Errorf("index not built yet")
	}

	terms := searchtree.SplitTerms(query)
	n.query = query
	n.terms = terms
	n.ix.Search(terms)

	res := SearchResult{
		Rows:   treeview.Rows(n.ix, n.ix.Results()),
		Roots:  treeview.Rows(n.ix, n.ix.RootItems()),
		Hidden: n.ix.HiddenCount(),
	}

	metrics.SearchesTotal.Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchHiddenNodes.Set(float64(res.Hidden))

	logging.Debug("Search %q matched %d titles (%d nodes hidden)",
		query, len(res.Rows), res.Hidden)
	return res, nil
}

// Query returns the active search query.
func (n *Indexer) Query() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.query
}

// Roots returns the visible top-level rows of the tree.
func (n *Indexer) Roots() ([]treeview.Row, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ix == nil {
		return nil, fmt.Errorf("index not built yet")
	}
	return treeview.Rows(n.ix, n.ix.RootItems()), nil
}

// Children returns the visible child rows of a node.
func (n *Indexer) Children(nodeID int64) ([]treeview.Row, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ix == nil {
		return nil, fmt.Errorf("index not built yet")
	}
	node, ok := n.ix.NodeByID(nodeID)
	if !ok {
		return nil, fmt.Errorf("unknown node %d", nodeID)
	}
	return treeview.Rows(n.ix, n.ix.VisibleChildren(node)), nil
}

// Export resolves the selected nodes into deduplicated playlist entries in
// tree order. Node ids that no longer exist are skipped.
func (n *Indexer) Export(nodeIDs []int64) ([]playlist.Entry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	entryIDs, err := n.exportLocked(nodeIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]playlist.Entry, 0, len(entryIDs))
	for _, id := range entryIDs {
		if e, ok := n.pl.Entry(id); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// WritePlaylist exports the selected nodes as an m3u or wpl playlist.
func (n *Indexer) WritePlaylist(w io.Writer, format, title string, nodeIDs []int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	entryIDs, err := n.exportLocked(nodeIDs)
	if err != nil {
		return err
	}

	switch format {
	case "m3u":
		return n.pl.WriteM3U(w, entryIDs)
	case "wpl":
		return n.pl.WriteWPL(w, title, entryIDs)
	default:
		return fmt.Errorf("unsupported playlist format %q", format)
	}
}

func (n *Indexer) exportLocked(nodeIDs []int64) ([]int, error) {
	if n.ix == nil {
		return nil, fmt.Errorf("index not built yet")
	}

	nodes := make([]*searchtree.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if node, ok := n.ix.NodeByID(id); ok {
			nodes = append(nodes, node)
		}
	}
	return n.ix.ExportSelection(nodes, n.pl), nil
}

// RepresentativeEntry returns the playlist entry that stands in for a node,
// used for artwork lookups: the first entry in the node's subtree in tree
// order.
func (n *Indexer) RepresentativeEntry(nodeID int64) (playlist.Entry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ix == nil {
		return playlist.Entry{}, fmt.Errorf("index not built yet")
	}
	node, ok := n.ix.NodeByID(nodeID)
	if !ok {
		return playlist.Entry{}, fmt.Errorf("unknown node %d", nodeID)
	}
	id, ok := n.ix.FirstEntry(node)
	if !ok {
		return playlist.Entry{}, fmt.Errorf("node %d has no entries", nodeID)
	}
	entry, ok := n.pl.Entry(id)
	if !ok {
		return playlist.Entry{}, fmt.Errorf("entry %d missing from playlist", id)
	}
	return entry, nil
}

// Status reports the indexer's current state.
func (n *Indexer) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := Status{
		Ready:       n.ix != nil,
		Generation:  n.generation,
		Mode:        n.mode,
		Query:       n.query,
		LastRebuild: n.lastRebuild,
		LastJobID:   n.lastJobID,
	}
	if n.ix != nil {
		s.Nodes = n.ix.Len()
		s.Entries = n.pl.Len()
	}
	return s
}
