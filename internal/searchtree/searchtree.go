package searchtree

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"filetree-search/internal/logging"
)

// Category is the rank of a grouping level in the index. The declaration
// order is the sort rank used by the materializer, so it must not change.
type Category int

const (
	// CategoryGenre groups entries by genre tag. Path-keyed population
	// reuses it as the generic folder category.
	CategoryGenre Category = iota
	// CategoryArtist groups entries by artist tag.
	CategoryArtist
	// CategoryAlbum groups entries by album tag.
	CategoryAlbum
	// CategoryHiddenAlbum is the synthetic bucket for entries without an
	// album tag. It is excluded from flattened result sets.
	CategoryHiddenAlbum
	// CategoryTitle is the leaf level: a single song or file.
	CategoryTitle
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategoryGenre:
		return "genre"
	case CategoryArtist:
		return "artist"
	case CategoryAlbum:
		return "album"
	case CategoryHiddenAlbum:
		return "hidden_album"
	case CategoryTitle:
		return "title"
	default:
		return "unknown"
	}
}

// Key identifies a child slot under a parent node. No node may have two
// children with an equal Key.
type Key struct {
	Category Category
	Name     string
}

// Node is one element of the index tree. It owns its children map; the
// parent pointer is a non-owning back-reference used only for lookups.
type Node struct {
	ID       int64
	Category Category
	Name     string
	Parent   *Node
	Children map[Key]*Node

	// Matches holds the entry ids directly attributed to this node.
	// Tag-keyed population appends at every level of the chain; path-keyed
	// population appends only at the final (title) segment.
	Matches []int

	folded  string
	visible bool
}

// Visible reports whether the node passed the most recent search pass.
// Nodes start visible.
func (n *Node) Visible() bool {
	return n.visible
}

// EntryStore is the host-owned collection of media entries the index is
// built from. Entries are addressed by position; the index never owns or
// persists entry data itself.
type EntryStore interface {
	Len() int
	Filename(entry int) string
	Tags(entry int) []Key
	SelectEntry(entry int, selected bool)
	SelectAll(selected bool)
	CacheSelection()
}

var foldCaser = cases.Fold()

// Fold case-folds a string for search comparison.
func Fold(s string) string {
	return foldCaser.String(s)
}

// SplitTerms folds a raw query string and splits it into search terms on
// whitespace.
func SplitTerms(query string) []string {
	return strings.Fields(Fold(query))
}

// Index is the top-level owning container of the node tree. All mutating
// operations are single-threaded; the caller serializes access.
type Index struct {
	roots  map[Key]*Node
	byID   map[int64]*Node
	nextID int64

	// rootItems caches the sorted visible depth-1 nodes. It is derived
	// state, rebuilt on every population and every search pass.
	rootItems []*Node
	hidden    int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		roots: make(map[Key]*Node),
		byID:  make(map[int64]*Node),
	}
}

// Len returns the total number of nodes in the index.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// HiddenCount returns the number of nodes hidden by the last search pass.
func (ix *Index) HiddenCount() int {
	return ix.hidden
}

// NodeByID resolves a node handle assigned at population time. Handles are
// invalidated wholesale when the index is rebuilt.
func (ix *Index) NodeByID(id int64) (*Node, bool) {
	n, ok := ix.byID[id]
	return n, ok
}

// newNode creates a node under parent and registers its handle.
func (ix *Index) newNode(key Key, parent *Node) *Node {
	ix.nextID++
	n := &Node{
		ID:       ix.nextID,
		Category: key.Category,
		Name:     key.Name,
		Parent:   parent,
		Children: make(map[Key]*Node),
		folded:   Fold(key.Name),
		visible:  true,
	}
	ix.byID[n.ID] = n
	return n
}

// childMap returns the children map the given parent owns, or the root map
// when parent is nil.
func (ix *Index) childMap(parent *Node) map[Key]*Node {
	if parent == nil {
		return ix.roots
	}
	return parent.Children
}

// AddEntry walks the key chain from the root, creating nodes as needed, and
// appends the entry id to every level's match list. Keys with an empty name
// are skipped: the entry simply does not appear at that level. Repeated
// calls append again; deduplication happens at export time, not here.
func (ix *Index) AddEntry(entry int, keys []Key) {
	var parent *Node
	children := ix.roots

	for _, key := range keys {
		if key.Name == "" {
			continue
		}

		node, ok := children[key]
		if !ok {
			node = ix.newNode(key, parent)
			children[key] = node
		}

		node.Matches = append(node.Matches, entry)

		parent = node
		children = node.Children
	}
}

// addPath inserts one entry keyed by its relative path segments. Only the
// final segment is a title node and receives the entry id; intermediate
// segments are folder (genre) nodes with no direct matches, so folder
// counts must be derived from children by the view layer.
func (ix *Index) addPath(entry int, segments []string) {
	var parent *Node
	children := ix.roots

	for i, segment := range segments {
		category := CategoryGenre
		if i == len(segments)-1 {
			category = CategoryTitle
		}

		key := Key{Category: category, Name: segment}

		node, ok := children[key]
		if !ok {
			node = ix.newNode(key, parent)
			children[key] = node
		}

		if category == CategoryTitle {
			node.Matches = append(node.Matches, entry)
		}

		parent = node
		children = node.Children
	}
}

// PopulateFromTags builds the index from the store's tag metadata. Every
// entry contributes its id at each level of its key chain, so match counts
// are meaningful at every grouping node.
func (ix *Index) PopulateFromTags(store EntryStore) {
	entries := store.Len()
	for e := 0; e < entries; e++ {
		keys := store.Tags(e)
		if len(keys) == 0 {
			continue
		}
		ix.AddEntry(e, keys)
	}

	ix.rebuildRootItems()
	logging.Debug("Tag-keyed population complete: %d entries, %d nodes", entries, ix.Len())
}

// PopulateFromPaths builds the index from the store's filenames, split into
// path segments relative to baseDir. Entries whose filename cannot be
// resolved are skipped for this rebuild.
func (ix *Index) PopulateFromPaths(store EntryStore, baseDir string) {
	base := normalizeFilename(baseDir)
	base = strings.TrimSuffix(base, "/")

	entries := store.Len()
	for e := 0; e < entries; e++ {
		filename := store.Filename(e)
		if filename == "" {
			continue
		}

		segments := SplitPath(filename, base)
		if len(segments) == 0 {
			continue
		}
		ix.addPath(e, segments)
	}

	ix.rebuildRootItems()
	logging.Debug("Path-keyed population complete: %d entries, %d nodes", entries, ix.Len())
}

// normalizeFilename percent-decodes a path or URI and strips a leading
// scheme prefix such as file://. A "://" later in the path is left alone.
// Undecodable input is used as-is rather than rejected.
func normalizeFilename(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if i := strings.Index(name, "://"); i > 0 && isScheme(name[:i]) {
		name = name[i+3:]
	}
	return name
}

// isScheme reports whether s is a URI scheme: a letter followed by
// letters, digits, "+", "-", or ".".
func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && ((r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// SplitPath normalizes a filename and splits the part below base into path
// segments. Empty segments from repeated separators are dropped. Files
// outside base keep their full path.
func SplitPath(filename, base string) []string {
	path := normalizeFilename(filename)

	if base != "" && strings.HasPrefix(path, base+"/") {
		path = path[len(base)+1:]
	}

	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
