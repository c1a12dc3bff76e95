// Package searchtree implements the in-memory hierarchical index over a
// music library. Nodes are keyed by (category, name) and built either from
// tag metadata chains (genre/artist/album/title) or from file path segments.
// The package provides incremental substring search with subtree-pruning
// visibility flags, sorted materialization of visible children for tree
// display, and deduplicated selection export against an entry store.
package searchtree
