// Package indexer maintains the in-memory search index over the scanned
// library.
//
// A rebuild snapshots the tracks table into a playlist, constructs the
// category tree from it (tag chains or path segments), and atomically
// swaps both in while re-applying the active search query. The HTTP
// handlers read the tree through the indexer's lock, so browsing never
// observes a half-built index.
package indexer
