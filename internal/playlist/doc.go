// Package playlist implements the entry store the search index is built
// from: an immutable snapshot of the scanned library where entry ids are
// playlist positions, with per-entry selection state and M3U/WPL playlist
// writing for selection exports.
package playlist
