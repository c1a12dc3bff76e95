// Package scanner keeps the track database in sync with the media
// directory on disk.
//
// A scan walks the directory tree, reads the embedded tags from every
// audio file with a worker pool, and upserts the results in batches.
// Files that disappeared since the previous scan are pruned afterwards
// based on their row timestamps. Only one scan runs at a time.
package scanner
