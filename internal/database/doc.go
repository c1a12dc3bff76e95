// Package database provides SQLite database operations for the filetree
// search service.
//
// It handles storage and retrieval of:
//   - Scanned audio track metadata (path, genre, artist, album, title)
//   - User accounts and authentication sessions
//   - Service metadata such as the last completed scan time
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
