// Package mediatypes provides shared type definitions and utilities for file
// classification across the filetree search service.
//
// This package exists as a dependency-free foundation that can be imported by other
// packages without creating import cycles. It contains primitive types, constants,
// and pure utility functions with no external dependencies beyond the standard library.
//
// # File Types
//
// The package defines a FileType enum for categorizing library files:
//
//	mediatypes.FileTypeAudio    // Supported audio formats (mp3, flac, ogg, etc.)
//	mediatypes.FileTypePlaylist // Playlist files (m3u, wpl)
//	mediatypes.FileTypeArtwork  // Album artwork images (jpg, png, etc.)
//	mediatypes.FileTypeOther    // Unrecognized or unsupported files
//
// # Extension Detection
//
// Use GetFileType to determine the type of a file based on its extension:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	fileType := mediatypes.GetFileType(ext)
//
// The scanner uses IsAudioFile as its walk filter:
//
//	if mediatypes.IsAudioFile(ext) {
//	    // Read tags and index the file
//	}
//
// # MIME Types
//
// Use GetMimeType to get the appropriate MIME type for HTTP responses:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	mimeType := mediatypes.GetMimeType(ext) // e.g., "audio/mpeg"
package mediatypes
