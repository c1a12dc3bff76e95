package database

import "time"

// Track is one scanned audio file in the library.
type Track struct {
	ID          int64     `json:"id"`
	Path        string    `json:"path"`
	Genre       string    `json:"genre,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Album       string    `json:"album,omitempty"`
	Title       string    `json:"title"`
	TrackNumber int       `json:"trackNumber,omitempty"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
}

// LibraryStats is the cached summary of the scanned library.
type LibraryStats struct {
	TotalTracks  int       `json:"totalTracks"`
	TotalArtists int       `json:"totalArtists"`
	TotalAlbums  int       `json:"totalAlbums"`
	TotalGenres  int       `json:"totalGenres"`
	LastScanned  time.Time `json:"lastScanned"`
	ScanDuration string    `json:"scanDuration"`
}
