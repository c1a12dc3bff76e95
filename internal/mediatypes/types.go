package mediatypes

// FileType represents the type of a library file.
type FileType string

const (
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypePlaylist represents a playlist file.
	FileTypePlaylist FileType = "playlist"
	// FileTypeArtwork represents an album artwork image.
	FileTypeArtwork FileType = "artwork"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".m4a":  true,
	".m4b":  true,
	".aac":  true,
	".wav":  true,
	".wma":  true,
	".opus": true,
	".aiff": true,
	".alac": true,
}

// PlaylistExtensions maps file extensions to whether they are supported playlist formats.
var PlaylistExtensions = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".wpl":  true,
}

// ArtworkExtensions maps file extensions to whether they are supported artwork formats.
var ArtworkExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Audio
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".m4a":  "audio/mp4",
	".m4b":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",
	".aiff": "audio/aiff",
	".alac": "audio/mp4",

	// Playlists
	".m3u":  "audio/x-mpegurl",
	".m3u8": "audio/x-mpegurl",
	".wpl":  "application/vnd.ms-wpl",

	// Artwork
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp3").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	if PlaylistExtensions[ext] {
		return FileTypePlaylist
	}
	if ArtworkExtensions[ext] {
		return FileTypeArtwork
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp3").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsAudioFile returns true if the extension represents a supported audio file.
func IsAudioFile(ext string) bool {
	return AudioExtensions[ext]
}
