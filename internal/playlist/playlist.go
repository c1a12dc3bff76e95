package playlist

import (
	"filetree-search/internal/database"
	"filetree-search/internal/logging"
	"filetree-search/internal/searchtree"
)

// NoAlbumName is the display name of the synthetic bucket grouping entries
// without an album tag.
const NoAlbumName = "(no album)"

// Entry is one track in the playlist snapshot.
type Entry struct {
	TrackID int64
	Path    string
	Genre   string
	Artist  string
	Album   string
	Title   string
}

// Playlist is an immutable snapshot of the library ordered by path. Entry
// ids handed to the search index are positions in this snapshot, so they
// are only meaningful against the snapshot they came from.
//
// Selection state is the one mutable part: the exporter marks entries
// selected and caches the result, mirroring a host player's playlist
// selection.
type Playlist struct {
	entries  []Entry
	selected []bool
	cached   []int
}

// FromTracks builds a playlist snapshot from database track rows. The
// tracks are used in the order given (AllTracks returns them by path).
func FromTracks(tracks []database.Track) *Playlist {
	entries := make([]Entry, 0, len(tracks))
	for _, t := range tracks {
		if t.Path == "" {
			logging.Warn("Skipping track %d with empty path", t.ID)
			continue
		}
		entries = append(entries, Entry{
			TrackID: t.ID,
			Path:    t.Path,
			Genre:   t.Genre,
			Artist:  t.Artist,
			Album:   t.Album,
			Title:   t.Title,
		})
	}

	return &Playlist{
		entries:  entries,
		selected: make([]bool, len(entries)),
	}
}

// Len returns the number of entries in the snapshot.
func (p *Playlist) Len() int {
	return len(p.entries)
}

// Entry returns the entry at the given position.
func (p *Playlist) Entry(entry int) (Entry, bool) {
	if entry < 0 || entry >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[entry], true
}

// Filename returns the file path of an entry, or "" if the id is out of
// range (the index treats that entry as absent).
func (p *Playlist) Filename(entry int) string {
	if entry < 0 || entry >= len(p.entries) {
		return ""
	}
	return p.entries[entry].Path
}

// Tags synthesizes the tag key chain for an entry: genre, artist, album
// and title in rank order. An empty album maps to the hidden "(no album)"
// bucket; other empty levels are left empty and skipped by the index.
func (p *Playlist) Tags(entry int) []searchtree.Key {
	if entry < 0 || entry >= len(p.entries) {
		return nil
	}
	e := p.entries[entry]

	albumKey := searchtree.Key{Category: searchtree.CategoryAlbum, Name: e.Album}
	if e.Album == "" {
		albumKey = searchtree.Key{Category: searchtree.CategoryHiddenAlbum, Name: NoAlbumName}
	}

	return []searchtree.Key{
		{Category: searchtree.CategoryGenre, Name: e.Genre},
		{Category: searchtree.CategoryArtist, Name: e.Artist},
		albumKey,
		{Category: searchtree.CategoryTitle, Name: e.Title},
	}
}

// SelectEntry marks a single entry as selected or not.
func (p *Playlist) SelectEntry(entry int, selected bool) {
	if entry < 0 || entry >= len(p.selected) {
		return
	}
	p.selected[entry] = selected
}

// SelectAll sets the selection state of every entry.
func (p *Playlist) SelectAll(selected bool) {
	for i := range p.selected {
		p.selected[i] = selected
	}
}

// CacheSelection snapshots the currently selected entry ids in playlist
// order.
func (p *Playlist) CacheSelection() {
	p.cached = p.cached[:0]
	for i, sel := range p.selected {
		if sel {
			p.cached = append(p.cached, i)
		}
	}
}

// Selection returns the entry ids cached by the last CacheSelection call.
func (p *Playlist) Selection() []int {
	out := make([]int, len(p.cached))
	copy(out, p.cached)
	return out
}
