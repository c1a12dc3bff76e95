package playlist

import (
	"reflect"
	"strings"
	"testing"

	"filetree-search/internal/database"
	"filetree-search/internal/searchtree"
)

func sampleTracks() []database.Track {
	return []database.Track{
		{ID: 10, Path: "/music/rock/a.mp3", Genre: "Rock", Artist: "X", Album: "First", Title: "A"},
		{ID: 11, Path: "/music/rock/b.mp3", Genre: "Rock", Artist: "Y", Album: "", Title: "B"},
		{ID: 12, Path: "/music/jazz/c.mp3", Genre: "", Artist: "Z", Album: "Third", Title: "C"},
	}
}

func TestFromTracksSnapshot(t *testing.T) {
	p := FromTracks(sampleTracks())

	if p.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", p.Len())
	}

	if got := p.Filename(0); got != "/music/rock/a.mp3" {
		t.Errorf("Filename(0) = %q", got)
	}
	if got := p.Filename(99); got != "" {
		t.Errorf("Expected empty filename for out-of-range entry, got %q", got)
	}

	e, ok := p.Entry(1)
	if !ok || e.TrackID != 11 {
		t.Errorf("Entry(1) = %+v, ok=%v", e, ok)
	}
}

func TestFromTracksSkipsEmptyPaths(t *testing.T) {
	p := FromTracks([]database.Track{
		{ID: 1, Path: "", Title: "ghost"},
		{ID: 2, Path: "/music/a.mp3", Title: "A"},
	})

	if p.Len() != 1 {
		t.Errorf("Expected 1 entry after skipping empty path, got %d", p.Len())
	}
}

func TestTagsKeyChain(t *testing.T) {
	p := FromTracks(sampleTracks())

	keys := p.Tags(0)
	want := []searchtree.Key{
		{Category: searchtree.CategoryGenre, Name: "Rock"},
		{Category: searchtree.CategoryArtist, Name: "X"},
		{Category: searchtree.CategoryAlbum, Name: "First"},
		{Category: searchtree.CategoryTitle, Name: "A"},
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Tags(0) = %v, want %v", keys, want)
	}
}

func TestTagsEmptyAlbumMapsToHiddenBucket(t *testing.T) {
	p := FromTracks(sampleTracks())

	keys := p.Tags(1)
	if keys[2].Category != searchtree.CategoryHiddenAlbum {
		t.Errorf("Expected hidden-album category, got %v", keys[2].Category)
	}
	if keys[2].Name != NoAlbumName {
		t.Errorf("Expected %q, got %q", NoAlbumName, keys[2].Name)
	}
}

func TestTagsEmptyGenreStaysEmpty(t *testing.T) {
	p := FromTracks(sampleTracks())

	keys := p.Tags(2)
	if keys[0].Name != "" {
		t.Errorf("Expected empty genre key name, got %q", keys[0].Name)
	}
	// The index skips empty names, so entry 2 starts at the artist level.
	ix := searchtree.New()
	ix.PopulateFromTags(p)
	found := false
	for _, n := range ix.RootItems() {
		if n.Category == searchtree.CategoryArtist && n.Name == "Z" {
			found = true
		}
	}
	if !found {
		t.Error("Expected artist Z at root level when genre is empty")
	}
}

func TestSelectionLifecycle(t *testing.T) {
	p := FromTracks(sampleTracks())

	p.SelectEntry(2, true)
	p.SelectEntry(0, true)
	p.CacheSelection()

	if got := p.Selection(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("Selection = %v, want [0 2]", got)
	}

	p.SelectAll(false)
	p.CacheSelection()
	if got := p.Selection(); len(got) != 0 {
		t.Errorf("Expected empty selection after SelectAll(false), got %v", got)
	}

	// Out-of-range selects are ignored, not fatal.
	p.SelectEntry(-1, true)
	p.SelectEntry(42, true)
}

func TestWriteM3U(t *testing.T) {
	p := FromTracks(sampleTracks())

	var b strings.Builder
	if err := p.WriteM3U(&b, []int{0, 1}); err != nil {
		t.Fatalf("WriteM3U: %v", err)
	}

	out := b.String()
	if !strings.HasPrefix(out, "#EXTM3U\n") {
		t.Error("Expected #EXTM3U header")
	}
	if !strings.Contains(out, "#EXTINF:-1,X - A\n/music/rock/a.mp3\n") {
		t.Errorf("Missing entry 0 in output:\n%s", out)
	}
	if !strings.Contains(out, "/music/rock/b.mp3") {
		t.Errorf("Missing entry 1 in output:\n%s", out)
	}
}

func TestWriteWPL(t *testing.T) {
	p := FromTracks(sampleTracks())

	var b strings.Builder
	if err := p.WriteWPL(&b, "export", []int{0, 2}); err != nil {
		t.Fatalf("WriteWPL: %v", err)
	}

	out := b.String()
	if !strings.Contains(out, "<title>export</title>") {
		t.Errorf("Missing title in WPL output:\n%s", out)
	}
	if !strings.Contains(out, `src="/music/rock/a.mp3"`) {
		t.Errorf("Missing media source in WPL output:\n%s", out)
	}
	if !strings.Contains(out, `content="2"`) {
		t.Errorf("Missing item count meta in WPL output:\n%s", out)
	}
}

func TestPlaylistAsEntryStore(t *testing.T) {
	// The playlist must satisfy the index's EntryStore contract.
	var _ searchtree.EntryStore = FromTracks(nil)
}
