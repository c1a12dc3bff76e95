package treeview

import (
	"strings"
	"testing"

	"filetree-search/internal/searchtree"
)

type fakeStore struct {
	filenames []string
	tags      [][]searchtree.Key
}

func (s *fakeStore) Len() int                  { return len(s.filenames) }
func (s *fakeStore) Filename(entry int) string { return s.filenames[entry] }
func (s *fakeStore) Tags(entry int) []searchtree.Key {
	return s.tags[entry]
}
func (s *fakeStore) SelectEntry(int, bool) {}
func (s *fakeStore) SelectAll(bool)        {}
func (s *fakeStore) CacheSelection()       {}

func tagKeys(genre, artist, album, title string) []searchtree.Key {
	return []searchtree.Key{
		{Category: searchtree.CategoryGenre, Name: genre},
		{Category: searchtree.CategoryArtist, Name: artist},
		{Category: searchtree.CategoryAlbum, Name: album},
		{Category: searchtree.CategoryTitle, Name: title},
	}
}

func buildIndex(t *testing.T) *searchtree.Index {
	t.Helper()

	store := &fakeStore{
		filenames: []string{"/m/a.mp3", "/m/b.mp3"},
		tags: [][]searchtree.Key{
			tagKeys("Rock", "Queen", "Night at the Opera", "Song A"),
			tagKeys("Rock", "Queen", "Night at the Opera", "Song B"),
		},
	}

	ix := searchtree.New()
	ix.PopulateFromTags(store)
	ix.Search(nil)
	return ix
}

func findNode(t *testing.T, ix *searchtree.Index, parent *searchtree.Node, name string) *searchtree.Node {
	t.Helper()
	for _, node := range ix.VisibleChildren(parent) {
		if node.Name == name {
			return node
		}
	}
	t.Fatalf("node %q not found", name)
	return nil
}

func TestLabelTopLevelGenre(t *testing.T) {
	ix := buildIndex(t)
	genre := findNode(t, ix, nil, "Rock")

	label := Label(genre)

	if !strings.HasPrefix(label, folderIcon) {
		t.Errorf("genre label missing folder icon: %q", label)
	}
	if !strings.Contains(label, "ROCK") {
		t.Errorf("top-level genre should be uppercased: %q", label)
	}
	if !strings.Contains(label, "<br><small>2 songs of this genre</small>") {
		t.Errorf("genre label missing song summary: %q", label)
	}
}

func TestLabelArtist(t *testing.T) {
	ix := buildIndex(t)
	genre := findNode(t, ix, nil, "Rock")
	artist := findNode(t, ix, genre, "Queen")

	label := Label(artist)

	if !strings.Contains(label, "<b>Queen</b>") {
		t.Errorf("artist name should be bold: %q", label)
	}
	if !strings.Contains(label, "2 songs by Rock") {
		t.Errorf("artist summary should reference the parent: %q", label)
	}
	if strings.Contains(label, "ROCK") {
		t.Errorf("parent reference should keep original casing: %q", label)
	}
}

func TestLabelTitle(t *testing.T) {
	ix := buildIndex(t)
	genre := findNode(t, ix, nil, "Rock")
	artist := findNode(t, ix, genre, "Queen")
	album := findNode(t, ix, artist, "Night at the Opera")
	title := findNode(t, ix, album, "Song A")

	label := Label(title)

	if strings.Contains(label, folderIcon) {
		t.Errorf("title label should not carry a folder icon: %q", label)
	}
	if strings.Contains(label, "songs") {
		t.Errorf("title label should not show a song count: %q", label)
	}
	// Attribution skips the album and names the grandparent artist.
	if !strings.Contains(label, "by <b>Queen</b>") {
		t.Errorf("title should be attributed to the artist: %q", label)
	}
}

func TestLabelSingularSongCount(t *testing.T) {
	store := &fakeStore{
		filenames: []string{"/m/a.mp3"},
		tags: [][]searchtree.Key{
			tagKeys("Jazz", "Miles", "Kind of Blue", "So What"),
		},
	}
	ix := searchtree.New()
	ix.PopulateFromTags(store)
	ix.Search(nil)

	genre := findNode(t, ix, nil, "Jazz")
	if label := Label(genre); !strings.Contains(label, "1 song of this genre") {
		t.Errorf("expected singular song count: %q", label)
	}
}

func TestLabelEscapesHTML(t *testing.T) {
	store := &fakeStore{
		filenames: []string{"/m/a.mp3"},
		tags: [][]searchtree.Key{
			tagKeys("Rock", "AC<script>", "Album & More", "A <b> Title"),
		},
	}
	ix := searchtree.New()
	ix.PopulateFromTags(store)
	ix.Search(nil)

	genre := findNode(t, ix, nil, "Rock")
	artist := findNode(t, ix, genre, "AC<script>")

	label := Label(artist)
	if strings.Contains(label, "<script>") {
		t.Errorf("artist name not escaped: %q", label)
	}
	if !strings.Contains(label, "AC&lt;script&gt;") {
		t.Errorf("expected escaped artist name: %q", label)
	}

	album := findNode(t, ix, artist, "Album & More")
	title := findNode(t, ix, album, "A <b> Title")
	if lbl := Label(title); strings.Contains(lbl, "A <b> Title") {
		t.Errorf("title name not escaped: %q", lbl)
	}
}

func TestRowForNode(t *testing.T) {
	ix := buildIndex(t)
	genre := findNode(t, ix, nil, "Rock")

	row := RowForNode(ix, genre)

	if row.NodeID != genre.ID {
		t.Errorf("NodeID = %d, want %d", row.NodeID, genre.ID)
	}
	if row.Category != "genre" {
		t.Errorf("Category = %q, want %q", row.Category, "genre")
	}
	if row.Name != "Rock" {
		t.Errorf("Name = %q, want %q", row.Name, "Rock")
	}
	if row.SongCount != 2 {
		t.Errorf("SongCount = %d, want 2", row.SongCount)
	}
	if !row.HasChildren {
		t.Error("genre should have children")
	}
	if row.ChildCount != 1 {
		t.Errorf("ChildCount = %d, want 1", row.ChildCount)
	}
}

func TestRowsPreservesOrder(t *testing.T) {
	store := &fakeStore{
		filenames: []string{"/m/a.mp3", "/m/b.mp3"},
		tags: [][]searchtree.Key{
			tagKeys("Rock", "X", "First", "A"),
			tagKeys("Blues", "Y", "Second", "B"),
		},
	}
	ix := searchtree.New()
	ix.PopulateFromTags(store)
	ix.Search(nil)

	rows := Rows(ix, ix.RootItems())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Blues" || rows[1].Name != "Rock" {
		t.Errorf("rows out of order: %q, %q", rows[0].Name, rows[1].Name)
	}
}
