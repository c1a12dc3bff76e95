package searchtree

import (
	"reflect"
	"testing"
)

// fakeStore is a minimal in-memory EntryStore for tests.
type fakeStore struct {
	filenames []string
	tags      [][]Key

	selected       map[int]bool
	selectAllCalls []bool
	cacheCalls     int
	selectOrder    []int
}

func newFakeStore(filenames []string) *fakeStore {
	return &fakeStore{
		filenames: filenames,
		selected:  make(map[int]bool),
	}
}

func (s *fakeStore) Len() int { return len(s.filenames) }

func (s *fakeStore) Filename(entry int) string {
	if entry < 0 || entry >= len(s.filenames) {
		return ""
	}
	return s.filenames[entry]
}

func (s *fakeStore) Tags(entry int) []Key {
	if entry < 0 || entry >= len(s.tags) {
		return nil
	}
	return s.tags[entry]
}

func (s *fakeStore) SelectEntry(entry int, selected bool) {
	s.selected[entry] = selected
	if selected {
		s.selectOrder = append(s.selectOrder, entry)
	}
}

func (s *fakeStore) SelectAll(selected bool) {
	s.selectAllCalls = append(s.selectAllCalls, selected)
	for k := range s.selected {
		s.selected[k] = selected
	}
}

func (s *fakeStore) CacheSelection() { s.cacheCalls++ }

func tagKeys(genre, artist, album, title string) []Key {
	return []Key{
		{CategoryGenre, genre},
		{CategoryArtist, artist},
		{CategoryAlbum, album},
		{CategoryTitle, title},
	}
}

func findRoot(ix *Index, key Key) *Node {
	for _, n := range ix.RootItems() {
		if n.Category == key.Category && n.Name == key.Name {
			return n
		}
	}
	return nil
}

func findChild(n *Node, key Key) *Node {
	return n.Children[key]
}

func TestAddEntryPropagatesToEveryLevel(t *testing.T) {
	ix := New()
	ix.AddEntry(0, tagKeys("Rock", "X", "First", "A"))
	ix.AddEntry(1, tagKeys("Rock", "Y", "Second", "B"))
	ix.rebuildRootItems()

	rock := findRoot(ix, Key{CategoryGenre, "Rock"})
	if rock == nil {
		t.Fatal("Expected Rock genre node to exist")
	}

	if !reflect.DeepEqual(rock.Matches, []int{0, 1}) {
		t.Errorf("Expected Rock matches [0 1], got %v", rock.Matches)
	}

	artistX := findChild(rock, Key{CategoryArtist, "X"})
	if artistX == nil {
		t.Fatal("Expected artist X under Rock")
	}
	if !reflect.DeepEqual(artistX.Matches, []int{0}) {
		t.Errorf("Expected artist X matches [0], got %v", artistX.Matches)
	}
}

func TestAddEntrySkipsEmptyNames(t *testing.T) {
	ix := New()
	ix.AddEntry(0, tagKeys("Rock", "", "Album", "Song"))
	ix.rebuildRootItems()

	rock := findRoot(ix, Key{CategoryGenre, "Rock"})
	if rock == nil {
		t.Fatal("Expected Rock genre node to exist")
	}

	// The artist level is absent; the album hangs directly off the genre.
	album := findChild(rock, Key{CategoryAlbum, "Album"})
	if album == nil {
		t.Fatal("Expected album node directly under genre when artist is empty")
	}
	if album.Parent != rock {
		t.Error("Expected album's parent to be the genre node")
	}
}

func TestAddEntryRepeatedCallsAppendAgain(t *testing.T) {
	ix := New()
	keys := tagKeys("Rock", "X", "First", "A")
	ix.AddEntry(0, keys)
	ix.AddEntry(0, keys)
	ix.rebuildRootItems()

	rock := findRoot(ix, Key{CategoryGenre, "Rock"})
	if rock == nil {
		t.Fatal("Expected Rock genre node to exist")
	}

	// The index appends by design; deduplication is the exporter's job.
	if !reflect.DeepEqual(rock.Matches, []int{0, 0}) {
		t.Errorf("Expected matches [0 0] after repeated insert, got %v", rock.Matches)
	}

	if got := ix.VisibleChildCount(nil); got != 1 {
		t.Errorf("Expected 1 root node after repeated insert, got %d", got)
	}
}

func TestKeyUniquenessAcrossCategories(t *testing.T) {
	ix := New()
	ix.AddEntry(0, []Key{{CategoryGenre, "Same"}})
	ix.AddEntry(1, []Key{{CategoryArtist, "Same"}})
	ix.rebuildRootItems()

	// Equal names under different categories are distinct keys.
	if got := ix.VisibleChildCount(nil); got != 2 {
		t.Errorf("Expected 2 root nodes for same name in different categories, got %d", got)
	}
}

func TestPopulateFromPathsLeafOnlyCounts(t *testing.T) {
	store := newFakeStore([]string{
		"/music/rock/song1.mp3",
		"/music/rock/song2.mp3",
	})

	ix := New()
	ix.PopulateFromPaths(store, "/music")

	rock := findRoot(ix, Key{CategoryGenre, "rock"})
	if rock == nil {
		t.Fatal("Expected rock folder node to exist")
	}

	if len(rock.Matches) != 0 {
		t.Errorf("Expected folder node to have no direct matches, got %v", rock.Matches)
	}

	if len(rock.Children) != 2 {
		t.Fatalf("Expected 2 title children under rock, got %d", len(rock.Children))
	}

	song1 := findChild(rock, Key{CategoryTitle, "song1.mp3"})
	if song1 == nil {
		t.Fatal("Expected song1.mp3 title node")
	}
	if !reflect.DeepEqual(song1.Matches, []int{0}) {
		t.Errorf("Expected song1 matches [0], got %v", song1.Matches)
	}
}

func TestPopulateFromPathsSkipsUnresolvableFilenames(t *testing.T) {
	store := newFakeStore([]string{
		"",
		"/music/a.mp3",
	})

	ix := New()
	ix.PopulateFromPaths(store, "/music")

	if got := ix.Len(); got != 1 {
		t.Errorf("Expected 1 node after skipping empty filename, got %d", got)
	}
}

func TestPopulateFromPathsIdempotentNodeCreation(t *testing.T) {
	store := newFakeStore([]string{
		"/music/rock/a.mp3",
		"/music/rock/b.mp3",
		"/music/rock/sub/c.mp3",
	})

	ix := New()
	ix.PopulateFromPaths(store, "/music")

	// One rock folder, not three.
	roots := ix.RootItems()
	if len(roots) != 1 {
		t.Fatalf("Expected 1 root folder, got %d", len(roots))
	}
	if roots[0].Name != "rock" {
		t.Errorf("Expected root folder rock, got %s", roots[0].Name)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		base     string
		want     []string
	}{
		{
			name:     "strips base directory",
			filename: "/music/rock/song.mp3",
			base:     "/music",
			want:     []string{"rock", "song.mp3"},
		},
		{
			name:     "strips file scheme",
			filename: "file:///music/rock/song.mp3",
			base:     "/music",
			want:     []string{"rock", "song.mp3"},
		},
		{
			name:     "decodes percent encoding",
			filename: "/music/My%20Band/song.mp3",
			base:     "/music",
			want:     []string{"My Band", "song.mp3"},
		},
		{
			name:     "mid-path separator is not a scheme",
			filename: "/music/a ://b/song.mp3",
			base:     "/music",
			want:     []string{"a :", "b", "song.mp3"},
		},
		{
			name:     "drops empty segments",
			filename: "/music//rock///song.mp3",
			base:     "/music",
			want:     []string{"rock", "song.mp3"},
		},
		{
			name:     "outside base keeps full path",
			filename: "/other/song.mp3",
			base:     "/music",
			want:     []string{"other", "song.mp3"},
		},
		{
			name:     "no base",
			filename: "/music/song.mp3",
			base:     "",
			want:     []string{"music", "song.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPath(tt.filename, tt.base)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitPath(%q, %q) = %v, want %v", tt.filename, tt.base, got, tt.want)
			}
		})
	}
}

func TestSplitTerms(t *testing.T) {
	got := SplitTerms("  RoCk   Jazz\tBLUES ")
	want := []string{"rock", "jazz", "blues"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTerms = %v, want %v", got, want)
	}

	if terms := SplitTerms(""); len(terms) != 0 {
		t.Errorf("Expected no terms for empty query, got %v", terms)
	}
}

func TestNodeByIDInvalidHandle(t *testing.T) {
	ix := New()
	ix.AddEntry(0, tagKeys("Rock", "X", "First", "A"))

	if _, ok := ix.NodeByID(9999); ok {
		t.Error("Expected lookup of unknown handle to fail")
	}

	rock := ix.roots[Key{CategoryGenre, "Rock"}]
	if n, ok := ix.NodeByID(rock.ID); !ok || n != rock {
		t.Error("Expected lookup by handle to return the same node")
	}
}
