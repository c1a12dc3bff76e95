package treeview

import (
	"fmt"
	"html"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"filetree-search/internal/searchtree"
)

// Row is one rendered line of the tree or result list, ready for a client
// to display. Label carries the HTML markup; the raw fields are included
// so clients can render their own styling instead.
type Row struct {
	NodeID      int64  `json:"nodeId"`
	Label       string `json:"label"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	SongCount   int    `json:"songCount"`
	HasChildren bool   `json:"hasChildren"`
	ChildCount  int    `json:"childCount"`
}

// Markup per category, indexed by searchtree.Category. Artists are bold,
// albums italic, genres and titles plain.
var (
	startTags = [...]string{"", "<b>", "<i>", "<i>", ""}
	endTags   = [...]string{"", "</b>", "</i>", "</i>", ""}
)

var upperCaser = cases.Upper(language.Und)

const folderIcon = "\U0001F4C1 " // 📁

func parentPrefix(c searchtree.Category) string {
	if c == searchtree.CategoryAlbum || c == searchtree.CategoryHiddenAlbum {
		return "on"
	}
	return "by"
}

// RowForNode renders a single node into a Row. The index supplies the
// visibility-filtered child counts.
func RowForNode(ix *searchtree.Index, node *searchtree.Node) Row {
	return Row{
		NodeID:      node.ID,
		Label:       Label(node),
		Category:    node.Category.String(),
		Name:        node.Name,
		SongCount:   len(node.Matches),
		HasChildren: ix.HasVisibleChildren(node),
		ChildCount:  ix.VisibleChildCount(node),
	}
}

// Rows renders a slice of nodes in order.
func Rows(ix *searchtree.Index, nodes []*searchtree.Node) []Row {
	rows := make([]Row, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, RowForNode(ix, node))
	}
	return rows
}

// Label builds the HTML display label for a node: an optional folder icon,
// the styled name, and a second line summarizing the song count and the
// node's place in the hierarchy ("5 songs by <b>Artist</b>").
func Label(node *searchtree.Node) string {
	var label string

	// Folder icon for everything that can be expanded
	if node.Category != searchtree.CategoryTitle {
		label += folderIcon
	}

	label += startTags[node.Category]

	// Top-level genres are traditionally shown uppercased; folder names
	// that merely reuse the genre category keep their casing.
	if node.Category == searchtree.CategoryGenre && node.Parent == nil {
		label += html.EscapeString(upperCaser.String(node.Name))
	} else {
		label += html.EscapeString(node.Name)
	}

	label += endTags[node.Category]

	var extra string
	hasExtra := false

	if node.Category != searchtree.CategoryTitle && len(node.Matches) > 0 {
		extra += songCount(len(node.Matches))
		hasExtra = true

		if node.Category == searchtree.CategoryGenre || node.Parent != nil {
			extra += " "
		}
	}

	if node.Category == searchtree.CategoryGenre {
		if len(node.Matches) > 0 {
			extra += "of this genre"
			hasExtra = true
		}
	} else if node.Parent != nil {
		// Skip the immediate album parent when a grandparent artist
		// exists, so titles read "by Artist" rather than "on Album".
		parent := node.Parent
		if parent.Parent != nil {
			parent = parent.Parent
		}

		extra += parentPrefix(parent.Category)
		extra += " "
		extra += startTags[parent.Category]
		extra += html.EscapeString(parent.Name)
		extra += endTags[parent.Category]
		hasExtra = true
	}

	if hasExtra {
		label += "<br><small>" + extra + "</small>"
	}

	return label
}

func songCount(n int) string {
	if n == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", n)
}
