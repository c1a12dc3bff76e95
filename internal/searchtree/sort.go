package searchtree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator provides locale-aware name ordering for the materializer. The
// index is single-threaded by contract, so sharing one collator is safe.
var collator = collate.New(language.Und, collate.Loose)

// Compare defines the materializer's total order: category rank first, then
// locale-aware name comparison, then recursive parent comparison for nodes
// that tie on both. A node without a parent sorts before one with a parent.
func Compare(a, b *Node) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}

	if v := collator.CompareString(a.Name, b.Name); v != 0 {
		return v
	}

	switch {
	case a.Parent == nil && b.Parent == nil:
		return 0
	case a.Parent == nil:
		return -1
	case b.Parent == nil:
		return 1
	default:
		return Compare(a.Parent, b.Parent)
	}
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return Compare(nodes[i], nodes[j]) < 0
	})
}

// rebuildRootItems refreshes the sorted cache of visible top-level nodes.
// Called unconditionally after every population and every search pass.
func (ix *Index) rebuildRootItems() {
	ix.rootItems = ix.rootItems[:0]
	for _, node := range ix.roots {
		if node.visible {
			ix.rootItems = append(ix.rootItems, node)
		}
	}
	sortNodes(ix.rootItems)
}

// RootItems returns the sorted visible top-level nodes. The returned slice
// is a snapshot valid until the next index mutation.
func (ix *Index) RootItems() []*Node {
	items := make([]*Node, len(ix.rootItems))
	copy(items, ix.rootItems)
	return items
}

// VisibleChildren materializes the sorted visible children of a node. A nil
// node means the index root.
func (ix *Index) VisibleChildren(node *Node) []*Node {
	if node == nil {
		return ix.RootItems()
	}

	children := make([]*Node, 0, len(node.Children))
	for _, child := range node.Children {
		if child.visible {
			children = append(children, child)
		}
	}
	sortNodes(children)
	return children
}

// VisibleChildCount returns the number of visible children under a node
// without materializing them.
func (ix *Index) VisibleChildCount(node *Node) int {
	if node == nil {
		return len(ix.rootItems)
	}

	count := 0
	for _, child := range node.Children {
		if child.visible {
			count++
		}
	}
	return count
}

// HasVisibleChildren reports whether at least one child of the node is
// visible.
func (ix *Index) HasVisibleChildren(node *Node) bool {
	if node == nil {
		return len(ix.rootItems) > 0
	}

	for _, child := range node.Children {
		if child.visible {
			return true
		}
	}
	return false
}
