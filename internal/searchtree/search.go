package searchtree

import "strings"

// Search recomputes the visibility flag of every node for the given terms.
// Terms must already be case-folded (see SplitTerms). A node is visible
// when the term list is empty, when its folded name contains any term as a
// substring, or when any descendant is visible. The pass is bottom-up and
// visits every node exactly once: an ancestor match must not short-circuit
// descendant flags, because the display needs each level's flag.
//
// After the pass the sorted root cache and the hidden-node count are
// refreshed.
func (ix *Index) Search(terms []string) {
	ix.hidden = 0

	for _, node := range ix.roots {
		ix.markMatches(node, terms)
	}

	ix.rebuildRootItems()
}

func (ix *Index) markMatches(node *Node, terms []string) bool {
	ownMatch := false
	for _, term := range terms {
		if strings.Contains(node.folded, term) {
			ownMatch = true
			break
		}
	}

	childMatch := false
	for _, child := range node.Children {
		if ix.markMatches(child, terms) {
			childMatch = true
		}
	}

	node.visible = ownMatch || childMatch || len(terms) == 0
	if !node.visible {
		ix.hidden++
	}
	return node.visible
}

// Results flattens the visible portion of the index in materializer order.
// A node with exactly one child is redundant (its single child represents
// it) and hidden-album buckets never appear, regardless of match count.
func (ix *Index) Results() []*Node {
	var results []*Node
	ix.collectResults(ix.rootItems, &results)
	return results
}

func (ix *Index) collectResults(nodes []*Node, results *[]*Node) {
	for _, node := range nodes {
		if len(node.Children) != 1 && node.Category != CategoryHiddenAlbum {
			*results = append(*results, node)
		}
		ix.collectResults(ix.VisibleChildren(node), results)
	}
}
