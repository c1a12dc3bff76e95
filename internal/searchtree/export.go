package searchtree

// ExportSelection walks the selected nodes in display order and produces
// the ordered, deduplicated list of entry ids transitively reachable from
// the selection. Each id is marked selected in the store exactly once, on
// first encounter; the store's previous selection is cleared first and the
// final selection is cached when the walk completes.
//
// The exporter acts on whatever node set it is given and does not consult
// visibility flags: the caller passes the nodes a display is showing.
func (ix *Index) ExportSelection(nodes []*Node, store EntryStore) []int {
	store.SelectAll(false)

	entries := []int{}
	seen := make(map[int]struct{})

	emit := func(node *Node) {
		for _, entry := range node.Matches {
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			entries = append(entries, entry)
			store.SelectEntry(entry, true)
		}
	}

	var collect func(folder *Node)
	collect = func(folder *Node) {
		for _, child := range sortedChildren(folder) {
			if child.Category == CategoryTitle && len(child.Matches) > 0 {
				emit(child)
			} else if len(child.Children) > 0 {
				collect(child)
			}
		}
	}

	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.Category == CategoryTitle && len(node.Matches) > 0 {
			emit(node)
		} else if len(node.Children) > 0 {
			collect(node)
		}
	}

	store.CacheSelection()
	return entries
}

// FirstEntry returns the first entry id reachable from node in display
// order: the node's own first match, or the first match found descending
// its sorted children. Reports false for an empty subtree.
func (ix *Index) FirstEntry(node *Node) (int, bool) {
	if node == nil {
		return 0, false
	}
	if len(node.Matches) > 0 {
		return node.Matches[0], true
	}
	for _, child := range sortedChildren(node) {
		if entry, ok := ix.FirstEntry(child); ok {
			return entry, true
		}
	}
	return 0, false
}

// sortedChildren orders all children of a node, visible or not, by the
// materializer's comparator.
func sortedChildren(node *Node) []*Node {
	children := make([]*Node, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, child)
	}
	sortNodes(children)
	return children
}
