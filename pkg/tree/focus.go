package tree

// ClearSelection deselects every loaded node.
func (t *Tree[K, T]) ClearSelection() {
	t.Root.Each(func(n *Node[K, T]) bool {
		n.Selected = false
		return true
	})
}

// Selected returns the selected node, if any.
func (t *Tree[K, T]) Selected() *Node[K, T] {
	var sel *Node[K, T]
	t.Root.Each(func(n *Node[K, T]) bool {
		if n.Selected {
			sel = n
		}
		return sel == nil
	})
	return sel
}

// Focus moves selection to n and rearranges visibility around it: the path
// from the root is revealed, off-path siblings collapse and n shows its
// children one level deep. It reports whether n was already selected, which
// callers use to skip re-centering.
func (t *Tree[K, T]) Focus(n *Node[K, T]) (wasSelected bool) {
	wasSelected = n.Selected
	t.ClearSelection()
	n.RevealPath()
	n.UpdateFocusView()
	n.Selected = true
	return wasSelected
}
