package tree

// Expand shows n's loaded children. It has no effect on a node without
// loaded children.
func (n *Node[K, T]) Expand() {
	n.visible = n.loaded
}

// Collapse hides n's children without discarding them.
func (n *Node[K, T]) Collapse() {
	n.visible = nil
}

// CollapseRecursively collapses n and every loaded descendant, children
// before parents. Descendants hidden behind a sibling filter are collapsed
// too, so nothing stays expanded under n.
func (n *Node[K, T]) CollapseRecursively() {
	for _, c := range n.loaded {
		c.CollapseRecursively()
	}
	n.visible = nil
}

// ExpandRecursively expands n and then every loaded descendant.
func (n *Node[K, T]) ExpandRecursively() {
	n.visible = n.loaded
	for _, c := range n.loaded {
		c.ExpandRecursively()
	}
}

// HideSiblings collapses every sibling of n recursively and leaves n as the
// only visible child of its parent. The root has no siblings.
func (n *Node[K, T]) HideSiblings() {
	p := n.Parent
	if p == nil {
		return
	}
	for _, s := range p.loaded {
		if s != n {
			s.CollapseRecursively()
		}
	}
	p.visible = []*Node[K, T]{n}
}

// ExpandPath makes n visible by showing every loaded child of each
// ancestor. Ancestors left showing a single child by an earlier focus get
// their full child list back; the siblings keep their own state.
func (n *Node[K, T]) ExpandPath() {
	for _, a := range n.Ancestors() {
		a.Expand()
	}
}

// RevealPath makes n visible: every collapsed ancestor is expanded and
// every off-path sibling along the chain is collapsed.
func (n *Node[K, T]) RevealPath() {
	n.ExpandPath()
	for c := n; c.Parent != nil; c = c.Parent {
		c.HideSiblings()
	}
}

// UpdateFocusView shows n's children one level deep.
//
// A collapsed node is expanded with every child collapsed. An expanded node
// whose children are themselves expanded, or that shows only some of its
// children, is reset to one level; an expanded node showing all of its
// children collapsed is left alone.
func (n *Node[K, T]) UpdateFocusView() {
	switch {
	case n.visible == nil && n.loaded != nil:
		n.Expand()
		for _, c := range n.visible {
			c.CollapseRecursively()
		}
	case n.visible != nil:
		nested := len(n.visible) != len(n.loaded)
		for _, c := range n.loaded {
			if c.visible != nil {
				nested = true
				break
			}
		}
		if nested {
			n.CollapseRecursively()
			n.Expand()
		}
	}
}

// IsVisible reports whether every ancestor of n shows the child on the path
// to n.
func (n *Node[K, T]) IsVisible() bool {
	for c := n; c.Parent != nil; c = c.Parent {
		found := false
		for _, s := range c.Parent.visible {
			if s == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
