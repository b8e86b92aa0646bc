package tree

// Node wraps one data item and its place in the hierarchy.
//
// ID and Data are fixed at creation. X and Y are written by layout, X0 and
// Y0 by the diagram engine once a frame has been reconciled; other packages
// only read them.
type Node[K comparable, T any] struct {
	ID     K
	Data   T
	Parent *Node[K, T]

	// Depth is the distance from the root (root = 0).
	Depth int
	// Height is the distance to the deepest loaded descendant (leaf = 0).
	Height int

	X, Y   float64 // layout position (breadth, depth)
	X0, Y0 float64 // position at the last reconciliation

	Selected bool

	visible []*Node[K, T]
	loaded  []*Node[K, T]

	loading bool
	fetched bool // a load completed, even if it produced nothing
}

// Children returns the visible children, or nil when the node is collapsed.
func (n *Node[K, T]) Children() []*Node[K, T] { return n.visible }

// Loaded returns the materialized children, or nil when none are known.
func (n *Node[K, T]) Loaded() []*Node[K, T] { return n.loaded }

// IsExpanded reports whether the node shows its children.
func (n *Node[K, T]) IsExpanded() bool { return n.visible != nil }

// HasLoaded reports whether any children have been materialized.
func (n *Node[K, T]) HasLoaded() bool { return len(n.loaded) > 0 }

// IsLoading reports whether a load-on-demand request is in flight.
func (n *Node[K, T]) IsLoading() bool { return n.loading }

// IsRoot reports whether n has no parent.
func (n *Node[K, T]) IsRoot() bool { return n.Parent == nil }

// Ancestors returns the chain from n's parent up to the root.
func (n *Node[K, T]) Ancestors() []*Node[K, T] {
	var out []*Node[K, T]
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Path returns the chain from the root down to n, inclusive.
func (n *Node[K, T]) Path() []*Node[K, T] {
	path := []*Node[K, T]{n}
	for p := n.Parent; p != nil; p = p.Parent {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SiblingIndex returns n's position among its parent's visible children and
// that list. The root is its own only sibling.
func (n *Node[K, T]) SiblingIndex() (int, []*Node[K, T]) {
	if n.Parent == nil {
		return 0, []*Node[K, T]{n}
	}
	sibs := n.Parent.visible
	for i, s := range sibs {
		if s == n {
			return i, sibs
		}
	}
	return -1, sibs
}

// Each calls fn for n and every loaded descendant in pre-order.
// Returning false from fn skips the node's subtree.
func (n *Node[K, T]) Each(fn func(*Node[K, T]) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.loaded {
		c.Each(fn)
	}
}

// Descendants returns n and every loaded descendant in pre-order.
func (n *Node[K, T]) Descendants() []*Node[K, T] {
	var out []*Node[K, T]
	n.Each(func(c *Node[K, T]) bool {
		out = append(out, c)
		return true
	})
	return out
}

// VisibleBreadthFirst returns n and its visible descendants in breadth-first
// order, n first.
func (n *Node[K, T]) VisibleBreadthFirst() []*Node[K, T] {
	out := []*Node[K, T]{n}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].visible...)
	}
	return out
}

func (n *Node[K, T]) refreshHeight() {
	for p := n; p != nil; p = p.Parent {
		h := loadedHeight(p)
		if p != n && p.Height == h {
			return
		}
		p.Height = h
	}
}
