package tree

import (
	"github.com/matzehuels/arbor/pkg/errors"
)

// Accessors extract identity and structure from user data items.
//
// ID is always required. Children is used for hierarchical input and
// ParentID for flat input; ParentID reports false for the root record.
type Accessors[K comparable, T any] struct {
	ID       func(T) K
	Children func(T) []T
	ParentID func(T) (K, bool)
}

// Tree owns a rooted hierarchy of nodes plus an id index over every loaded
// node.
type Tree[K comparable, T any] struct {
	Root *Node[K, T]

	acc   Accessors[K, T]
	lazy  LoadOnDemand[T]
	index map[K]*Node[K, T]

	pending map[K]*loadToken
}

// Find returns the loaded node with the given id.
func (t *Tree[K, T]) Find(id K) (*Node[K, T], bool) {
	n, ok := t.index[id]
	return n, ok
}

// MustFind is like Find but returns a NODE_NOT_FOUND error.
func (t *Tree[K, T]) MustFind(id K) (*Node[K, T], error) {
	if n, ok := t.index[id]; ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "no node with id %v", id)
}

// Len returns the number of loaded nodes.
func (t *Tree[K, T]) Len() int { return len(t.index) }

// AllNodes returns the root and every loaded descendant in pre-order.
func (t *Tree[K, T]) AllNodes() []*Node[K, T] { return t.Root.Descendants() }

// VisibleNodes returns the nodes reachable through visible children in
// breadth-first order, root first.
func (t *Tree[K, T]) VisibleNodes() []*Node[K, T] { return t.Root.VisibleBreadthFirst() }

// Accessors returns the accessors the tree was built with.
func (t *Tree[K, T]) Accessors() Accessors[K, T] { return t.acc }

func (t *Tree[K, T]) register(n *Node[K, T]) error {
	if _, dup := t.index[n.ID]; dup {
		return errors.Data("duplicate node id %v", n.ID)
	}
	t.index[n.ID] = n
	return nil
}
