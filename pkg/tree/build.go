package tree

import (
	"github.com/matzehuels/arbor/pkg/errors"
)

// BuildHierarchy wraps root and everything reachable through the children
// accessor. Every node starts expanded (visible = loaded). Items without
// children have no loaded list.
func BuildHierarchy[K comparable, T any](root T, acc Accessors[K, T]) (*Tree[K, T], error) {
	if acc.ID == nil {
		return nil, errors.Config("id accessor is required")
	}
	if acc.Children == nil {
		return nil, errors.Config("children accessor is required for hierarchical data")
	}

	t := &Tree[K, T]{acc: acc, index: make(map[K]*Node[K, T])}
	var wrap func(item T, parent *Node[K, T]) (*Node[K, T], error)
	wrap = func(item T, parent *Node[K, T]) (*Node[K, T], error) {
		n := newNode(acc.ID(item), item, parent)
		if err := t.register(n); err != nil {
			return nil, err
		}
		for _, c := range acc.Children(item) {
			child, err := wrap(c, n)
			if err != nil {
				return nil, err
			}
			n.loaded = append(n.loaded, child)
		}
		n.visible = n.loaded
		n.Height = loadedHeight(n)
		return n, nil
	}

	r, err := wrap(root, nil)
	if err != nil {
		return nil, err
	}
	t.Root = r
	return t, nil
}

// BuildFlat assembles records that reference their parent by id. Exactly
// one record must report no parent. Sibling order follows record order.
//
// Orphans (a parent id that matches no record), duplicate ids, a missing or
// repeated root and records unreachable from the root all fail with a data
// error; no partial tree is returned.
func BuildFlat[K comparable, T any](records []T, acc Accessors[K, T]) (*Tree[K, T], error) {
	if acc.ID == nil {
		return nil, errors.Config("id accessor is required")
	}
	if acc.ParentID == nil {
		return nil, errors.Config("parent id accessor is required for flat data")
	}
	if len(records) == 0 {
		return nil, errors.Data("no records")
	}

	ids := make(map[K]struct{}, len(records))
	for _, r := range records {
		id := acc.ID(r)
		if _, dup := ids[id]; dup {
			return nil, errors.Data("duplicate node id %v", id)
		}
		ids[id] = struct{}{}
	}

	var (
		roots    []T
		children = make(map[K][]T)
	)
	for _, r := range records {
		pid, ok := acc.ParentID(r)
		if !ok {
			roots = append(roots, r)
			continue
		}
		if _, known := ids[pid]; !known {
			return nil, errors.Data("record %v references unknown parent %v", acc.ID(r), pid)
		}
		children[pid] = append(children[pid], r)
	}
	switch len(roots) {
	case 0:
		return nil, errors.Data("no root record (every record has a parent)")
	case 1:
	default:
		return nil, errors.Data("multiple root records: %v and %v", acc.ID(roots[0]), acc.ID(roots[1]))
	}

	t := &Tree[K, T]{acc: acc, index: make(map[K]*Node[K, T], len(records))}
	var wrap func(item T, parent *Node[K, T]) *Node[K, T]
	wrap = func(item T, parent *Node[K, T]) *Node[K, T] {
		n := newNode(acc.ID(item), item, parent)
		t.index[n.ID] = n
		for _, c := range children[n.ID] {
			n.loaded = append(n.loaded, wrap(c, n))
		}
		n.visible = n.loaded
		n.Height = loadedHeight(n)
		return n
	}
	t.Root = wrap(roots[0], nil)

	if len(t.index) != len(records) {
		for _, r := range records {
			if _, ok := t.index[acc.ID(r)]; !ok {
				return nil, errors.Data("record %v is not reachable from the root (parent cycle)", acc.ID(r))
			}
		}
	}
	return t, nil
}

func newNode[K comparable, T any](id K, item T, parent *Node[K, T]) *Node[K, T] {
	n := &Node[K, T]{ID: id, Data: item, Parent: parent}
	if parent != nil {
		n.Depth = parent.Depth + 1
	}
	return n
}

func loadedHeight[K comparable, T any](n *Node[K, T]) int {
	h := 0
	for _, c := range n.loaded {
		h = max(h, c.Height+1)
	}
	return h
}
