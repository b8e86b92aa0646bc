// Package tree holds the hierarchical state behind an interactive tree diagram.
//
// Every [Node] carries two children lists. The loaded list is the set of
// children that has been materialized, either at build time or by a
// load-on-demand callback. The visible list is what the diagram currently
// shows: nil when the node is collapsed, otherwise the loaded list or a
// subset of it (after sibling hiding). Collapsing never discards data, so
// expanding again is free.
//
// The package is not safe for concurrent use. A tree is owned by one event
// loop and every mutation, including the completion of a load, must run on
// that loop.
//
// # Building
//
// Trees are built from hierarchical input (a root item plus a children
// accessor) or from flat records referencing their parent by id:
//
//	t, err := tree.BuildFlat(records, tree.Accessors[int, Record]{
//	    ID:       func(r Record) int { return r.ID },
//	    ParentID: func(r Record) (int, bool) { return r.Parent, r.Parent != 0 },
//	})
//
// # Focus
//
// [Tree.Focus] implements the focus interaction: selection moves to the
// node, the path from the root is revealed with every off-path sibling
// collapsed, and the node's own children are shown one level deep.
package tree
