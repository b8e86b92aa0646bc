package tree

import (
	"github.com/matzehuels/arbor/pkg/errors"
)

// LoadOnDemand fetches children lazily. Both functions must be set for it to
// be enabled; setting only one is a configuration error.
//
// LoadChildren may call done at any later time, but always on the event
// loop that owns the tree.
type LoadOnDemand[T any] struct {
	HasChildren  func(item T) bool
	LoadChildren func(item T, done func(children []T))
}

// Enabled reports whether both callbacks are set.
func (l LoadOnDemand[T]) Enabled() bool {
	return l.HasChildren != nil && l.LoadChildren != nil
}

// Validate rejects a half-configured setting.
func (l LoadOnDemand[T]) Validate() error {
	if (l.HasChildren == nil) != (l.LoadChildren == nil) {
		return errors.Config("load-on-demand requires both HasChildren and LoadChildren")
	}
	return nil
}

// ErrLoadInFlight is returned by [Tree.Load] when the node already has an
// outstanding request.
var ErrLoadInFlight = errors.New(errors.ErrCodeInFlight, "children are already being loaded")

// SetLoadOnDemand installs the lazy loading callbacks.
func (t *Tree[K, T]) SetLoadOnDemand(l LoadOnDemand[T]) error {
	if err := l.Validate(); err != nil {
		return err
	}
	t.lazy = l
	return nil
}

// LoadOnDemand returns the installed callbacks.
func (t *Tree[K, T]) LoadOnDemand() LoadOnDemand[T] { return t.lazy }

// NeedsLoad reports whether interacting with n must fetch its children
// first: nothing is loaded or visible, no load has completed yet and the
// host says children exist.
func (t *Tree[K, T]) NeedsLoad(n *Node[K, T]) bool {
	return n.loaded == nil && n.visible == nil && !n.fetched &&
		t.lazy.Enabled() && t.lazy.HasChildren(n.Data)
}

// Load asks the host for n's children. The tree is not touched until the
// host calls back; then the children are attached to n as loaded (but not
// visible) leaves and cont runs with a nil error. A batch that reuses an
// existing id is rejected, leaving n unloaded, and cont receives the data
// error.
//
// A second Load on the same node before the first completes returns
// ErrLoadInFlight without calling the host. Callbacks arriving after
// [Tree.CancelLoad], and repeated calls to the same callback, are ignored.
func (t *Tree[K, T]) Load(n *Node[K, T], cont func(error)) error {
	if !t.lazy.Enabled() {
		return errors.Config("load-on-demand is not configured")
	}
	if n.loading {
		return ErrLoadInFlight
	}
	n.loading = true
	gen := &loadToken{}
	t.tokens()[n.ID] = gen

	t.lazy.LoadChildren(n.Data, func(items []T) {
		if gen.done || t.tokens()[n.ID] != gen {
			return
		}
		gen.done = true
		delete(t.pending, n.ID)
		n.loading = false

		err := t.attach(n, items)
		if cont != nil {
			cont(err)
		}
	})
	return nil
}

// CancelLoad releases n's in-flight flag so the node can be retried. Hosts
// call it when their fetch fails.
func (t *Tree[K, T]) CancelLoad(n *Node[K, T]) {
	n.loading = false
	delete(t.pending, n.ID)
}

type loadToken struct{ done bool }

func (t *Tree[K, T]) tokens() map[K]*loadToken {
	if t.pending == nil {
		t.pending = make(map[K]*loadToken)
	}
	return t.pending
}

func (t *Tree[K, T]) attach(n *Node[K, T], items []T) error {
	seen := make(map[K]struct{}, len(items))
	for _, item := range items {
		id := t.acc.ID(item)
		if _, dup := t.index[id]; dup {
			return errors.Data("loaded child %v of %v duplicates an existing id", id, n.ID)
		}
		if _, dup := seen[id]; dup {
			return errors.Data("loaded children of %v repeat id %v", n.ID, id)
		}
		seen[id] = struct{}{}
	}

	n.fetched = true
	for _, item := range items {
		c := newNode(t.acc.ID(item), item, n)
		t.index[c.ID] = c
		n.loaded = append(n.loaded, c)
	}
	n.refreshHeight()
	return nil
}
