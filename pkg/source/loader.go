package source

import (
	"context"

	"github.com/matzehuels/arbor/pkg/tree"
)

// Loader fetches records from a backend.
type Loader interface {
	// Name identifies the backend in cache keys and logs.
	Name() string

	// Root returns the top record. It is marked HasChildren when the
	// backend may have children for it.
	Root(ctx context.Context) (*Record, error)

	// Children returns the direct children of parent.
	Children(ctx context.Context, parent *Record) ([]*Record, error)
}

// ErrorFunc receives a failed fetch. Hosts release the node with
// [widget.Widget.CancelLoad] so the user can retry.
type ErrorFunc func(parent *Record, err error)

// Sync adapts l to load-on-demand callbacks that fetch on the calling
// goroutine and answer before LoadChildren returns.
func Sync(ctx context.Context, l Loader, onErr ErrorFunc) tree.LoadOnDemand[*Record] {
	return tree.LoadOnDemand[*Record]{
		HasChildren: func(r *Record) bool { return r.HasChildren },
		LoadChildren: func(r *Record, done func([]*Record)) {
			kids, err := l.Children(ctx, r)
			if err != nil {
				if onErr != nil {
					onErr(r, err)
				}
				return
			}
			done(kids)
		},
	}
}

// Async adapts l to load-on-demand callbacks that fetch on a new goroutine.
// The result is handed to post, which must run the given function on the
// goroutine that owns the widget (a bubbletea command, a locked session,
// an event queue).
func Async(ctx context.Context, l Loader, post func(func()), onErr ErrorFunc) tree.LoadOnDemand[*Record] {
	return tree.LoadOnDemand[*Record]{
		HasChildren: func(r *Record) bool { return r.HasChildren },
		LoadChildren: func(r *Record, done func([]*Record)) {
			go func() {
				kids, err := l.Children(ctx, r)
				post(func() {
					if err != nil {
						if onErr != nil {
							onErr(r, err)
						}
						return
					}
					done(kids)
				})
			}()
		},
	}
}

// Lazy returns a dataset containing only l's root, whose children are
// loaded on demand.
func Lazy(ctx context.Context, l Loader) (*Dataset, error) {
	root, err := l.Root(ctx)
	if err != nil {
		return nil, err
	}
	return &Dataset{Root: root}, nil
}
