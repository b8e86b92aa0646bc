package widget_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/widget"
)

// requireFocusView checks the layout a focus leaves behind: n is the only
// selected node, every ancestor shows just the child leading to n, and n
// shows all of its children collapsed.
func requireFocusView(t *testing.T, w *widget.Widget[string, *item], n *tree.Node[string, *item], step string) {
	t.Helper()
	require.True(t, n.IsVisible(), "%s: %s not visible", step, n.ID)
	require.Equal(t, n, w.Tree().Selected(), step)
	for c := n; c.Parent != nil; c = c.Parent {
		require.Equal(t, []string{c.ID}, ids(c.Parent.Children()), "%s: %s shows siblings of %s", step, c.Parent.ID, c.ID)
	}
	require.Equal(t, ids(n.Loaded()), ids(n.Children()), "%s: children of %s", step, n.ID)
	for _, c := range n.Loaded() {
		require.False(t, c.IsExpanded(), "%s: child %s of %s expanded", step, c.ID, n.ID)
	}
}

func TestFocusAfterFocusIDWithoutFocus(t *testing.T) {
	w := newWidget(t, options())
	require.NoError(t, w.Focus(node(t, w, "a")))

	require.NoError(t, w.SetAllowFocus(false))
	require.NoError(t, w.FocusID("b1"))
	b1 := node(t, w, "b1")
	require.True(t, b1.IsVisible())
	require.Equal(t, []string{"a", "b", "c"}, ids(w.Root().Children()))

	require.NoError(t, w.SetAllowFocus(true))
	require.NoError(t, w.Focus(w.Root()))
	requireFocusView(t, w, w.Root(), "focus root")
	require.Equal(t, []string{"root", "a", "b", "c"}, ids(w.VisibleNodes()))
}

// wide builds a complete tree with the given fan-out and depth.
func wide(id string, fanout, depth int) *item {
	it := &item{ID: id, Name: id}
	if depth == 0 {
		return it
	}
	for i := 0; i < fanout; i++ {
		it.Children = append(it.Children, wide(fmt.Sprintf("%s.%d", id, i), fanout, depth-1))
	}
	return it
}

func TestFocusViewSurvivesMixedInteractions(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			o := options()
			o.Root = wide("n", 3, 3)
			w := newWidget(t, o)
			all := w.AllNodes()

			for i := 0; i < 40; i++ {
				n := all[rng.Intn(len(all))]
				step := fmt.Sprintf("step %d", i)
				switch rng.Intn(6) {
				case 0:
					step += " focus " + n.ID
					require.NoError(t, w.Focus(n))
					requireFocusView(t, w, n, step)
				case 1:
					step += " focus id " + n.ID
					require.NoError(t, w.FocusID(n.ID))
					require.True(t, n.IsVisible(), step)
					if w.Options().AllowFocus {
						requireFocusView(t, w, n, step)
					}
				case 2:
					if !n.IsVisible() {
						continue
					}
					step += " click " + n.ID
					_, err := w.Click(n)
					require.NoError(t, err)
					if w.Options().AllowFocus {
						requireFocusView(t, w, n, step)
					}
				case 3:
					require.NoError(t, w.Toggle(n))
				case 4:
					require.NoError(t, w.SetAllowFocus(rng.Intn(2) == 0))
				case 5:
					if rng.Intn(2) == 0 {
						w.ExpandAll()
					} else {
						w.CollapseAll()
					}
				}
			}
		})
	}
}
