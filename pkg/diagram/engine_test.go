package diagram_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render/circle"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/tree"
)

type rec struct {
	ID     string
	Parent string
}

func build(t *testing.T) *tree.Tree[string, rec] {
	t.Helper()
	tr, err := tree.BuildFlat([]rec{
		{ID: "a"},
		{ID: "b", Parent: "a"},
		{ID: "c", Parent: "a"},
		{ID: "d", Parent: "b"},
		{ID: "e", Parent: "d"},
	}, tree.Accessors[string, rec]{
		ID:       func(r rec) string { return r.ID },
		ParentID: func(r rec) (string, bool) { return r.Parent, r.Parent != "" },
	})
	require.NoError(t, err)
	return tr
}

func engine() *diagram.Engine[string, rec] {
	e := diagram.NewEngine[string, rec](circle.New())
	e.Breadth = 800
	e.Label = func(r rec) string { return r.ID }
	return e
}

func find(t *testing.T, tr *tree.Tree[string, rec], id string) *tree.Node[string, rec] {
	t.Helper()
	n, ok := tr.Find(id)
	require.True(t, ok)
	return n
}

func transition(f diagram.Frame, p scene.Phase, k scene.Kind, key string) (scene.Transition, bool) {
	for _, tr := range f.Transitions {
		if tr.Phase == p && tr.Kind == k && tr.Key == key {
			return tr, true
		}
	}
	return scene.Transition{}, false
}

func TestFirstUpdateEntersEverything(t *testing.T) {
	tr := build(t)
	e := engine()

	f := e.Update(tr, tr.Root)
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, f.Nodes)
	require.Equal(t, []string{"b", "c", "d", "e"}, f.Links)
	require.Equal(t, 5, f.Count(scene.PhaseEnter, scene.KindNode))
	require.Equal(t, 4, f.Count(scene.PhaseEnter, scene.KindLink))
	require.Zero(t, f.Count(scene.PhaseExit, scene.KindNode))

	// entering nodes start at the anchor's previous position
	tb, ok := transition(f, scene.PhaseEnter, scene.KindNode, "b")
	require.True(t, ok)
	require.Equal(t, scene.Point{}, tb.From)

	b := find(t, tr, "b")
	require.Equal(t, scene.Point{X: b.Y, Y: b.X}, tb.To, "leftToRight swaps axes")
	require.Equal(t, 300.0, b.Y)
}

func TestUpdateStoresPreviousPositions(t *testing.T) {
	tr := build(t)
	e := engine()
	e.Update(tr, tr.Root)
	for _, n := range tr.VisibleNodes() {
		require.Equal(t, n.X, n.X0, "node %s", n.ID)
		require.Equal(t, n.Y, n.Y0, "node %s", n.ID)
	}
}

func TestReconciliationStability(t *testing.T) {
	tr := build(t)
	e := engine()
	first := e.Update(tr, tr.Root)
	second := e.Update(tr, tr.Root)

	require.Equal(t, first.Nodes, second.Nodes)
	require.Equal(t, first.Links, second.Links)
	for _, k := range []scene.Kind{scene.KindNode, scene.KindLink} {
		require.Zero(t, second.Count(scene.PhaseEnter, k))
		require.Zero(t, second.Count(scene.PhaseExit, k))
	}
	require.Equal(t, 5, second.Count(scene.PhaseUpdate, scene.KindNode))
	require.Equal(t, second.Seq, first.Seq+1)
}

func TestCollapseExitsTowardHighestCollapsingParent(t *testing.T) {
	tr := build(t)
	e := engine()
	e.Update(tr, tr.Root)

	b := find(t, tr, "b")
	b.CollapseRecursively()
	f := e.Update(tr, b)

	require.ElementsMatch(t, []string{"d", "e"}, f.Keys(scene.PhaseExit, scene.KindNode))
	require.ElementsMatch(t, []string{"d", "e"}, f.Keys(scene.PhaseExit, scene.KindLink))

	// d's parent b is still shown by a, so both d and e telescope into b
	want := scene.Point{X: b.Y, Y: b.X}
	for _, key := range []string{"d", "e"} {
		tx, ok := transition(f, scene.PhaseExit, scene.KindNode, key)
		require.True(t, ok)
		require.Equal(t, want, tx.To, "exit target of %s", key)
		require.Zero(t, tx.ToOpacity)
	}

	_, ok := e.Scene().Get(scene.KindNode, "d")
	require.False(t, ok, "exited nodes are removed")
	require.Equal(t, []string{"a", "b", "c"}, e.Scene().Keys(scene.KindNode))
}

func TestExpandEntersFromAnchor(t *testing.T) {
	tr := build(t)
	e := engine()
	b := find(t, tr, "b")
	b.CollapseRecursively()
	e.Update(tr, tr.Root)

	prev := scene.Point{X: b.Y0, Y: b.X0}
	b.Expand()
	f := e.Update(tr, b)
	td, ok := transition(f, scene.PhaseEnter, scene.KindNode, "d")
	require.True(t, ok)
	require.Equal(t, prev, td.From)
	require.Equal(t, 300.0, prev.X)
	require.Equal(t, []string{"d"}, f.Keys(scene.PhaseEnter, scene.KindNode))
}

func TestLifecycleClasses(t *testing.T) {
	tr := build(t)
	e := engine()
	find(t, tr, "b").Collapse()
	find(t, tr, "a").Selected = true
	e.Update(tr, tr.Root)

	tests := []struct {
		key  string
		want []string
	}{
		{"a", []string{diagram.ClassExpanded, diagram.ClassSelected}},
		{"b", []string{diagram.ClassCollapsed}},
		{"c", []string{diagram.ClassChildless}},
	}
	for _, tt := range tests {
		el, ok := e.Scene().Get(scene.KindNode, tt.key)
		require.True(t, ok)
		for _, c := range []string{diagram.ClassExpanded, diagram.ClassCollapsed, diagram.ClassChildless, diagram.ClassSelected, diagram.ClassUnloaded} {
			require.Equal(t, contains(tt.want, c), el.HasClass(c), "%s class %s", tt.key, c)
		}
	}
}

func TestUnloadedClass(t *testing.T) {
	tr, err := tree.BuildHierarchy(rec{ID: "root"}, tree.Accessors[string, rec]{
		ID:       func(r rec) string { return r.ID },
		Children: func(rec) []rec { return nil },
	})
	require.NoError(t, err)
	require.NoError(t, tr.SetLoadOnDemand(tree.LoadOnDemand[rec]{
		HasChildren:  func(rec) bool { return true },
		LoadChildren: func(rec, func([]rec)) {},
	}))

	classes := diagram.Classes(tr, tr.Root)
	require.True(t, classes[diagram.ClassCollapsed])
	require.True(t, classes[diagram.ClassUnloaded])
	require.False(t, classes[diagram.ClassChildless])

	require.NoError(t, tr.Load(tr.Root, nil))
	require.True(t, diagram.Classes(tr, tr.Root)[diagram.ClassLoading])
}

func TestNodeSizeMode(t *testing.T) {
	tr := build(t)
	e := engine()
	e.Nodes.SizingMode = layout.NodeSize
	e.Orientation = layout.TopToBottom
	e.Update(tr, tr.Root)

	b, c := find(t, tr, "b"), find(t, tr, "c")
	require.InDelta(t, 25.0, c.X-b.X, 1e-9, "siblings one horizontal spacing apart")
	require.Equal(t, 0.0, tr.Root.X)

	bw, bd := e.NodeSize()
	require.Equal(t, 25.0, bw)
	require.Equal(t, 25.0, bd)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// straight draws links as straight lines and counts generator requests.
type straight struct {
	circle.Strategy
	calls int
}

func (s *straight) LinkPath(layout.Orientation) diagram.PathFunc {
	s.calls++
	return func(a, b scene.Point) string {
		return fmt.Sprintf("M%g,%gL%g,%g", a.X, a.Y, b.X, b.Y)
	}
}

func TestLinksUseStrategyPathGenerator(t *testing.T) {
	tr := build(t)
	s := &straight{}
	e := diagram.NewEngine[string, rec](s)
	e.Breadth = 800
	e.Label = func(r rec) string { return r.ID }

	f := e.Update(tr, tr.Root)
	require.Equal(t, 1, s.calls, "one generator per update")
	for _, key := range f.Links {
		tx, ok := transition(f, scene.PhaseEnter, scene.KindLink, key)
		require.True(t, ok)
		require.Contains(t, tx.FromPath, "L", "enter path of %s", key)
		require.Contains(t, tx.ToPath, "L", "update path of %s", key)
		require.False(t, strings.Contains(tx.ToPath, "C"), "curve in %s", tx.ToPath)
	}

	b := find(t, tr, "b")
	b.CollapseRecursively()
	f = e.Update(tr, b)
	require.Equal(t, 2, s.calls)
	tx, ok := transition(f, scene.PhaseExit, scene.KindLink, "d")
	require.True(t, ok)
	want := fmt.Sprintf("M%g,%gL%g,%g", b.Y, b.X, b.Y, b.X)
	require.Equal(t, want, tx.ToPath, "exit collapses into b")
}
