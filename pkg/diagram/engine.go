// Package diagram turns tree state into scene updates.
//
// [Engine.Update] lays out the visible part of a tree, reconciles the result
// against the retained [scene.Scene] by node key and returns a [Frame]
// describing the enter, update and exit transitions. Entering elements grow
// out of the anchor's previous position; exiting elements telescope into
// the nearest ancestor that is still expanded.
package diagram

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Lifecycle classes set on node elements.
const (
	ClassExpanded  = "expanded"
	ClassCollapsed = "collapsed"
	ClassChildless = "childless"
	ClassSelected  = "selected"
	ClassUnloaded  = "unloaded"
	ClassLoading   = "loading"
)

var lifecycle = []string{ClassExpanded, ClassCollapsed, ClassChildless, ClassSelected, ClassUnloaded, ClassLoading}

// Engine reconciles a tree against a retained scene.
//
// The zero value is not usable; use [NewEngine].
type Engine[K comparable, T any] struct {
	Strategy    Strategy
	Orientation layout.Orientation

	Nodes NodeSettings

	// Breadth is the total breadth extent used in Size mode.
	Breadth float64

	DepthMultiplier float64
	Duration        time.Duration

	Key   func(K) string
	Label func(T) string
	Title func(T) string

	Logger *log.Logger

	scene    *scene.Scene
	rendered map[string]*tree.Node[K, T]
	seq      int
}

// NewEngine returns an engine with an empty scene.
func NewEngine[K comparable, T any](s Strategy) *Engine[K, T] {
	return &Engine[K, T]{
		Strategy:        s,
		Orientation:     layout.LeftToRight,
		Nodes:           DefaultNodeSettings(),
		DepthMultiplier: 300,
		Duration:        750 * time.Millisecond,
		Key:             func(k K) string { return fmt.Sprint(k) },
		Label:           func(T) string { return "" },
		Title:           func(T) string { return "" },
		Logger:          log.Default(),
		scene:           scene.New(),
		rendered:        make(map[string]*tree.Node[K, T]),
	}
}

// Scene returns the retained scene.
func (e *Engine[K, T]) Scene() *scene.Scene { return e.scene }

// Reset drops the retained scene, so the next update enters every node.
func (e *Engine[K, T]) Reset() {
	e.scene = scene.New()
	e.rendered = make(map[string]*tree.Node[K, T])
}

// Layout positions the visible nodes of t without touching the scene.
func (e *Engine[K, T]) Layout(t *tree.Tree[K, T]) {
	cfg := layout.Config{Mode: e.Nodes.SizingMode, Breadth: e.Breadth, DepthStep: e.DepthMultiplier}
	if cfg.Mode == layout.NodeSize {
		cfg.Breadth, _ = e.NodeSize()
	}
	layout.Apply(t.Root,
		func(n *tree.Node[K, T]) []*tree.Node[K, T] { return n.Children() },
		func(n *tree.Node[K, T], x, y float64) { n.X, n.Y = x, y },
		cfg)
}

// NodeSize returns the strategy footprint plus spacing. Breadth spacing
// follows the screen axis breadth runs along: vertical spacing for
// horizontal orientations, horizontal spacing otherwise.
func (e *Engine[K, T]) NodeSize() (breadth, depth float64) {
	b, d := e.Strategy.Footprint(e.Orientation)
	if e.Orientation.Horizontal() {
		return b + e.Nodes.VerticalSpacing, d + e.Nodes.HorizontalSpacing
	}
	return b + e.Nodes.HorizontalSpacing, d + e.Nodes.VerticalSpacing
}

// Update recomputes the layout and reconciles the scene, animating entering
// elements from anchor's previous position. Afterwards every visible node's
// X0/Y0 equals its new layout position.
func (e *Engine[K, T]) Update(t *tree.Tree[K, T], anchor *tree.Node[K, T]) Frame {
	e.Layout(t)
	visible := t.VisibleNodes()
	links := visible[1:]

	e.seq++
	f := Frame{
		Seq:      e.seq,
		Anchor:   e.Key(anchor.ID),
		Duration: e.Duration,
		Nodes:    make([]string, len(visible)),
		Links:    make([]string, len(links)),
	}
	for i, n := range visible {
		f.Nodes[i] = e.Key(n.ID)
	}
	for i, n := range links {
		f.Links[i] = e.Key(n.ID)
	}

	key := func(n *tree.Node[K, T]) string { return e.Key(n.ID) }
	o := e.Orientation
	origin := e.project(anchor.X0, anchor.Y0)
	path := e.Strategy.LinkPath(o)

	// links first so they are drawn below nodes
	lj := scene.Join(e.scene, scene.KindLink, links, key)
	for _, n := range lj.Enter {
		el := &scene.Element{Key: key(n), Kind: scene.KindLink, Opacity: 1}
		from := e.Strategy.LinkEnter(o, path, scene.Point{X: anchor.X0, Y: anchor.Y0})
		el.Path = e.Strategy.LinkUpdate(o, path, pos(n), pos(n.Parent))
		e.scene.Put(el)
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseEnter, Kind: scene.KindLink, Key: el.Key,
			FromPath: from, ToPath: el.Path, FromOpacity: 1, ToOpacity: 1,
		})
	}
	for _, n := range lj.Update {
		el, _ := e.scene.Get(scene.KindLink, key(n))
		from := el.Path
		el.Path = e.Strategy.LinkUpdate(o, path, pos(n), pos(n.Parent))
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseUpdate, Kind: scene.KindLink, Key: el.Key,
			FromPath: from, ToPath: el.Path, FromOpacity: 1, ToOpacity: 1,
		})
	}
	for _, el := range lj.Exit {
		to := el.Path
		if n, ok := e.rendered[el.Key]; ok {
			p := collapseTarget(n)
			to = e.Strategy.LinkExit(o, path, pos(p))
		}
		e.scene.Remove(scene.KindLink, el.Key)
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseExit, Kind: scene.KindLink, Key: el.Key,
			FromPath: el.Path, ToPath: to, FromOpacity: 1, ToOpacity: 1,
		})
	}

	nj := scene.Join(e.scene, scene.KindNode, visible, key)
	for _, n := range nj.Enter {
		el := &scene.Element{Key: key(n), Kind: scene.KindNode, Pos: origin, Opacity: 1}
		e.Strategy.NodeEnter(el, e.view(n))
		e.scene.Put(el)
		e.refresh(t, el, n)
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseEnter, Kind: scene.KindNode, Key: el.Key,
			From: origin, To: el.Pos, FromOpacity: 0, ToOpacity: 1,
		})
	}
	for _, n := range nj.Update {
		el, _ := e.scene.Get(scene.KindNode, key(n))
		from := el.Pos
		e.refresh(t, el, n)
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseUpdate, Kind: scene.KindNode, Key: el.Key,
			From: from, To: el.Pos, FromOpacity: 1, ToOpacity: 1,
		})
	}
	for _, el := range nj.Exit {
		to := el.Pos
		offset := e.Strategy.NodeExit(el, o)
		if n, ok := e.rendered[el.Key]; ok {
			p := collapseTarget(n)
			to = e.project(p.X, p.Y).Add(offset)
		}
		e.scene.Remove(scene.KindNode, el.Key)
		f.Transitions = append(f.Transitions, scene.Transition{
			Phase: scene.PhaseExit, Kind: scene.KindNode, Key: el.Key,
			From: el.Pos, To: to, FromOpacity: 1, ToOpacity: 0,
		})
	}

	e.rendered = make(map[string]*tree.Node[K, T], len(visible))
	for _, n := range visible {
		n.X0, n.Y0 = n.X, n.Y
		e.rendered[key(n)] = n
	}

	e.Logger.Debug("diagram updated",
		"anchor", f.Anchor,
		"visible", len(visible),
		"enter", f.Count(scene.PhaseEnter, scene.KindNode),
		"exit", f.Count(scene.PhaseExit, scene.KindNode))
	return f
}

// Classes returns the lifecycle classes for n.
func Classes[K comparable, T any](t *tree.Tree[K, T], n *tree.Node[K, T]) map[string]bool {
	unloaded := t.NeedsLoad(n)
	return map[string]bool{
		ClassExpanded:  n.IsExpanded(),
		ClassCollapsed: !n.IsExpanded() && (n.HasLoaded() || unloaded),
		ClassChildless: !n.IsExpanded() && !n.HasLoaded() && !unloaded,
		ClassSelected:  n.Selected,
		ClassUnloaded:  unloaded,
		ClassLoading:   n.IsLoading(),
	}
}

// Mark re-derives the lifecycle classes of n's element without a layout
// pass. It is used to flag a node as loading while its children are being
// fetched. Nodes that are not rendered are ignored.
func (e *Engine[K, T]) Mark(t *tree.Tree[K, T], n *tree.Node[K, T]) {
	el, ok := e.scene.Get(scene.KindNode, e.Key(n.ID))
	if !ok {
		return
	}
	classes := Classes(t, n)
	for _, c := range lifecycle {
		el.SetClass(c, classes[c])
	}
}

func (e *Engine[K, T]) refresh(t *tree.Tree[K, T], el *scene.Element, n *tree.Node[K, T]) {
	el.Pos = e.project(n.X, n.Y)
	classes := Classes(t, n)
	for _, c := range lifecycle {
		el.SetClass(c, classes[c])
	}
	e.Strategy.NodeUpdate(el, e.view(n))
}

func (e *Engine[K, T]) view(n *tree.Node[K, T]) NodeView {
	idx, sibs := n.SiblingIndex()
	return NodeView{
		Key:         e.Key(n.ID),
		Label:       e.Label(n.Data),
		Title:       e.Title(n.Data),
		Depth:       n.Depth,
		Index:       idx,
		Siblings:    len(sibs),
		Orientation: e.Orientation,
	}
}

func (e *Engine[K, T]) project(x, y float64) scene.Point {
	sx, sy := e.Orientation.Project(x, y)
	return scene.Point{X: sx, Y: sy}
}

func pos[K comparable, T any](n *tree.Node[K, T]) scene.Point {
	return scene.Point{X: n.X, Y: n.Y}
}

// collapseTarget walks up from n's parent while the chain above is being
// collapsed and returns the highest such ancestor.
func collapseTarget[K comparable, T any](n *tree.Node[K, T]) *tree.Node[K, T] {
	p := n.Parent
	if p == nil {
		return n
	}
	for p.Parent != nil && p.Parent.Children() == nil {
		p = p.Parent
	}
	return p
}
