// Package widget is the interactive tree widget: it owns the tree state,
// the diagram engine and the viewport, and implements the click, focus,
// toggle and centering behavior on top of them.
//
// A widget is single-threaded. All calls, including the completion
// callbacks handed to a [tree.LoadOnDemand] loader, must happen on the same
// goroutine or under a lock held by the host.
package widget

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Interaction names passed to the widget hooks.
const (
	ActionClick  = "click"
	ActionFocus  = "focus"
	ActionToggle = "toggle"
	ActionCenter = "center"
)

// Widget is a collapsible tree diagram.
type Widget[K comparable, T any] struct {
	opts     Options[K, T]
	strategy diagram.Strategy
	tree     *tree.Tree[K, T]
	engine   *diagram.Engine[K, T]
	view     *viewport.Controller
	logger   *log.Logger
	last     diagram.Frame
}

// New validates opts and prepares a widget drawn with strategy. Call
// [Widget.Initialize] to build the tree and draw the first frame.
func New[K comparable, T any](opts Options[K, T], strategy diagram.Strategy) (*Widget[K, T], error) {
	if strategy == nil {
		return nil, errors.Config("a node strategy is required")
	}
	if opts.Orientation == "" {
		opts.Orientation = layout.LeftToRight
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	view, err := viewport.New(opts.viewportSettings())
	if err != nil {
		return nil, err
	}
	view.SetLogger(logger)
	view.OnChange(opts.OnTransform)

	w := &Widget[K, T]{
		opts:     opts,
		strategy: strategy,
		engine:   diagram.NewEngine[K, T](strategy),
		view:     view,
		logger:   logger,
	}
	w.syncEngine()
	return w, nil
}

func (w *Widget[K, T]) syncEngine() {
	e := w.engine
	e.Orientation = w.opts.Orientation
	e.Nodes = w.opts.NodeSettings
	e.DepthMultiplier = w.opts.NodeDepthMultiplier
	e.Duration = w.opts.Duration
	e.Label = w.opts.DisplayText
	e.Title = func(T) string { return "" }
	if w.opts.TitleText != nil {
		e.Title = w.opts.TitleText
	}
	e.Logger = w.logger
}

// Initialize builds the tree from the configured data, collapses
// everything below the root's children, clears the selection, draws the
// first frame and centers the root.
func (w *Widget[K, T]) Initialize() error {
	var (
		t   *tree.Tree[K, T]
		err error
	)
	if w.opts.IsFlatData {
		t, err = tree.BuildFlat(w.opts.Records, w.opts.accessors())
	} else {
		t, err = tree.BuildHierarchy(w.opts.Root, w.opts.accessors())
	}
	if err != nil {
		return err
	}
	if err := t.SetLoadOnDemand(w.opts.LoadOnDemand); err != nil {
		return err
	}
	w.tree = t
	w.syncEngine()
	w.engine.Reset()
	w.view.Reset()
	w.UpdateDimensions()

	for _, c := range t.Root.Loaded() {
		c.CollapseRecursively()
	}
	t.ClearSelection()

	w.logger.Info("tree initialized", "nodes", t.Len(), "orientation", w.opts.Orientation, "mode", w.opts.NodeSettings.SizingMode)
	w.Update(t.Root)
	w.CenterNode(t.Root)
	return nil
}

// Ready reports whether Initialize has succeeded.
func (w *Widget[K, T]) Ready() bool { return w.tree != nil }

// UpdateDimensions recomputes canvas geometry and resets the root's
// baseline position.
func (w *Widget[K, T]) UpdateDimensions() viewport.Dimensions {
	d := w.view.UpdateDimensions(w.opts.NodeSettings.SizingMode, w.opts.AllowFocus)
	w.engine.Breadth = d.Breadth
	if w.tree != nil {
		w.tree.Root.X0, w.tree.Root.Y0 = d.RootX0, d.RootY0
	}
	return d
}

// Update lays out the visible tree and reconciles the scene, animating
// from anchor. The frame is also published to OnFrame.
func (w *Widget[K, T]) Update(anchor *tree.Node[K, T]) diagram.Frame {
	start := time.Now()
	f := w.engine.Update(w.tree, anchor)
	w.last = f
	observability.Widget().OnUpdate(context.Background(), f.Anchor, len(f.Nodes), len(f.Transitions), time.Since(start))
	if w.opts.OnFrame != nil {
		w.opts.OnFrame(f)
	}
	return f
}

// LastFrame returns the most recent frame.
func (w *Widget[K, T]) LastFrame() diagram.Frame { return w.last }

// Click runs the click behavior for n. The NodeClick callback sees the
// node first and may suppress the default by returning false; otherwise
// the node is focused when focus is allowed and toggled when it is not.
// It reports whether the default behavior ran.
func (w *Widget[K, T]) Click(n *tree.Node[K, T]) (bool, error) {
	observability.Widget().OnInteraction(context.Background(), ActionClick, w.key(n))
	if w.opts.NodeClick != nil {
		idx, sibs := n.SiblingIndex()
		if !w.opts.NodeClick(n, idx, sibs) {
			return false, nil
		}
	}
	if w.opts.AllowFocus {
		return true, w.Focus(n)
	}
	return true, w.Toggle(n)
}

// ClickID is Click for the node with the given id.
func (w *Widget[K, T]) ClickID(id K) (bool, error) {
	n, err := w.find(id)
	if err != nil {
		return false, err
	}
	return w.Click(n)
}

// Focus makes n the single selected node with its path revealed, its
// siblings hidden and its children shown. A node whose children have not
// been fetched is loaded first and focused once the loader answers. The
// view is centered on n unless it was already selected.
func (w *Widget[K, T]) Focus(n *tree.Node[K, T]) error {
	observability.Widget().OnInteraction(context.Background(), ActionFocus, w.key(n))
	if w.tree.NeedsLoad(n) {
		return w.load(n, func() { w.focus(n) })
	}
	w.focus(n)
	return nil
}

func (w *Widget[K, T]) focus(n *tree.Node[K, T]) {
	wasSelected := w.tree.Focus(n)
	w.Update(n)
	if w.opts.AllowNodeCentering && !wasSelected {
		w.CenterNode(n)
	}
}

// FocusID brings the node with the given id into view: its ancestors are
// expanded and, when focus is allowed, it becomes the focused node. The
// whole tree is redrawn from the root and the view centered on the node.
func (w *Widget[K, T]) FocusID(id K) error {
	n, err := w.find(id)
	if err != nil {
		return err
	}
	w.tree.ClearSelection()
	if w.opts.AllowFocus {
		n.RevealPath()
		n.UpdateFocusView()
		n.Selected = true
	} else {
		n.ExpandPath()
	}
	w.Update(w.tree.Root)
	w.CenterNode(n)
	return nil
}

// Toggle expands a collapsed node or collapses an expanded one. A node
// whose children have not been fetched is loaded first and expanded once
// the loader answers.
func (w *Widget[K, T]) Toggle(n *tree.Node[K, T]) error {
	observability.Widget().OnInteraction(context.Background(), ActionToggle, w.key(n))
	if w.tree.NeedsLoad(n) {
		return w.load(n, func() {
			n.Expand()
			w.settle(n)
		})
	}
	if n.IsExpanded() {
		n.Collapse()
	} else {
		n.Expand()
	}
	w.settle(n)
	return nil
}

func (w *Widget[K, T]) settle(n *tree.Node[K, T]) {
	w.Update(n)
	if w.opts.AllowNodeCentering {
		w.CenterNode(n)
	}
}

// ToggleID is Toggle for the node with the given id.
func (w *Widget[K, T]) ToggleID(id K) error {
	n, err := w.find(id)
	if err != nil {
		return err
	}
	return w.Toggle(n)
}

// load starts a fetch for n and runs then on success. Until the loader
// answers the tree is unchanged apart from n's loading class.
func (w *Widget[K, T]) load(n *tree.Node[K, T], then func()) error {
	key := w.key(n)
	start := time.Now()
	observability.Widget().OnLoadStart(context.Background(), key)
	w.logger.Debug("loading children", "node", key)

	err := w.tree.Load(n, func(err error) {
		observability.Widget().OnLoadComplete(context.Background(), key, len(n.Loaded()), time.Since(start), err)
		if err != nil {
			w.logger.Error("rejected loaded children", "node", key, "err", err)
			w.engine.Mark(w.tree, n)
			if w.opts.OnLoadError != nil {
				w.opts.OnLoadError(n, err)
			}
			return
		}
		w.logger.Debug("children loaded", "node", key, "count", len(n.Loaded()), "took", time.Since(start))
		then()
	})
	if err != nil {
		return err
	}
	w.engine.Mark(w.tree, n)
	return nil
}

// CancelLoad abandons an outstanding load of n so it can be retried.
func (w *Widget[K, T]) CancelLoad(n *tree.Node[K, T]) {
	w.tree.CancelLoad(n)
	w.engine.Mark(w.tree, n)
}

// CenterNode pans the view so that n's last drawn position, adjusted by
// the strategy's visual center, sits at the orientation's anchor point.
func (w *Widget[K, T]) CenterNode(n *tree.Node[K, T]) viewport.Transform {
	observability.Widget().OnInteraction(context.Background(), ActionCenter, w.key(n))
	sx, sy := w.opts.Orientation.Project(n.X0, n.Y0)
	p := scene.Point{X: sx, Y: sy}.Add(w.strategy.CenterOffset(w.opts.Orientation))
	return w.view.CenterOn(p)
}

// Expand shows n's loaded children. The diagram is not redrawn.
func (w *Widget[K, T]) Expand(n *tree.Node[K, T]) { n.Expand() }

// Collapse hides n's children. The diagram is not redrawn.
func (w *Widget[K, T]) Collapse(n *tree.Node[K, T]) { n.Collapse() }

// ExpandRecursively expands n and every loaded descendant.
func (w *Widget[K, T]) ExpandRecursively(n *tree.Node[K, T]) { n.ExpandRecursively() }

// CollapseRecursively collapses n and every loaded descendant.
func (w *Widget[K, T]) CollapseRecursively(n *tree.Node[K, T]) { n.CollapseRecursively() }

// ExpandAll expands the whole loaded tree and redraws.
func (w *Widget[K, T]) ExpandAll() diagram.Frame {
	w.tree.Root.ExpandRecursively()
	return w.Update(w.tree.Root)
}

// CollapseAll collapses everything below the root and redraws.
func (w *Widget[K, T]) CollapseAll() diagram.Frame {
	for _, c := range w.tree.Root.Loaded() {
		c.CollapseRecursively()
	}
	w.tree.Root.Expand()
	return w.Update(w.tree.Root)
}

// Node looks up a node by id among all loaded nodes, visible or not.
func (w *Widget[K, T]) Node(id K) (*tree.Node[K, T], bool) {
	if w.tree == nil {
		return nil, false
	}
	return w.tree.Find(id)
}

// DataItem returns the host item with the given id.
func (w *Widget[K, T]) DataItem(id K) (T, bool) {
	n, ok := w.Node(id)
	if !ok {
		var zero T
		return zero, false
	}
	return n.Data, true
}

// Root returns the root node, or nil before Initialize.
func (w *Widget[K, T]) Root() *tree.Node[K, T] {
	if w.tree == nil {
		return nil
	}
	return w.tree.Root
}

// Tree returns the underlying tree state.
func (w *Widget[K, T]) Tree() *tree.Tree[K, T] { return w.tree }

// AllNodes returns every loaded node in pre-order.
func (w *Widget[K, T]) AllNodes() []*tree.Node[K, T] { return w.tree.AllNodes() }

// VisibleNodes returns the drawn nodes in breadth-first order.
func (w *Widget[K, T]) VisibleNodes() []*tree.Node[K, T] { return w.tree.VisibleNodes() }

// Links returns the drawn links as child nodes; each links to its parent.
func (w *Widget[K, T]) Links() []*tree.Node[K, T] { return w.tree.VisibleNodes()[1:] }

// Scene returns the retained scene.
func (w *Widget[K, T]) Scene() *scene.Scene { return w.engine.Scene() }

// Engine returns the diagram engine.
func (w *Widget[K, T]) Engine() *diagram.Engine[K, T] { return w.engine }

// Viewport returns the pan/zoom controller.
func (w *Widget[K, T]) Viewport() *viewport.Controller { return w.view }

// Strategy returns the node strategy.
func (w *Widget[K, T]) Strategy() diagram.Strategy { return w.strategy }

// Options returns a copy of the current options.
func (w *Widget[K, T]) Options() Options[K, T] { return w.opts }

// Key returns the scene key of n.
func (w *Widget[K, T]) Key(n *tree.Node[K, T]) string { return w.key(n) }

func (w *Widget[K, T]) key(n *tree.Node[K, T]) string { return w.engine.Key(n.ID) }

func (w *Widget[K, T]) find(id K) (*tree.Node[K, T], error) {
	if w.tree == nil {
		return nil, errors.New(errors.ErrCodeInternal, "widget is not initialized")
	}
	return w.tree.MustFind(id)
}
