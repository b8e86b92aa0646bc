package widget

import (
	"time"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// reconfigure applies fn to a copy of the options and installs the result
// if it validates. Geometry changes refresh the canvas dimensions; the
// diagram itself is redrawn by the next Update or Initialize.
func (w *Widget[K, T]) reconfigure(fn func(o *Options[K, T]), geometry bool) error {
	next := w.opts
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := w.view.SetSettings(next.viewportSettings()); err != nil {
		return err
	}
	w.opts = next
	w.view.OnChange(next.OnTransform)
	w.syncEngine()
	if w.tree != nil {
		if err := w.tree.SetLoadOnDemand(next.LoadOnDemand); err != nil {
			return err
		}
	}
	if geometry {
		w.UpdateDimensions()
	}
	return nil
}

// IDAccessor returns the id accessor.
func (w *Widget[K, T]) IDAccessor() func(T) K { return w.opts.GetID }

// SetIDAccessor replaces the id accessor. It takes effect on the next
// Initialize.
func (w *Widget[K, T]) SetIDAccessor(fn func(T) K) error {
	return w.reconfigure(func(o *Options[K, T]) { o.GetID = fn }, false)
}

// ChildrenAccessor returns the children accessor.
func (w *Widget[K, T]) ChildrenAccessor() func(T) []T { return w.opts.GetChildren }

// SetChildrenAccessor replaces the children accessor. It takes effect on
// the next Initialize.
func (w *Widget[K, T]) SetChildrenAccessor(fn func(T) []T) error {
	return w.reconfigure(func(o *Options[K, T]) { o.GetChildren = fn }, false)
}

// ParentIDAccessor returns the parent id accessor.
func (w *Widget[K, T]) ParentIDAccessor() func(T) (K, bool) { return w.opts.GetParentID }

// SetParentIDAccessor replaces the parent id accessor. It takes effect on
// the next Initialize.
func (w *Widget[K, T]) SetParentIDAccessor(fn func(T) (K, bool)) error {
	return w.reconfigure(func(o *Options[K, T]) { o.GetParentID = fn }, false)
}

// SetDisplayText replaces the body text accessor.
func (w *Widget[K, T]) SetDisplayText(fn func(T) string) error {
	return w.reconfigure(func(o *Options[K, T]) { o.DisplayText = fn }, false)
}

// SetTitleText replaces the title accessor; nil removes titles.
func (w *Widget[K, T]) SetTitleText(fn func(T) string) error {
	return w.reconfigure(func(o *Options[K, T]) { o.TitleText = fn }, false)
}

// SetHierarchy replaces the data with a hierarchical root. It takes effect
// on the next Initialize.
func (w *Widget[K, T]) SetHierarchy(root T) error {
	return w.reconfigure(func(o *Options[K, T]) {
		o.Root, o.Records, o.IsFlatData = root, nil, false
	}, false)
}

// SetRecords replaces the data with a flat record list. It takes effect on
// the next Initialize.
func (w *Widget[K, T]) SetRecords(records []T) error {
	return w.reconfigure(func(o *Options[K, T]) {
		var zero T
		o.Root, o.Records, o.IsFlatData = zero, records, true
	}, false)
}

// SetOrientation changes the growth direction.
func (w *Widget[K, T]) SetOrientation(or layout.Orientation) error {
	return w.reconfigure(func(o *Options[K, T]) { o.Orientation = or }, true)
}

// SetDimensions changes the canvas size excluding margins.
func (w *Widget[K, T]) SetDimensions(width, height float64) error {
	return w.reconfigure(func(o *Options[K, T]) {
		o.WidthWithoutMargins, o.HeightWithoutMargins = width, height
	}, true)
}

// SetMargins changes the canvas margins.
func (w *Widget[K, T]) SetMargins(m viewport.Margins) error {
	return w.reconfigure(func(o *Options[K, T]) { o.Margins = m }, true)
}

// SetNodeSettings changes the sizing mode and spacing.
func (w *Widget[K, T]) SetNodeSettings(s diagram.NodeSettings) error {
	return w.reconfigure(func(o *Options[K, T]) { o.NodeSettings = s }, true)
}

// SetNodeDepthMultiplier changes the layout distance between levels.
func (w *Widget[K, T]) SetNodeDepthMultiplier(m float64) error {
	return w.reconfigure(func(o *Options[K, T]) { o.NodeDepthMultiplier = m }, false)
}

// SetScaleRange changes the zoom limits.
func (w *Widget[K, T]) SetScaleRange(minScale, maxScale float64) error {
	return w.reconfigure(func(o *Options[K, T]) { o.MinScale, o.MaxScale = minScale, maxScale }, false)
}

// SetDuration changes the transition duration.
func (w *Widget[K, T]) SetDuration(d time.Duration) error {
	return w.reconfigure(func(o *Options[K, T]) { o.Duration = d }, false)
}

// SetAllowPan enables or disables panning.
func (w *Widget[K, T]) SetAllowPan(v bool) error {
	return w.reconfigure(func(o *Options[K, T]) { o.AllowPan = v }, false)
}

// SetAllowZoom enables or disables zooming.
func (w *Widget[K, T]) SetAllowZoom(v bool) error {
	return w.reconfigure(func(o *Options[K, T]) { o.AllowZoom = v }, false)
}

// SetAllowFocus switches clicks between focus and toggle.
func (w *Widget[K, T]) SetAllowFocus(v bool) error {
	return w.reconfigure(func(o *Options[K, T]) { o.AllowFocus = v }, true)
}

// SetAllowNodeCentering enables or disables centering after interaction.
func (w *Widget[K, T]) SetAllowNodeCentering(v bool) error {
	return w.reconfigure(func(o *Options[K, T]) { o.AllowNodeCentering = v }, false)
}

// SetLoadOnDemand installs or removes the lazy loading callbacks.
func (w *Widget[K, T]) SetLoadOnDemand(l tree.LoadOnDemand[T]) error {
	return w.reconfigure(func(o *Options[K, T]) { o.LoadOnDemand = l }, false)
}

// SetNodeClick installs the click callback; nil removes it.
func (w *Widget[K, T]) SetNodeClick(fn ClickFunc[K, T]) {
	w.opts.NodeClick = fn
}

// SetOnFrame installs the frame subscriber; nil removes it.
func (w *Widget[K, T]) SetOnFrame(fn FrameFunc) {
	w.opts.OnFrame = fn
}

// SetOnTransform installs the transform subscriber; nil removes it.
func (w *Widget[K, T]) SetOnTransform(fn viewport.ChangeFunc) {
	w.opts.OnTransform = fn
	w.view.OnChange(fn)
}

// SetTheme sets the theme name rendered as a class on the canvas.
func (w *Widget[K, T]) SetTheme(theme string) {
	w.opts.Theme = theme
}
