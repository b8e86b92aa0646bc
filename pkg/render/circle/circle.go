// Package circle draws tree nodes as a small circle with a text label.
package circle

import (
	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
)

// ClassMiddle marks the middle child of an odd number of siblings, whose
// label sits on the link line.
const ClassMiddle = "middle"

const maxLabel = 40

// Strategy implements [diagram.Strategy] for circle nodes.
type Strategy struct{}

var _ diagram.Strategy = Strategy{}

// New returns a circle strategy.
func New() Strategy { return Strategy{} }

func (Strategy) Name() string { return "circle" }

// Footprint is zero: circles are spaced purely by node spacing.
func (Strategy) Footprint(layout.Orientation) (breadth, depth float64) { return 0, 0 }

func (Strategy) CenterOffset(layout.Orientation) scene.Point { return scene.Point{} }

func (Strategy) LinkPath(o layout.Orientation) diagram.PathFunc {
	if o.Horizontal() {
		return render.LinkHorizontal
	}
	return render.LinkVertical
}

func (Strategy) NodeEnter(el *scene.Element, v diagram.NodeView) {
	label, cut := render.Truncate(v.Label, maxLabel)
	el.Title = ""
	if cut {
		el.Title = v.Label
	}
	el.Shapes = []scene.Shape{
		{Tag: "circle", Attrs: map[string]string{"r": "0.5em"}},
		{Tag: "text", Text: label, Attrs: labelAttrs(v.Orientation)},
	}
}

func (Strategy) NodeUpdate(el *scene.Element, v diagram.NodeView) {
	middle := v.Siblings%2 != 0 && v.Index == v.Siblings/2 && v.Depth > 0
	el.SetClass(ClassMiddle, middle)
}

func (Strategy) NodeExit(el *scene.Element, _ layout.Orientation) scene.Point {
	el.Opacity = 0
	return scene.Point{}
}

func (Strategy) LinkEnter(o layout.Orientation, path diagram.PathFunc, anchor scene.Point) string {
	p := project(o, anchor)
	return path(p, p)
}

func (Strategy) LinkUpdate(o layout.Orientation, path diagram.PathFunc, child, parent scene.Point) string {
	return path(project(o, child), project(o, parent))
}

func (Strategy) LinkExit(o layout.Orientation, path diagram.PathFunc, p scene.Point) string {
	q := project(o, p)
	return path(q, q)
}

func project(o layout.Orientation, p scene.Point) scene.Point {
	x, y := o.Project(p.X, p.Y)
	return scene.Point{X: x, Y: y}
}

func labelAttrs(o layout.Orientation) map[string]string {
	switch o {
	case layout.TopToBottom:
		return map[string]string{"y": "1.5em", "text-anchor": "middle"}
	case layout.BottomToTop:
		return map[string]string{"y": "-1em", "text-anchor": "middle"}
	case layout.RightToLeft:
		return map[string]string{"x": "-1em", "dy": "0.35em", "text-anchor": "end"}
	default:
		return map[string]string{"x": "1em", "dy": "0.35em", "text-anchor": "start"}
	}
}
