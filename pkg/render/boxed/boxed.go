// Package boxed draws tree nodes as a body box with an optional title tab.
//
// Body text is wrapped to the box and truncated with an ellipsis when it
// does not fit; the full text is then kept as the element's tooltip. Links
// attach to box edges: the parent's outgoing side and the child's incoming
// side.
package boxed

import (
	"math"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
)

const (
	bodyFontSize  = 13.0
	titleFontSize = 14.0
	lineHeight    = 1.2
)

// Padding is an inset on each side of a box.
type Padding struct {
	Top    float64 `koanf:"top" yaml:"top" json:"top"`
	Right  float64 `koanf:"right" yaml:"right" json:"right"`
	Bottom float64 `koanf:"bottom" yaml:"bottom" json:"bottom"`
	Left   float64 `koanf:"left" yaml:"left" json:"left"`
}

// Settings holds box dimensions.
type Settings struct {
	BodyWidth   float64 `koanf:"body_width" yaml:"body_width" json:"bodyWidth"`
	BodyHeight  float64 `koanf:"body_height" yaml:"body_height" json:"bodyHeight"`
	BodyPadding Padding `koanf:"body_padding" yaml:"body_padding" json:"bodyPadding"`

	// TitleWidth defaults to half the body width when zero.
	TitleWidth   float64 `koanf:"title_width" yaml:"title_width" json:"titleWidth"`
	TitleHeight  float64 `koanf:"title_height" yaml:"title_height" json:"titleHeight"`
	TitlePadding Padding `koanf:"title_padding" yaml:"title_padding" json:"titlePadding"`
}

// DefaultSettings returns a 200x75 body box with a 100x40 title tab.
func DefaultSettings() Settings {
	return Settings{
		BodyWidth:    200,
		BodyHeight:   75,
		BodyPadding:  Padding{Top: 5, Right: 10, Bottom: 5, Left: 10},
		TitleHeight:  40,
		TitlePadding: Padding{Top: 2, Right: 5, Bottom: 2, Left: 5},
	}
}

// Validate rejects non-positive box sizes.
func (s Settings) Validate() error {
	if s.BodyWidth <= 0 || s.BodyHeight <= 0 {
		return errors.Config("body box must have positive size, got %vx%v", s.BodyWidth, s.BodyHeight)
	}
	if s.TitleWidth < 0 || s.TitleHeight < 0 {
		return errors.Config("title box size must not be negative")
	}
	return nil
}

func (s Settings) titleWidth() float64 {
	if s.TitleWidth > 0 {
		return s.TitleWidth
	}
	return s.BodyWidth / 2
}

// Strategy implements [diagram.Strategy] for boxed nodes.
type Strategy struct {
	Settings
}

var _ diagram.Strategy = (*Strategy)(nil)

// New returns a boxed strategy.
func New(s Settings) *Strategy { return &Strategy{Settings: s} }

// Name returns "boxed".
func (b *Strategy) Name() string { return "boxed" }

// Footprint returns the body box measured along the layout axes.
func (b *Strategy) Footprint(o layout.Orientation) (breadth, depth float64) {
	if o.Horizontal() {
		return b.BodyHeight, b.BodyWidth
	}
	return b.BodyWidth, b.BodyHeight
}

// CenterOffset shifts centering to the middle of the box along the depth
// axis.
func (b *Strategy) CenterOffset(o layout.Orientation) scene.Point {
	switch o {
	case layout.TopToBottom:
		return scene.Point{Y: b.BodyHeight / 2}
	case layout.BottomToTop:
		return scene.Point{Y: -b.BodyHeight / 2}
	default:
		return scene.Point{X: b.BodyWidth / 2}
	}
}

// LinkPath returns a horizontal curve for left-right layouts and a
// vertical one otherwise.
func (b *Strategy) LinkPath(o layout.Orientation) diagram.PathFunc {
	if o.Horizontal() {
		return render.LinkHorizontal
	}
	return render.LinkVertical
}

// NodeEnter builds the body and title shapes.
func (b *Strategy) NodeEnter(el *scene.Element, v diagram.NodeView) {
	b.draw(el, v)
}

// NodeUpdate redraws shapes so accessor changes are picked up.
func (b *Strategy) NodeUpdate(el *scene.Element, v diagram.NodeView) {
	b.draw(el, v)
}

// NodeExit fades the node out toward the parent's outgoing edge.
func (b *Strategy) NodeExit(el *scene.Element, o layout.Orientation) scene.Point {
	el.Opacity = 0
	switch o {
	case layout.TopToBottom:
		return scene.Point{X: b.BodyWidth / 2, Y: b.BodyHeight}
	case layout.BottomToTop:
		return scene.Point{X: b.BodyWidth / 2, Y: -b.BodyHeight}
	case layout.RightToLeft:
		return scene.Point{Y: b.BodyHeight / 2}
	default:
		return scene.Point{X: b.BodyWidth, Y: b.BodyHeight / 2}
	}
}

// LinkEnter collapses the link onto the anchor's outgoing edge.
func (b *Strategy) LinkEnter(o layout.Orientation, path diagram.PathFunc, anchor scene.Point) string {
	p := b.outPort(o, anchor)
	return path(p, p)
}

// LinkUpdate connects the child's incoming edge to the parent's outgoing
// edge.
func (b *Strategy) LinkUpdate(o layout.Orientation, path diagram.PathFunc, child, parent scene.Point) string {
	return path(b.inPort(o, child), b.outPort(o, parent))
}

// LinkExit collapses the link onto p's outgoing edge.
func (b *Strategy) LinkExit(o layout.Orientation, path diagram.PathFunc, p scene.Point) string {
	q := b.outPort(o, p)
	return path(q, q)
}

// inPort is where a link enters a node, in screen space. Boxes span
// [0, width] horizontally and [-height/2, height/2] vertically around the
// node origin.
func (b *Strategy) inPort(o layout.Orientation, p scene.Point) scene.Point {
	sx, sy := o.Project(p.X, p.Y)
	switch o {
	case layout.TopToBottom:
		return scene.Point{X: sx + b.BodyWidth/2, Y: sy - b.BodyHeight/2}
	case layout.BottomToTop:
		return scene.Point{X: sx + b.BodyWidth/2, Y: sy + b.BodyHeight/2}
	case layout.RightToLeft:
		return scene.Point{X: sx + b.BodyWidth, Y: sy}
	default:
		return scene.Point{X: sx, Y: sy}
	}
}

// outPort is where links leave a node toward its children.
func (b *Strategy) outPort(o layout.Orientation, p scene.Point) scene.Point {
	sx, sy := o.Project(p.X, p.Y)
	switch o {
	case layout.TopToBottom:
		return scene.Point{X: sx + b.BodyWidth/2, Y: sy + b.BodyHeight/2}
	case layout.BottomToTop:
		return scene.Point{X: sx + b.BodyWidth/2, Y: sy - b.BodyHeight/2}
	case layout.RightToLeft:
		return scene.Point{X: sx, Y: sy}
	default:
		return scene.Point{X: sx + b.BodyWidth, Y: sy}
	}
}

func (b *Strategy) draw(el *scene.Element, v diagram.NodeView) {
	w, h := b.BodyWidth, b.BodyHeight
	pad := b.BodyPadding
	hasTitle := v.Title != ""

	top := pad.Top
	if hasTitle {
		top += b.TitleHeight / 2
	}

	shapes := []scene.Shape{{
		Tag:   "rect",
		Class: "body-box",
		Attrs: map[string]string{
			"x": "0", "y": scene.Num(-h / 2),
			"width": scene.Num(w), "height": scene.Num(h),
		},
	}}

	innerW := w - pad.Left - pad.Right
	innerH := h - top - pad.Bottom
	maxLines := max(1, int(math.Floor(innerH/(bodyFontSize*lineHeight))))
	lines, cut := render.Wrap(v.Label, render.MaxChars(innerW, bodyFontSize), maxLines)
	shapes = append(shapes, textLines("body-text", lines, pad.Left+innerW/2, -h/2+top+innerH/2, bodyFontSize)...)

	el.Title = ""
	if cut {
		el.Title = v.Label
	}

	if hasTitle {
		tw, th := b.titleWidth(), b.TitleHeight
		tx, ty := -tw/3, -th/2-h/2
		tp := b.TitlePadding
		shapes = append(shapes, scene.Shape{
			Tag:   "rect",
			Class: "title-box",
			Attrs: map[string]string{
				"x": scene.Num(tx), "y": scene.Num(ty),
				"width": scene.Num(tw), "height": scene.Num(th),
			},
		})
		innerTW := tw - tp.Left - tp.Right
		title, _ := render.Truncate(v.Title, render.MaxChars(innerTW, titleFontSize))
		shapes = append(shapes, textLines("title-text", []string{title},
			tx+tp.Left+innerTW/2, ty+tp.Top+(th-tp.Top-tp.Bottom)/2, titleFontSize)...)
	}
	el.Shapes = shapes
}

// textLines centers lines vertically around cy.
func textLines(class string, lines []string, cx, cy, size float64) []scene.Shape {
	step := size * lineHeight
	y0 := cy - step*float64(len(lines)-1)/2
	out := make([]scene.Shape, 0, len(lines))
	for i, l := range lines {
		out = append(out, scene.Shape{
			Tag:   "text",
			Class: class,
			Text:  l,
			Attrs: map[string]string{
				"x":                 scene.Num(cx),
				"y":                 scene.Num(y0 + float64(i)*step),
				"font-size":         scene.Num(size),
				"text-anchor":       "middle",
				"dominant-baseline": "central",
			},
		})
	}
	return out
}
