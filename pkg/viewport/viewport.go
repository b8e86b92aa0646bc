// Package viewport manages the pan/zoom transform of a tree diagram and the
// geometry of the canvas it is drawn on.
//
// The canvas is WidthWithoutMargins x HeightWithoutMargins. Inside it, a
// view group is offset by the margins and a panning group carries the
// pan/zoom [Transform]. Centering a node computes the translation that puts
// the node at a fixed anchor of the inner area while keeping the zoom
// scale.
package viewport

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/scene"
)

// Transform is a uniform scale K followed by a translation (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that changes nothing.
var Identity = Transform{K: 1}

// Apply maps p through the transform.
func (t Transform) Apply(p scene.Point) scene.Point {
	return scene.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back into diagram space.
func (t Transform) Invert(p scene.Point) scene.Point {
	return scene.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// String formats t as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", scene.Num(t.X), scene.Num(t.Y), scene.Num(t.K))
}

// Margins insets the drawing area.
type Margins struct {
	Top    float64 `koanf:"top" yaml:"top" json:"top"`
	Right  float64 `koanf:"right" yaml:"right" json:"right"`
	Bottom float64 `koanf:"bottom" yaml:"bottom" json:"bottom"`
	Left   float64 `koanf:"left" yaml:"left" json:"left"`
}

// Settings configures a controller.
type Settings struct {
	WidthWithoutMargins  float64
	HeightWithoutMargins float64
	Margins              Margins

	Orientation layout.Orientation

	MinScale float64
	MaxScale float64

	AllowPan  bool
	AllowZoom bool

	Duration time.Duration
}

// DefaultSettings returns a 960x800 canvas with zoom between 1x and 2x.
func DefaultSettings() Settings {
	return Settings{
		WidthWithoutMargins:  960,
		HeightWithoutMargins: 800,
		Margins:              Margins{Top: 40, Right: 20, Bottom: 40, Left: 100},
		Orientation:          layout.LeftToRight,
		MinScale:             1,
		MaxScale:             2,
		AllowPan:             true,
		AllowZoom:            true,
		Duration:             750 * time.Millisecond,
	}
}

// Validate checks dimensions and the scale range.
func (s Settings) Validate() error {
	if s.WidthWithoutMargins <= 0 || s.HeightWithoutMargins <= 0 {
		return errors.Config("canvas must have positive size, got %vx%v", s.WidthWithoutMargins, s.HeightWithoutMargins)
	}
	if s.Width() <= 0 || s.Height() <= 0 {
		return errors.Config("margins leave no drawing area")
	}
	if s.MinScale <= 0 || s.MaxScale < s.MinScale {
		return errors.Config("invalid scale range [%v, %v]", s.MinScale, s.MaxScale)
	}
	if !s.Orientation.Valid() {
		return errors.Config("unknown orientation %q", s.Orientation)
	}
	if s.Duration < 0 {
		return errors.Config("duration must not be negative")
	}
	return nil
}

// Width is the drawing width inside the margins.
func (s Settings) Width() float64 {
	return s.WidthWithoutMargins - s.Margins.Left - s.Margins.Right
}

// Height is the drawing height inside the margins.
func (s Settings) Height() float64 {
	return s.HeightWithoutMargins - s.Margins.Top - s.Margins.Bottom
}

// BreadthExtent is the inner dimension the tree's breadth axis runs along.
func (s Settings) BreadthExtent() float64 {
	if s.Orientation.Horizontal() {
		return s.Height()
	}
	return s.Width()
}

// Dimensions is the geometry derived from the settings.
type Dimensions struct {
	// ViewBox is the canvas viewBox attribute.
	ViewBox string
	// View is the translation of the view group.
	View scene.Point
	// Breadth is the layout breadth extent in Size mode.
	Breadth float64
	// RootX0 and RootY0 are the root's baseline layout position, the
	// origin for the first entering animation.
	RootX0, RootY0 float64
}

// ChangeFunc receives every new transform and the duration it should be
// animated over.
type ChangeFunc func(t Transform, d time.Duration)

// Controller owns the pan/zoom transform. It is not safe for concurrent
// use.
type Controller struct {
	settings Settings
	dims     Dimensions
	t        Transform
	onChange ChangeFunc
	logger   *log.Logger
}

// New returns a controller with the identity transform.
func New(s Settings) (*Controller, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Controller{settings: s, t: Identity, logger: log.Default()}, nil
}

// SetLogger replaces the default logger.
func (c *Controller) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Settings returns the current settings.
func (c *Controller) Settings() Settings { return c.settings }

// SetSettings validates and replaces the settings. The current transform
// is re-clamped to the new scale range.
func (c *Controller) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.settings = s
	c.t.K = c.clamp(c.t.K)
	return nil
}

// OnChange installs the single transform subscriber. Passing nil removes
// it.
func (c *Controller) OnChange(fn ChangeFunc) { c.onChange = fn }

// Transform returns the current pan/zoom transform.
func (c *Controller) Transform() Transform { return c.t }

// Dimensions returns the geometry from the last UpdateDimensions call.
func (c *Controller) Dimensions() Dimensions { return c.dims }

// UpdateDimensions recomputes canvas geometry for the sizing mode. In
// node-size mode the layout places the root at breadth 0, so unless focus
// mode will center the root anyway, the view is shifted to put breadth 0 in
// the middle of the drawing area. The root baseline is always the root's
// actual layout position: the middle of the breadth extent in size mode,
// breadth 0 in node-size mode.
func (c *Controller) UpdateDimensions(mode layout.SizingMode, allowFocus bool) Dimensions {
	s := c.settings
	m := s.Margins
	d := Dimensions{
		ViewBox: fmt.Sprintf("0 0 %s %s", scene.Num(s.WidthWithoutMargins), scene.Num(s.HeightWithoutMargins)),
		View:    scene.Point{X: m.Left, Y: m.Top},
		Breadth: s.BreadthExtent(),
	}
	switch {
	case mode != layout.NodeSize:
		d.RootX0 = d.Breadth / 2
	case !allowFocus && s.Orientation.Horizontal():
		d.View.Y += s.Height() / 2
	case !allowFocus:
		d.View.X += s.Width() / 2
	}
	c.dims = d
	c.logger.Debug("viewport dimensions updated", "viewBox", d.ViewBox, "breadth", d.Breadth, "mode", mode)
	return d
}

// CenterOn pans so that screen point p sits at the orientation's anchor of
// the drawing area, keeping the current scale. The change is published
// with the configured duration.
func (c *Controller) CenterOn(p scene.Point) Transform {
	fx, fy := c.settings.Orientation.Anchor()
	k := c.t.K
	c.t = Transform{
		X: -p.X*k + c.settings.Width()*fx,
		Y: -p.Y*k + c.settings.Height()*fy,
		K: k,
	}
	c.emit(c.settings.Duration)
	return c.t
}

// Pan moves the view by (dx, dy) screen units. It is a no-op when panning
// is disabled.
func (c *Controller) Pan(dx, dy float64) bool {
	if !c.settings.AllowPan {
		return false
	}
	c.t.X += dx
	c.t.Y += dy
	c.emit(0)
	return true
}

// ZoomAt scales by factor around screen point p, clamped to the scale
// range. It is a no-op when zooming is disabled.
func (c *Controller) ZoomAt(factor float64, p scene.Point) bool {
	if !c.settings.AllowZoom || factor <= 0 {
		return false
	}
	k := c.clamp(c.t.K * factor)
	if k == c.t.K {
		return false
	}
	anchor := c.t.Invert(p)
	c.t = Transform{X: p.X - anchor.X*k, Y: p.Y - anchor.Y*k, K: k}
	c.emit(0)
	return true
}

// SetTransform replaces the transform, clamping the scale. Unlike Pan and
// ZoomAt it is not gated by the allow flags.
func (c *Controller) SetTransform(t Transform, d time.Duration) {
	t.K = c.clamp(t.K)
	c.t = t
	c.emit(d)
}

// Reset returns to the identity transform clamped to the scale range.
func (c *Controller) Reset() {
	c.t = Transform{K: c.clamp(1)}
}

func (c *Controller) clamp(k float64) float64 {
	if k == 0 {
		k = 1
	}
	return max(c.settings.MinScale, min(c.settings.MaxScale, k))
}

func (c *Controller) emit(d time.Duration) {
	if c.onChange != nil {
		c.onChange(c.t, d)
	}
}
