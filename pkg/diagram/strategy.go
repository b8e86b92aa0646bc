package diagram

import (
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/scene"
)

// NodeSettings controls node spacing and the layout sizing mode.
type NodeSettings struct {
	SizingMode        layout.SizingMode `koanf:"sizing_mode" yaml:"sizing_mode" json:"sizingMode"`
	HorizontalSpacing float64           `koanf:"horizontal_spacing" yaml:"horizontal_spacing" json:"horizontalSpacing"`
	VerticalSpacing   float64           `koanf:"vertical_spacing" yaml:"vertical_spacing" json:"verticalSpacing"`
}

// DefaultNodeSettings returns size mode with 25 units of spacing.
func DefaultNodeSettings() NodeSettings {
	return NodeSettings{SizingMode: layout.Size, HorizontalSpacing: 25, VerticalSpacing: 25}
}

// Validate checks the sizing mode and spacing.
func (s NodeSettings) Validate() error {
	if _, err := layout.ParseSizingMode(string(s.SizingMode)); err != nil {
		return err
	}
	if s.HorizontalSpacing < 0 || s.VerticalSpacing < 0 {
		return errors.Config("node spacing must not be negative")
	}
	return nil
}

// NodeView is what a strategy sees of a node: text, position among its
// siblings and the orientation it is drawn in.
type NodeView struct {
	Key   string
	Label string
	Title string
	Depth int

	// Index and Siblings describe the node's place among its parent's
	// visible children. The root has Index 0 and Siblings 1.
	Index    int
	Siblings int

	Orientation layout.Orientation
}

// PathFunc returns SVG path data for a link between two screen points.
type PathFunc func(source, target scene.Point) string

// Strategy draws one visual variant of the tree. The engine owns keys,
// positions and lifecycle classes; a strategy fills in everything shape
// specific.
//
// Points passed to link methods are layout coordinates (x breadth, y
// depth); strategies project them with the orientation, pick the link's
// endpoints and draw it with the path generator the engine obtained from
// LinkPath for the current update.
type Strategy interface {
	Name() string

	// Footprint is the breadth and depth one node's shape occupies,
	// excluding spacing. It drives node-size layout.
	Footprint(o layout.Orientation) (breadth, depth float64)
	// CenterOffset is added to a node's screen position when centering.
	CenterOffset(o layout.Orientation) scene.Point
	// LinkPath returns the path generator for the orientation. The engine
	// calls it once per update and hands the result to the link methods.
	LinkPath(o layout.Orientation) PathFunc

	// NodeEnter populates a new element's shapes.
	NodeEnter(el *scene.Element, v NodeView)
	// NodeUpdate refreshes an element that stays in the scene (and one
	// that just entered).
	NodeUpdate(el *scene.Element, v NodeView)
	// NodeExit prepares an element for removal and returns the screen
	// offset added to its collapse target.
	NodeExit(el *scene.Element, o layout.Orientation) scene.Point

	// LinkEnter is the start path of an entering link, collapsed at the
	// anchor.
	LinkEnter(o layout.Orientation, path PathFunc, anchor scene.Point) string
	// LinkUpdate is the path between a child and its parent.
	LinkUpdate(o layout.Orientation, path PathFunc, child, parent scene.Point) string
	// LinkExit is the end path of an exiting link, collapsed into p.
	LinkExit(o layout.Orientation, path PathFunc, p scene.Point) string
}
