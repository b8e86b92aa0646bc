package widget

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// ClickFunc is called before the built-in click behavior with the clicked
// node, its index among its visible siblings and the sibling list.
// Returning false suppresses focus/toggle.
type ClickFunc[K comparable, T any] func(n *tree.Node[K, T], index int, siblings []*tree.Node[K, T]) bool

// FrameFunc receives every reconciled frame.
type FrameFunc func(f diagram.Frame)

// LoadErrorFunc receives data errors from a completed load.
type LoadErrorFunc[K comparable, T any] func(n *tree.Node[K, T], err error)

// Options configures a [Widget].
type Options[K comparable, T any] struct {
	// Data is either a hierarchical root (Root) or, with IsFlatData,
	// a list of records (Records).
	Root       T
	Records    []T
	IsFlatData bool

	GetID       func(T) K
	GetChildren func(T) []T
	GetParentID func(T) (K, bool)

	// DisplayText is the node body text. It is required.
	DisplayText func(T) string
	// TitleText is the optional title, drawn by the boxed variant.
	TitleText func(T) string

	Theme       string
	Orientation layout.Orientation

	WidthWithoutMargins  float64
	HeightWithoutMargins float64
	Margins              viewport.Margins

	NodeDepthMultiplier float64
	MinScale            float64
	MaxScale            float64
	Duration            time.Duration

	AllowPan           bool
	AllowZoom          bool
	AllowFocus         bool
	AllowNodeCentering bool

	LoadOnDemand tree.LoadOnDemand[T]
	NodeSettings diagram.NodeSettings

	NodeClick   ClickFunc[K, T]
	OnFrame     FrameFunc
	OnTransform viewport.ChangeFunc
	OnLoadError LoadErrorFunc[K, T]

	Logger *log.Logger
}

// DefaultOptions returns the default layout and interaction settings. Data
// and accessors still have to be supplied.
func DefaultOptions[K comparable, T any]() Options[K, T] {
	v := viewport.DefaultSettings()
	return Options[K, T]{
		Theme:                "default",
		Orientation:          v.Orientation,
		WidthWithoutMargins:  v.WidthWithoutMargins,
		HeightWithoutMargins: v.HeightWithoutMargins,
		Margins:              v.Margins,
		NodeDepthMultiplier:  300,
		MinScale:             v.MinScale,
		MaxScale:             v.MaxScale,
		Duration:             v.Duration,
		AllowPan:             true,
		AllowZoom:            true,
		AllowFocus:           true,
		AllowNodeCentering:   true,
		NodeSettings:         diagram.DefaultNodeSettings(),
	}
}

// Validate reports configuration errors: missing accessors, a
// half-configured load-on-demand and invalid geometry.
func (o Options[K, T]) Validate() error {
	if o.GetID == nil {
		return errors.Config("GetID accessor is required")
	}
	if o.DisplayText == nil {
		return errors.Config("DisplayText accessor is required")
	}
	if o.IsFlatData && o.GetParentID == nil {
		return errors.Config("flat data requires the GetParentID accessor")
	}
	if !o.IsFlatData && o.GetChildren == nil {
		return errors.Config("hierarchical data requires the GetChildren accessor")
	}
	if err := o.LoadOnDemand.Validate(); err != nil {
		return err
	}
	if err := o.NodeSettings.Validate(); err != nil {
		return err
	}
	if o.NodeDepthMultiplier <= 0 {
		return errors.Config("node depth multiplier must be positive")
	}
	return o.viewportSettings().Validate()
}

func (o Options[K, T]) viewportSettings() viewport.Settings {
	return viewport.Settings{
		WidthWithoutMargins:  o.WidthWithoutMargins,
		HeightWithoutMargins: o.HeightWithoutMargins,
		Margins:              o.Margins,
		Orientation:          o.Orientation,
		MinScale:             o.MinScale,
		MaxScale:             o.MaxScale,
		AllowPan:             o.AllowPan,
		AllowZoom:            o.AllowZoom,
		Duration:             o.Duration,
	}
}

func (o Options[K, T]) accessors() tree.Accessors[K, T] {
	return tree.Accessors[K, T]{ID: o.GetID, Children: o.GetChildren, ParentID: o.GetParentID}
}
