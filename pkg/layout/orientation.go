package layout

import (
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Orientation is the direction in which the tree grows on screen.
type Orientation string

const (
	LeftToRight Orientation = "leftToRight"
	RightToLeft Orientation = "rightToLeft"
	TopToBottom Orientation = "topToBottom"
	BottomToTop Orientation = "bottomToTop"
)

// Orientations lists every supported orientation.
var Orientations = []Orientation{LeftToRight, RightToLeft, TopToBottom, BottomToTop}

// ParseOrientation matches s case-insensitively; dashes and underscores are
// ignored, so "left-to-right" and "LEFT_TO_RIGHT" both parse.
func ParseOrientation(s string) (Orientation, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for _, o := range Orientations {
		if strings.ToLower(string(o)) == norm {
			return o, nil
		}
	}
	switch norm {
	case "ltr", "":
		return LeftToRight, nil
	case "rtl":
		return RightToLeft, nil
	case "ttb":
		return TopToBottom, nil
	case "btt":
		return BottomToTop, nil
	}
	return "", errors.Config("unknown orientation %q", s)
}

// Valid reports whether o is one of the supported orientations.
func (o Orientation) Valid() bool {
	for _, v := range Orientations {
		if o == v {
			return true
		}
	}
	return false
}

// Horizontal reports whether depth runs along the screen x axis.
func (o Orientation) Horizontal() bool {
	return o == LeftToRight || o == RightToLeft
}

// Project maps a layout position (breadth x, depth y) to screen coordinates.
func (o Orientation) Project(x, y float64) (sx, sy float64) {
	switch o {
	case RightToLeft:
		return -y, x
	case TopToBottom:
		return x, y
	case BottomToTop:
		return x, -y
	default:
		return y, x
	}
}

// Anchor returns the fraction of the view's width and height at which a
// centered node is placed.
func (o Orientation) Anchor() (fx, fy float64) {
	switch o {
	case RightToLeft:
		return 0.75, 0.5
	case TopToBottom, BottomToTop:
		return 0.5, 0.5
	default:
		return 0.25, 0.5
	}
}
