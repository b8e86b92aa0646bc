package render

import (
	"github.com/matzehuels/arbor/pkg/scene"
)

// LinkHorizontal draws a cubic Bézier from s to t with horizontal tangents
// at both ends.
func LinkHorizontal(s, t scene.Point) string {
	mx := (s.X + t.X) / 2
	return "M" + s.String() +
		"C" + scene.Num(mx) + "," + scene.Num(s.Y) +
		" " + scene.Num(mx) + "," + scene.Num(t.Y) +
		" " + t.String()
}

// LinkVertical draws a cubic Bézier from s to t with vertical tangents at
// both ends.
func LinkVertical(s, t scene.Point) string {
	my := (s.Y + t.Y) / 2
	return "M" + s.String() +
		"C" + scene.Num(s.X) + "," + scene.Num(my) +
		" " + scene.Num(t.X) + "," + scene.Num(my) +
		" " + t.String()
}
