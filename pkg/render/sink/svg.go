package sink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// fitPadding surrounds the node origins when the view box is derived from
// the scene.
const fitPadding = 150.0

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme     string
	dims      *viewport.Dimensions
	transform viewport.Transform
	frame     *diagram.Frame
	keys      bool
}

// WithTheme selects the stylesheet.
func WithTheme(theme string) SVGOption { return func(r *svgRenderer) { r.theme = theme } }

// WithViewport draws inside the widget's canvas geometry with its current
// pan/zoom transform. Without it the view box is fitted to the scene.
func WithViewport(d viewport.Dimensions, t viewport.Transform) SVGOption {
	return func(r *svgRenderer) { r.dims, r.transform = &d, t }
}

// WithAnimation replays the frame's enter and update transitions.
func WithAnimation(f diagram.Frame) SVGOption { return func(r *svgRenderer) { r.frame = &f } }

// WithKeys adds a data-key attribute to every node, for clients that map
// clicks back to nodes.
func WithKeys() SVGOption { return func(r *svgRenderer) { r.keys = true } }

// RenderSVG writes the scene as a standalone SVG document.
func RenderSVG(sc *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{theme: ThemeDefault, transform: viewport.Identity}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	viewBox, view := r.geometry(sc)
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="arbor theme-%s" viewBox="%s">`+"\n",
		render.EscapeXML(r.theme), viewBox)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", ThemeCSS(r.theme))
	fmt.Fprintf(&buf, `  <g class="view" transform="translate(%s)">`+"\n", view)
	fmt.Fprintf(&buf, `  <g class="zoom" transform="%s">`+"\n", r.transform)

	transitions := r.transitions()
	buf.WriteString("  <g class=\"links\">\n")
	for _, el := range sc.Links() {
		r.writeLink(&buf, el, transitions[key{scene.KindLink, el.Key}])
	}
	buf.WriteString("  </g>\n  <g class=\"nodes\">\n")
	for _, el := range sc.Nodes() {
		r.writeNode(&buf, el, transitions[key{scene.KindNode, el.Key}])
	}
	buf.WriteString("  </g>\n  </g>\n  </g>\n</svg>\n")
	return buf.Bytes()
}

type key struct {
	kind scene.Kind
	key  string
}

func (r *svgRenderer) transitions() map[key]scene.Transition {
	if r.frame == nil {
		return nil
	}
	out := make(map[key]scene.Transition, len(r.frame.Transitions))
	for _, t := range r.frame.Transitions {
		if t.Phase != scene.PhaseExit {
			out[key{t.Kind, t.Key}] = t
		}
	}
	return out
}

func (r *svgRenderer) geometry(sc *scene.Scene) (viewBox string, view scene.Point) {
	if r.dims != nil {
		return r.dims.ViewBox, r.dims.View
	}
	lo, hi, ok := sc.Bounds()
	if !ok {
		return "0 0 100 100", scene.Point{}
	}
	w := hi.X - lo.X + 2*fitPadding
	h := hi.Y - lo.Y + 2*fitPadding
	view = scene.Point{X: fitPadding - lo.X, Y: fitPadding - lo.Y}
	return fmt.Sprintf("0 0 %s %s", scene.Num(w), scene.Num(h)), view
}

func (r *svgRenderer) writeLink(buf *bytes.Buffer, el *scene.Element, t scene.Transition) {
	fmt.Fprintf(buf, `    <path class="%s" d="%s"`, el.ClassAttr(), el.Path)
	if r.frame == nil || t.FromPath == "" || t.FromPath == t.ToPath {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">\n")
	fmt.Fprintf(buf, `      <animate attributeName="d" from="%s" to="%s" dur="%dms" fill="freeze"/>`+"\n",
		t.FromPath, t.ToPath, r.frame.Duration.Milliseconds())
	buf.WriteString("    </path>\n")
}

func (r *svgRenderer) writeNode(buf *bytes.Buffer, el *scene.Element, t scene.Transition) {
	fmt.Fprintf(buf, `    <g class="%s" transform="translate(%s)"`, el.ClassAttr(), el.Pos)
	if r.keys {
		fmt.Fprintf(buf, ` data-key="%s"`, render.EscapeXML(el.Key))
	}
	buf.WriteString(">\n")
	if el.Title != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", render.EscapeXML(el.Title))
	}
	for _, s := range el.Shapes {
		writeShape(buf, s)
	}
	if r.frame != nil && t.Key != "" {
		ms := r.frame.Duration.Milliseconds()
		if t.From != t.To {
			fmt.Fprintf(buf, `      <animateTransform attributeName="transform" type="translate" from="%s" to="%s" dur="%dms" fill="freeze"/>`+"\n",
				t.From, t.To, ms)
		}
		if t.FromOpacity != t.ToOpacity {
			fmt.Fprintf(buf, `      <animate attributeName="opacity" from="%s" to="%s" dur="%dms" fill="freeze"/>`+"\n",
				scene.Num(t.FromOpacity), scene.Num(t.ToOpacity), ms)
		}
	}
	buf.WriteString("    </g>\n")
}

func writeShape(buf *bytes.Buffer, s scene.Shape) {
	fmt.Fprintf(buf, "      <%s", s.Tag)
	if s.Class != "" {
		fmt.Fprintf(buf, ` class="%s"`, s.Class)
	}
	for _, name := range slices.Sorted(maps.Keys(s.Attrs)) {
		fmt.Fprintf(buf, ` %s="%s"`, name, render.EscapeXML(s.Attrs[name]))
	}
	if s.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	fmt.Fprintf(buf, ">%s</%s>\n", render.EscapeXML(s.Text), s.Tag)
}
