package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/render/boxed"
	"github.com/matzehuels/arbor/pkg/render/circle"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/widget"
)

type node struct {
	id, label string
	kids      []*node
}

func newWidget(t *testing.T, s diagram.Strategy) *widget.Widget[string, *node] {
	t.Helper()
	o := widget.DefaultOptions[string, *node]()
	o.Root = &node{id: "r", label: "Root & <co>", kids: []*node{
		{id: "a", label: "A", kids: []*node{{id: "a1", label: "A1"}}},
		{id: "b", label: "B"},
	}}
	o.GetID = func(n *node) string { return n.id }
	o.GetChildren = func(n *node) []*node { return n.kids }
	o.DisplayText = func(n *node) string { return n.label }
	w, err := widget.New(o, s)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Initialize(); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestRenderSVG(t *testing.T) {
	w := newWidget(t, circle.New())
	out := string(RenderSVG(w.Scene(), WithKeys(), WithTheme(ThemeDark)))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" class="arbor theme-dark"`,
		`class="node expanded"`,
		`class="node collapsed"`,
		`class="node childless"`,
		`data-key="a"`,
		`Root &amp; &lt;co&gt;`,
		`<path class="link"`,
		`.node.collapsed circle { fill: #8ab4f8; }`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(out, "<animate") {
		t.Error("static SVG should not animate")
	}
	if got, want := strings.Count(out, `<g class="node`), 3; got != want {
		t.Errorf("node groups = %d, want %d", got, want)
	}
}

func TestRenderSVGViewport(t *testing.T) {
	w := newWidget(t, circle.New())
	out := string(RenderSVG(w.Scene(), WithViewport(w.Viewport().Dimensions(), w.Viewport().Transform())))
	if !strings.Contains(out, `viewBox="0 0 960 800"`) {
		t.Error("SVG should use the widget view box")
	}
	if !strings.Contains(out, `transform="`+w.Viewport().Transform().String()+`"`) {
		t.Error("SVG should carry the current transform")
	}
}

func TestRenderSVGAnimation(t *testing.T) {
	w := newWidget(t, boxed.New(boxed.DefaultSettings()))
	a, _ := w.Node("a")
	if err := w.Toggle(a); err != nil {
		t.Fatal(err)
	}
	out := string(RenderSVG(w.Scene(), WithAnimation(w.LastFrame())))

	if !strings.Contains(out, `<animateTransform attributeName="transform" type="translate"`) {
		t.Error("entering node should be animated")
	}
	if !strings.Contains(out, `<animate attributeName="opacity" from="0" to="1"`) {
		t.Error("entering node should fade in")
	}
	if !strings.Contains(out, `class="body-box"`) {
		t.Error("boxed nodes should draw a body box")
	}
}

func TestRenderSVGEmptyScene(t *testing.T) {
	out := string(RenderSVG(scene.New()))
	if !strings.Contains(out, `viewBox="0 0 100 100"`) {
		t.Errorf("empty scene view box: %s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	w := newWidget(t, circle.New())
	data, err := RenderJSON(w.Scene(), w.LastFrame(), w.Viewport().Transform())
	if err != nil {
		t.Fatal(err)
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageFrame {
		t.Errorf("Type = %q, want %q", m.Type, MessageFrame)
	}
	if len(m.Nodes) != 3 || len(m.Links) != 2 {
		t.Errorf("got %d nodes and %d links, want 3 and 2", len(m.Nodes), len(m.Links))
	}
	if m.Anchor != "r" || m.Transform == nil || m.Transform.K != 1 {
		t.Errorf("unexpected message header: %+v", m)
	}
	if !strings.Contains(string(data), `"phase": "enter"`) {
		t.Error("transitions should be included")
	}
}

func TestThemeFallback(t *testing.T) {
	if ThemeCSS("nope") != ThemeCSS(ThemeDefault) {
		t.Error("unknown theme should fall back to default")
	}
}
