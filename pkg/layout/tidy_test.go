package layout

import (
	"math"
	"testing"
)

type tnode struct {
	name     string
	children []*tnode
	x, y     float64
}

func n(name string, children ...*tnode) *tnode { return &tnode{name: name, children: children} }

func run(root *tnode, cfg Config) map[string]*tnode {
	out := map[string]*tnode{}
	Apply(root, func(t *tnode) []*tnode { return t.children },
		func(t *tnode, x, y float64) {
			t.x, t.y = x, y
			out[t.name] = t
		}, cfg)
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestApplySizeMode(t *testing.T) {
	got := run(n("root", n("a"), n("b")), Config{Mode: Size, Breadth: 100, DepthStep: 300})

	tests := []struct {
		name string
		x, y float64
	}{
		{"root", 50, 0},
		{"a", 25, 300},
		{"b", 75, 300},
	}
	for _, tt := range tests {
		if !near(got[tt.name].x, tt.x) || !near(got[tt.name].y, tt.y) {
			t.Errorf("%s = (%v, %v), want (%v, %v)", tt.name, got[tt.name].x, got[tt.name].y, tt.x, tt.y)
		}
	}
}

func TestApplySingleNodeCentered(t *testing.T) {
	got := run(n("root"), Config{Mode: Size, Breadth: 800})
	if !near(got["root"].x, 400) {
		t.Errorf("root.x = %v, want 400", got["root"].x)
	}
}

func TestApplyNodeSizeCousinSeparation(t *testing.T) {
	root := n("root",
		n("a", n("a1")),
		n("b", n("b1")),
	)
	got := run(root, Config{Mode: NodeSize, Breadth: 10, DepthStep: 1})

	want := map[string]float64{"root": 0, "a": -10, "b": 10, "a1": -10, "b1": 10}
	for name, x := range want {
		if !near(got[name].x, x) {
			t.Errorf("%s.x = %v, want %v", name, got[name].x, x)
		}
	}
	if got["b1"].y != 2 {
		t.Errorf("b1.y = %v, want 2", got["b1"].y)
	}
}

func TestApplyParentsCenteredOverChildren(t *testing.T) {
	root := n("root",
		n("a", n("a1"), n("a2"), n("a3")),
		n("b"),
		n("c", n("c1", n("c11"), n("c12"))),
	)
	got := run(root, Config{Mode: NodeSize, Breadth: 1, DepthStep: 1})

	var check func(t *tnode)
	check = func(p *tnode) {
		if len(p.children) == 0 {
			return
		}
		first, last := p.children[0], p.children[len(p.children)-1]
		if !near(p.x, (first.x+last.x)/2) {
			t.Errorf("%s.x = %v, want midpoint %v", p.name, p.x, (first.x+last.x)/2)
		}
		for i := 1; i < len(p.children); i++ {
			if p.children[i].x-p.children[i-1].x < 1-1e-9 {
				t.Errorf("%s and %s overlap", p.children[i-1].name, p.children[i].name)
			}
		}
		for _, c := range p.children {
			check(c)
		}
	}
	check(got["root"])

	// nodes on the same level never overlap
	levels := map[float64][]*tnode{}
	for _, v := range got {
		levels[v.y] = append(levels[v.y], v)
	}
	for y, row := range levels {
		for i := range row {
			for j := i + 1; j < len(row); j++ {
				if math.Abs(row[i].x-row[j].x) < 1-1e-9 {
					t.Errorf("level %v: %s and %s too close", y, row[i].name, row[j].name)
				}
			}
		}
	}
}

func TestOrientationProject(t *testing.T) {
	tests := []struct {
		o      Orientation
		sx, sy float64
	}{
		{LeftToRight, 20, 10},
		{RightToLeft, -20, 10},
		{TopToBottom, 10, 20},
		{BottomToTop, 10, -20},
	}
	for _, tt := range tests {
		sx, sy := tt.o.Project(10, 20)
		if sx != tt.sx || sy != tt.sy {
			t.Errorf("%s.Project(10, 20) = (%v, %v), want (%v, %v)", tt.o, sx, sy, tt.sx, tt.sy)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	tests := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"leftToRight", LeftToRight, false},
		{"TopToBottom", TopToBottom, false},
		{"bottom-to-top", BottomToTop, false},
		{"rtl", RightToLeft, false},
		{"", LeftToRight, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrientation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseOrientation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOrientation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSizingMode(t *testing.T) {
	if m, err := ParseSizingMode("nodeSize"); err != nil || m != NodeSize {
		t.Errorf("ParseSizingMode(nodeSize) = %v, %v", m, err)
	}
	if _, err := ParseSizingMode("fit"); err == nil {
		t.Error("ParseSizingMode(fit) error = nil, want error")
	}
}
