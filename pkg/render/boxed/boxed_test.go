package boxed

import (
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/scene"
)

func TestFootprint(t *testing.T) {
	s := New(DefaultSettings())
	tests := []struct {
		o            layout.Orientation
		breadth, dep float64
	}{
		{layout.LeftToRight, 75, 200},
		{layout.RightToLeft, 75, 200},
		{layout.TopToBottom, 200, 75},
		{layout.BottomToTop, 200, 75},
	}
	for _, tt := range tests {
		b, d := s.Footprint(tt.o)
		if b != tt.breadth || d != tt.dep {
			t.Errorf("Footprint(%s) = (%v, %v), want (%v, %v)", tt.o, b, d, tt.breadth, tt.dep)
		}
	}
}

func TestLinkUpdateAttachesToEdges(t *testing.T) {
	s := New(DefaultSettings())

	// child at depth 300, parent at depth 0, same breadth
	got := s.LinkUpdate(layout.LeftToRight, s.LinkPath(layout.LeftToRight), scene.Point{X: 10, Y: 300}, scene.Point{X: 10, Y: 0})
	if !strings.HasPrefix(got, "M300,10") || !strings.HasSuffix(got, "200,10") {
		t.Errorf("LTR path = %q, want child left edge to parent right edge", got)
	}

	got = s.LinkUpdate(layout.TopToBottom, s.LinkPath(layout.TopToBottom), scene.Point{X: 0, Y: 300}, scene.Point{X: 0, Y: 0})
	if !strings.HasPrefix(got, "M100,262.5") || !strings.HasSuffix(got, "100,37.5") {
		t.Errorf("TTB path = %q, want child top to parent bottom", got)
	}
}

func TestLinkExitIsDegenerate(t *testing.T) {
	s := New(DefaultSettings())
	got := s.LinkExit(layout.LeftToRight, s.LinkPath(layout.LeftToRight), scene.Point{X: 10, Y: 0})
	if got != "M200,10C200,10 200,10 200,10" {
		t.Errorf("LinkExit() = %q", got)
	}
}

func TestDrawWithTitleAndTruncation(t *testing.T) {
	s := New(DefaultSettings())
	el := &scene.Element{Kind: scene.KindNode}
	long := strings.Repeat("lorem ipsum dolor sit amet ", 10)
	s.NodeEnter(el, diagram.NodeView{Label: long, Title: "Engineering"})

	var rects, titles int
	for _, sh := range el.Shapes {
		switch sh.Class {
		case "body-box", "title-box":
			rects++
		case "title-text":
			titles++
			if sh.Text != "Engineering" {
				t.Errorf("title text = %q", sh.Text)
			}
		}
	}
	if rects != 2 || titles != 1 {
		t.Errorf("rects = %d, titles = %d, want 2 and 1", rects, titles)
	}
	if el.Title != long {
		t.Error("truncated body should keep full text as tooltip")
	}
}

func TestDrawWithoutTitle(t *testing.T) {
	s := New(DefaultSettings())
	el := &scene.Element{Kind: scene.KindNode}
	s.NodeEnter(el, diagram.NodeView{Label: "CEO"})
	for _, sh := range el.Shapes {
		if sh.Class == "title-box" {
			t.Fatal("title box drawn without title text")
		}
	}
	if el.Title != "" {
		t.Errorf("Title = %q, want empty", el.Title)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() = %v", err)
	}
	bad := DefaultSettings()
	bad.BodyWidth = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with zero width = nil, want error")
	}
	if got := DefaultSettings().titleWidth(); got != 100 {
		t.Errorf("titleWidth() = %v, want 100", got)
	}
}
