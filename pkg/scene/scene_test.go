package scene

import (
	"testing"
)

func TestJoin(t *testing.T) {
	s := New()
	for _, k := range []string{"a", "b", "c"} {
		s.Put(&Element{Key: k, Kind: KindNode})
	}

	j := Join(s, KindNode, []string{"b", "d", "a"}, func(k string) string { return k })

	if len(j.Enter) != 1 || j.Enter[0] != "d" {
		t.Errorf("Enter = %v, want [d]", j.Enter)
	}
	if len(j.Update) != 2 || j.Update[0] != "b" || j.Update[1] != "a" {
		t.Errorf("Update = %v, want [b a]", j.Update)
	}
	if len(j.Exit) != 1 || j.Exit[0].Key != "c" {
		t.Errorf("Exit = %v, want [c]", j.Exit)
	}
}

func TestJoinLayersAreIndependent(t *testing.T) {
	s := New()
	s.Put(&Element{Key: "a", Kind: KindNode})

	j := Join(s, KindLink, []string{"a"}, func(k string) string { return k })
	if len(j.Enter) != 1 {
		t.Errorf("Enter = %v, want [a]", j.Enter)
	}
}

func TestSceneOrderAndRemove(t *testing.T) {
	s := New()
	s.Put(&Element{Key: "b", Kind: KindNode})
	s.Put(&Element{Key: "a", Kind: KindNode})
	s.Put(&Element{Key: "b", Kind: KindNode, Title: "replaced"})

	nodes := s.Nodes()
	if len(nodes) != 2 || nodes[0].Key != "b" || nodes[1].Key != "a" {
		t.Fatalf("Nodes() order = %v, want [b a]", nodes)
	}
	if nodes[0].Title != "replaced" {
		t.Errorf("Title = %q, want replaced", nodes[0].Title)
	}

	s.Remove(KindNode, "b")
	if _, ok := s.Get(KindNode, "b"); ok {
		t.Error("Get(b) after Remove ok = true")
	}
	if keys := s.Keys(KindNode); len(keys) != 1 || keys[0] != "a" {
		t.Errorf("Keys() = %v, want [a]", keys)
	}
}

func TestClasses(t *testing.T) {
	e := &Element{Kind: KindNode}
	e.SetClass("expanded", true)
	e.SetClass("selected", true)
	e.SetClass("expanded", true)
	e.SetClass("selected", false)

	if got := e.ClassAttr(); got != "node expanded" {
		t.Errorf("ClassAttr() = %q, want %q", got, "node expanded")
	}
	if !e.HasClass("expanded") || e.HasClass("selected") {
		t.Errorf("classes = %v", e.Classes)
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		1.5:     "1.5",
		-0.0001: "0",
		100:     "100",
		2.346:   "2.35",
	}
	for in, want := range tests {
		if got := Num(in); got != want {
			t.Errorf("Num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBounds(t *testing.T) {
	s := New()
	if _, _, ok := s.Bounds(); ok {
		t.Error("Bounds() on empty scene ok = true")
	}
	s.Put(&Element{Key: "a", Kind: KindNode, Pos: Point{-10, 5}})
	s.Put(&Element{Key: "b", Kind: KindNode, Pos: Point{20, -3}})
	lo, hi, _ := s.Bounds()
	if lo != (Point{-10, -3}) || hi != (Point{20, 5}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
}
