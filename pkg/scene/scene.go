// Package scene is a retained, keyed display list for tree diagrams.
//
// A [Scene] holds two layers of [Element] values, links below nodes, each
// addressed by a stable key. Updates are computed with [Join], which splits
// incoming keys into entering, updating and exiting sets against what the
// scene currently holds, and recorded as [Transition] values that sinks can
// animate.
package scene

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Point is a screen position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// String formats p as "x,y" with compact numbers.
func (p Point) String() string { return Num(p.X) + "," + Num(p.Y) }

// Num formats a coordinate with at most two decimals.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// Kind distinguishes element layers.
type Kind string

const (
	KindNode Kind = "node"
	KindLink Kind = "link"
)

// Shape is one drawing primitive inside a node element, positioned relative
// to the node's origin. Tag is an SVG element name.
type Shape struct {
	Tag   string            `json:"tag"`
	Class string            `json:"class,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Text  string            `json:"text,omitempty"`
}

// Attr returns a shape attribute or "".
func (s Shape) Attr(name string) string { return s.Attrs[name] }

// Element is a keyed visual item.
type Element struct {
	Key     string
	Kind    Kind
	Classes []string

	// Pos is the node origin. Unused for links.
	Pos Point
	// Path is the link's SVG path data. Unused for nodes.
	Path string

	Shapes  []Shape
	Opacity float64
	Title   string
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool { return slices.Contains(e.Classes, c) }

// SetClass adds or removes class c.
func (e *Element) SetClass(c string, on bool) {
	i := slices.Index(e.Classes, c)
	switch {
	case on && i < 0:
		e.Classes = append(e.Classes, c)
	case !on && i >= 0:
		e.Classes = slices.Delete(e.Classes, i, i+1)
	}
}

// ClassAttr returns the classes joined for an SVG class attribute.
func (e *Element) ClassAttr() string {
	return strings.Join(append([]string{string(e.Kind)}, e.Classes...), " ")
}

type layer struct {
	order []string
	byKey map[string]*Element
}

func newLayer() layer { return layer{byKey: make(map[string]*Element)} }

func (l *layer) put(e *Element) {
	if _, ok := l.byKey[e.Key]; !ok {
		l.order = append(l.order, e.Key)
	}
	l.byKey[e.Key] = e
}

func (l *layer) remove(key string) {
	if _, ok := l.byKey[key]; !ok {
		return
	}
	delete(l.byKey, key)
	l.order = slices.DeleteFunc(l.order, func(k string) bool { return k == key })
}

func (l *layer) list() []*Element {
	out := make([]*Element, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.byKey[k])
	}
	return out
}

// Scene is the retained display list. The zero value is not usable; use
// [New].
type Scene struct {
	nodes layer
	links layer
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{nodes: newLayer(), links: newLayer()}
}

func (s *Scene) layer(k Kind) *layer {
	if k == KindLink {
		return &s.links
	}
	return &s.nodes
}

// Get returns the element with the given kind and key.
func (s *Scene) Get(k Kind, key string) (*Element, bool) {
	e, ok := s.layer(k).byKey[key]
	return e, ok
}

// Put inserts or replaces e. New keys are appended to the draw order.
func (s *Scene) Put(e *Element) { s.layer(e.Kind).put(e) }

// Remove deletes the element with the given kind and key.
func (s *Scene) Remove(k Kind, key string) { s.layer(k).remove(key) }

// Nodes returns node elements in draw order.
func (s *Scene) Nodes() []*Element { return s.nodes.list() }

// Links returns link elements in draw order.
func (s *Scene) Links() []*Element { return s.links.list() }

// Keys returns the sorted keys of one layer.
func (s *Scene) Keys(k Kind) []string {
	keys := slices.Clone(s.layer(k).order)
	sort.Strings(keys)
	return keys
}

// Bounds returns the bounding box of all node origins.
func (s *Scene) Bounds() (minP, maxP Point, ok bool) {
	for i, e := range s.Nodes() {
		if i == 0 {
			minP, maxP, ok = e.Pos, e.Pos, true
			continue
		}
		minP.X, minP.Y = min(minP.X, e.Pos.X), min(minP.Y, e.Pos.Y)
		maxP.X, maxP.Y = max(maxP.X, e.Pos.X), max(maxP.Y, e.Pos.Y)
	}
	return minP, maxP, ok
}
