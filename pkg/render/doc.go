// Package render provides the drawing pieces shared by tree diagram
// variants and their output sinks.
//
// # Overview
//
// A tree diagram is drawn by a [diagram.Strategy]. Two strategies ship with
// arbor:
//
//   - [boxed]: nodes as a body box with an optional title tab
//   - [circle]: nodes as a small circle with a text label
//
// Both use the link path generators and text helpers in this package. The
// rendered scene is written out by [sink] (SVG, JSON frames) or, as a
// static Graphviz drawing of the visible tree, by [nodelink].
//
//	s := boxed.New(boxed.DefaultSettings())
//	w, _ := widget.New(opts, s)
//	svg := sink.RenderSVG(w.Scene(), sink.WithViewport(w.Viewport().Transform()))
//
// [diagram.Strategy]: github.com/matzehuels/arbor/pkg/diagram#Strategy
// [boxed]: github.com/matzehuels/arbor/pkg/render/boxed
// [circle]: github.com/matzehuels/arbor/pkg/render/circle
// [sink]: github.com/matzehuels/arbor/pkg/render/sink
// [nodelink]: github.com/matzehuels/arbor/pkg/render/nodelink
package render
