// Package nodelink renders the visible part of a tree as a static
// node-link diagram.
//
// # Overview
//
// Where the interactive strategies animate a tree between frames, this
// package produces a one-shot Graphviz drawing of whatever is currently
// expanded. It is used by the render command and the server's dot
// endpoint.
//
// # Usage
//
//	dot := nodelink.WidgetDOT(w, false)
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] works on a bare [tree.Node] when no widget is around; the caller
// supplies the label function.
//
// # Styling
//
// Collapsed nodes that hide children are filled grey, the selected node
// gets a heavy outline and nodes with a load in flight are dashed. The
// rank direction follows the widget orientation.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
//
// [tree.Node]: github.com/matzehuels/arbor/pkg/tree#Node
package nodelink
