package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/widget"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes depth, height and expansion state in node labels.
	// When false, only the display text is shown.
	Detailed bool
	// Orientation maps onto the Graphviz rankdir. Empty means left to right.
	Orientation layout.Orientation
}

// LabelFunc returns the display text of a data item.
type LabelFunc[T any] func(T) string

// ToDOT converts the visible part of the tree under root to Graphviz DOT.
// Collapsed nodes with hidden children are filled grey, the selected node
// is drawn with a heavy outline and nodes with a load in flight are dashed.
func ToDOT[K comparable, T any](root *tree.Node[K, T], label LabelFunc[T], opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankDir(opts.Orientation))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	nodes := root.VisibleBreadthFirst()
	for _, n := range nodes {
		attrs := fmtAttrs(n, fmtLabel(n, label(n.Data), opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes[1:] {
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(n.Parent.ID), nodeID(n.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WidgetDOT converts the widget's visible tree using its display text and
// orientation.
func WidgetDOT[K comparable, T any](w *widget.Widget[K, T], detailed bool) string {
	o := w.Options()
	return ToDOT(w.Root(), LabelFunc[T](o.DisplayText), Options{Detailed: detailed, Orientation: o.Orientation})
}

func rankDir(o layout.Orientation) string {
	switch o {
	case layout.RightToLeft:
		return "RL"
	case layout.TopToBottom:
		return "TB"
	case layout.BottomToTop:
		return "BT"
	default:
		return "LR"
	}
}

func nodeID[K comparable](id K) string {
	return fmt.Sprint(id)
}

func fmtLabel[K comparable, T any](n *tree.Node[K, T], text string, detailed bool) string {
	if !detailed {
		return text
	}

	parts := []string{
		fmt.Sprintf("depth: %d", n.Depth),
		fmt.Sprintf("height: %d", n.Height),
		"state: " + state(n),
	}
	return text + "\n" + strings.Join(parts, "\n")
}

func state[K comparable, T any](n *tree.Node[K, T]) string {
	switch {
	case n.IsLoading():
		return "loading"
	case n.IsExpanded():
		return "expanded"
	case n.HasLoaded():
		return "collapsed"
	default:
		return "leaf"
	}
}

func fmtAttrs[K comparable, T any](n *tree.Node[K, T], label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsLoading():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case !n.IsExpanded() && n.HasLoaded():
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if n.Selected {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
