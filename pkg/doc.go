// Package pkg provides the core libraries for Arbor, a collapsible tree
// diagram widget.
//
// # Overview
//
// Arbor draws hierarchical data as a node-link tree whose nodes expand and
// collapse on click, with animated transitions, focus on a selected path,
// pan and zoom, and children loaded on demand. The pkg directory is
// organized into four areas:
//
//  1. State - the tree model and its visibility rules ([tree])
//  2. Drawing - layout, the incremental diagram engine and node styles
//     ([layout], [diagram], [render/boxed], [render/circle])
//  3. Output - retained scenes and their encodings ([scene], [render/sink],
//     [render/nodelink])
//  4. Infrastructure - data sources, caching, configuration, sessions and
//     hooks ([source], [cache], [config], [session], [observability])
//
// # Architecture
//
// The typical data flow through Arbor:
//
//	Data file / directory / MongoDB
//	         ↓
//	    [source] package (records, on-demand loaders)
//	         ↓
//	    [tree] package (visible and loaded children, focus)
//	         ↓
//	    [widget] package (interactions, viewport)
//	         ↓
//	    [diagram] package (tidy layout + enter/update/exit reconciliation)
//	         ↓
//	    [scene] → SVG / JSON frames / Graphviz
//
// # Quick Start
//
// Build a widget over a nested dataset and render a snapshot:
//
//	import (
//	    "github.com/matzehuels/arbor/pkg/render/boxed"
//	    "github.com/matzehuels/arbor/pkg/render/sink"
//	    "github.com/matzehuels/arbor/pkg/source"
//	    "github.com/matzehuels/arbor/pkg/widget"
//	)
//
//	ds, _ := source.ReadFile("tree.json")
//	opts := source.Options(widget.DefaultOptions[string, *source.Record](), ds)
//
//	w, _ := widget.New(opts, boxed.New(boxed.DefaultSettings()))
//	_ = w.Initialize()
//	_ = w.FocusID("src/main.go")
//
//	svg := sink.RenderSVG(w.Scene(), sink.WithTheme(opts.Theme))
//
// # Main Packages
//
// [tree] - Generic nodes with separate visible and loaded child lists.
// Expanding shows loaded children, collapsing hides them without discarding
// state. Load-on-demand callbacks fetch children the first time a node
// opens.
//
// [diagram] - The engine that lays out visible nodes and computes enter,
// update and exit transitions anchored at the node that changed.
//
// [widget] - Click, focus, toggle and centering behavior on top of the tree,
// the engine and the [viewport].
//
// [source] - Records from JSON or TOML files, directories and MongoDB,
// adapted to synchronous or asynchronous load-on-demand.
//
// [cache] - File and Redis caches for loaded children and rendered scenes.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/tree/...       # Specific package
//	go test -run Example         # Examples only
package pkg
