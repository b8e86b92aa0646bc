package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/render/nodelink"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Output formats.
const (
	formatSVG      = "svg"
	formatJSON     = "json"
	formatDOT      = "dot"
	formatNodeLink = "nodelink"
)

// formatExt maps a format to its file extension.
var formatExt = map[string]string{
	formatSVG:      ".svg",
	formatJSON:     ".json",
	formatDOT:      ".dot",
	formatNodeLink: ".nodelink.svg",
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file, "-" for stdout
	format   string // svg, json, dot or nodelink
	depth    int    // levels shown below the root, -1 for everything
	focus    string // node to focus after expanding
	animate  bool   // embed the last frame's transitions as SMIL animation
	fit      bool   // fit the view box to the drawing instead of the viewport
	detailed bool   // include depth and state in nodelink labels

	widget widgetOpts
	input  inputOpts
}

// renderCommand creates the render command for writing static snapshots.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, depth: 1}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a tree snapshot to SVG, JSON or Graphviz",
		Long: `Render builds the tree, expands it to the requested depth, optionally focuses
a node and writes one snapshot. Data files may be JSON or TOML, nested
(a root record with children) or flat (records with parent_id).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from input, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, json, dot, nodelink")
	cmd.Flags().IntVar(&opts.depth, "depth", opts.depth, "levels to expand below the root (-1 for all)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "focus the node with this id")
	cmd.Flags().BoolVar(&opts.animate, "animate", false, "animate the last transition (svg)")
	cmd.Flags().BoolVar(&opts.fit, "fit", false, "fit the view box to the tree instead of the viewport (svg)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show depth and state in labels (dot, nodelink)")
	opts.widget.register(cmd)
	opts.input.register(cmd)
	completeFlag(cmd, "format", formatSVG, formatJSON, formatDOT, formatNodeLink)

	return cmd
}

// validateFormat checks that format is one of the supported formats.
func validateFormat(format string) error {
	if _, ok := formatExt[format]; !ok {
		return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'dot' or 'nodelink')", format)
	}
	return nil
}

// outputPath derives the output path. File inputs default to a sibling of
// the input; loader inputs default to stdout.
func outputPath(output, input, format string, fromFile bool) string {
	if output != "" {
		return output
	}
	if !fromFile {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + formatExt[format]
}

func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	prog := newProgress(c.Logger)

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := opts.widget.apply(cfg); err != nil {
		return err
	}

	in, err := c.openInput(ctx, cfg, args, &opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	path := outputPath(opts.output, in.name, opts.format, !in.lazy())
	c.Logger.Infof("Rendering %s", in.name)

	scenes, key := c.sceneCache(ctx, cfg, in, opts)
	if scenes != nil {
		defer scenes.Close()
		if data, ok, err := scenes.Get(ctx, key); err == nil && ok {
			if err := writeOutput(path, data); err != nil {
				return err
			}
			report(path, in.name, 0, 0, true)
			return nil
		}
	}

	data, nodes, links, err := c.renderInput(ctx, cfg, in, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if scenes != nil {
		if err := scenes.Set(ctx, key, data, cache.SceneTTL); err != nil {
			c.Logger.Warn("scene cache write failed", "err", err)
		}
	}

	prog.done(fmt.Sprintf("Rendered %d nodes", nodes))
	report(path, in.name, nodes, links, false)
	return nil
}

// sceneCache returns the cache and key for a static render of a data file.
// Lazily loaded sources are not cached as whole renders; their children
// are cached by the loader.
func (c *CLI) sceneCache(ctx context.Context, cfg *config.Config, in *input, opts *renderOpts) (cache.Cache, string) {
	if in.lazy() || opts.input.noCache {
		return nil, ""
	}
	hash, err := cache.HashJSON(in.dataset)
	if err != nil {
		return nil, ""
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Debug("scene cache unavailable", "err", err)
		return nil, ""
	}
	key := cache.NewVersionedKeyer(buildinfo.Version).SceneKey(hash, cache.SceneKeyOpts{
		Strategy:    cfg.Widget.Strategy,
		Orientation: cfg.Widget.Orientation,
		SizingMode:  string(cfg.Widget.Nodes.SizingMode),
		Width:       cfg.Widget.Width,
		Height:      cfg.Widget.Height,
		Theme:       cfg.Widget.Theme,
		Expanded:    opts.depth < 0,
		Depth:       opts.depth,
		Focus:       opts.focus,
		Format:      fmt.Sprintf("%s/animate=%t/fit=%t/detailed=%t", opts.format, opts.animate, opts.fit, opts.detailed),
	})
	return ch, key
}

// renderInput builds the widget, applies depth and focus and encodes the
// requested format.
func (c *CLI) renderInput(ctx context.Context, cfg *config.Config, in *input, opts *renderOpts) ([]byte, int, int, error) {
	ds, err := in.start(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	var (
		lazy    tree.LoadOnDemand[*source.Record]
		loadErr error
	)
	if in.lazy() {
		lazy = source.Sync(ctx, in.loader, func(r *source.Record, err error) {
			if loadErr == nil {
				loadErr = fmt.Errorf("load children of %s: %w", r.ID, err)
			}
		})
	}

	w, err := c.newWidget(cfg, ds, lazy)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := w.Initialize(); err != nil {
		return nil, 0, 0, err
	}
	if err := expandDepth(w, opts.depth); err != nil {
		return nil, 0, 0, err
	}
	if loadErr != nil {
		return nil, 0, 0, loadErr
	}
	if opts.focus != "" {
		if err := w.FocusID(opts.focus); err != nil {
			return nil, 0, 0, err
		}
	}

	nodes, links := len(w.VisibleNodes()), len(w.Links())
	var data []byte
	switch opts.format {
	case formatJSON:
		data, err = sink.RenderJSON(w.Scene(), w.LastFrame(), w.Viewport().Transform())
	case formatDOT:
		data = []byte(nodelink.WidgetDOT(w, opts.detailed))
	case formatNodeLink:
		data, err = nodelink.RenderSVG(ctx, nodelink.WidgetDOT(w, opts.detailed))
	default:
		svgOpts := []sink.SVGOption{sink.WithTheme(w.Options().Theme), sink.WithKeys()}
		if !opts.fit {
			svgOpts = append(svgOpts, sink.WithViewport(w.Viewport().Dimensions(), w.Viewport().Transform()))
		}
		if opts.animate {
			svgOpts = append(svgOpts, sink.WithAnimation(w.LastFrame()))
		}
		data = sink.RenderSVG(w.Scene(), svgOpts...)
	}
	return data, nodes, links, err
}

// expandDepth shows every level up to depth below the root, loading
// children on demand. A negative depth expands everything.
func expandDepth(w *recordWidget, depth int) error {
	if depth < 0 && !w.Tree().LoadOnDemand().Enabled() {
		w.ExpandAll()
		return nil
	}

	queue := []*recordNode{w.Root()}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if depth >= 0 && n.Depth >= depth {
			continue
		}
		switch {
		case w.Tree().NeedsLoad(n):
			if err := w.Toggle(n); err != nil {
				return err
			}
		case !n.IsExpanded():
			w.Expand(n)
		}
		queue = append(queue, n.Children()...)
	}
	w.Update(w.Root())
	w.CenterNode(w.Root())
	return nil
}

// writeOutput writes data to path, or stdout for "-".
func writeOutput(path string, data []byte) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err := out.Write(data)
	return err
}

// report prints the render summary. Nothing is printed when the snapshot
// itself went to stdout.
func report(path, name string, nodes, links int, cached bool) {
	if path == "-" {
		return
	}
	printSuccess("Rendered %s", name)
	printStats(nodes, links, cached)
	printFile(path)
}
