package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/widget"
)

type (
	recordWidget = widget.Widget[string, *source.Record]
	recordNode   = tree.Node[string, *source.Record]
)

// widgetOpts override the configured widget settings per invocation.
type widgetOpts struct {
	strategy    string
	orientation string
	theme       string
}

func (o *widgetOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.strategy, "strategy", "", "node strategy: boxed, circle (default from config)")
	cmd.Flags().StringVar(&o.orientation, "orientation", "", "leftToRight, rightToLeft, topToBottom or bottomToTop (default from config)")
	cmd.Flags().StringVar(&o.theme, "theme", "", "color theme: default, dark (default from config)")

	completeFlag(cmd, "strategy", config.StrategyBoxed, config.StrategyCircle)
	completeFlag(cmd, "orientation",
		string(layout.LeftToRight), string(layout.RightToLeft), string(layout.TopToBottom), string(layout.BottomToTop))
	completeFlag(cmd, "theme", sink.ThemeDefault, sink.ThemeDark)
}

// apply copies the overrides into cfg and revalidates it.
func (o *widgetOpts) apply(cfg *config.Config) error {
	if o.strategy != "" {
		cfg.Widget.Strategy = o.strategy
	}
	if o.orientation != "" {
		cfg.Widget.Orientation = o.orientation
	}
	if o.theme != "" {
		cfg.Widget.Theme = o.theme
	}
	return cfg.Validate()
}

// newWidget builds a widget over ds. lazy may be the zero value for
// fully materialized data.
func (c *CLI) newWidget(cfg *config.Config, ds *source.Dataset, lazy tree.LoadOnDemand[*source.Record]) (*recordWidget, error) {
	opts, err := config.WidgetOptions[string, *source.Record](cfg.Widget)
	if err != nil {
		return nil, err
	}
	opts = source.Options(opts, ds)
	opts.LoadOnDemand = lazy
	opts.Logger = c.Logger
	return widget.New(opts, cfg.Strategy())
}

// visibleDepthFirst lists the visible nodes in display order.
func visibleDepthFirst(root *recordNode) []*recordNode {
	var out []*recordNode
	var walk func(n *recordNode)
	walk = func(n *recordNode) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
