package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus hooks that log every widget
//     interaction, load and cache lookup and every failed request
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Arbor explores hierarchical data as interactive trees",
		Long:          `Arbor renders hierarchical data as collapsible node-link trees. Trees can be rendered to static files, explored in the terminal or served to the browser, with children loaded on demand from directories or MongoDB.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
				observability.SetWidgetHooks(widgetLogHooks{c.Logger})
				observability.SetCacheHooks(cacheLogHooks{c.Logger})
				observability.SetHTTPHooks(httpLogHooks{c.Logger})
			}
			c.SetLogLevel(level)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is the per-user arbor/config.yaml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
