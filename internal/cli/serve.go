package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/internal/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	allowAll bool

	widget widgetOpts
	input  inputOpts
}

// serveCommand creates the serve command for the browser viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve an interactive tree viewer over HTTP",
		Long: `Serve starts an HTTP server with a browser viewer. Every browser tab gets its
own session; frames are streamed over a WebSocket so that children loaded
in the background appear without a reload.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.allowAll, "allow-all-origins", false, "allow cross-origin requests from any origin")
	opts.widget.register(cmd)
	opts.input.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, args []string, opts *serveOpts) error {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := opts.widget.apply(cfg); err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.allowAll {
		cfg.Server.AllowAllOrigins = true
	}

	in, err := c.openInput(ctx, cfg, args, &opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	src := server.Source{Dataset: in.dataset, Loader: in.loader}
	srv := server.New(cfg, src, c.Logger)

	printSuccess("Serving %s", in.name)
	printKeyValue("Address", cfg.Server.Addr)
	printKeyValue("Strategy", cfg.Widget.Strategy)
	if in.lazy() {
		printKeyValue("Cache", cfg.Cache.Backend)
	}
	printNextStep("Open", "http://localhost"+listenPort(cfg.Server.Addr))

	return srv.ListenAndServe(ctx)
}

// listenPort returns the ":port" suffix of a listen address.
func listenPort(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return ":" + port
	}
	return addr
}
