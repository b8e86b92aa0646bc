package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/source"
)

// inputOpts selects where a command reads its tree from: a data file given
// as argument, a directory (--dir) or the configured MongoDB collection
// (--mongo). The latter two load children on demand.
type inputOpts struct {
	dir        string
	mongo      bool
	hidden     bool
	maxEntries int
	noCache    bool
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dir, "dir", "", "browse a directory, loading entries on demand")
	cmd.Flags().BoolVar(&o.mongo, "mongo", false, "browse the configured MongoDB collection, loading children on demand")
	cmd.Flags().BoolVar(&o.hidden, "hidden", false, "include hidden entries (--dir)")
	cmd.Flags().IntVar(&o.maxEntries, "max-entries", 1000, "maximum entries listed per directory (--dir)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "do not cache loaded children")
}

// input is an opened tree source. Exactly one of dataset and loader is set.
type input struct {
	name    string
	dataset *source.Dataset
	loader  source.Loader
	closers []func() error
}

// lazy reports whether children are fetched on demand.
func (in *input) lazy() bool { return in.loader != nil }

// Close releases backend connections.
func (in *input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// validate checks that exactly one input was selected.
func (o *inputOpts) validate(args []string) error {
	n := len(args)
	if o.dir != "" {
		n++
	}
	if o.mongo {
		n++
	}
	switch {
	case n == 0:
		return fmt.Errorf("no input: pass a data file, --dir or --mongo")
	case n > 1:
		return fmt.Errorf("choose one input: a data file, --dir or --mongo")
	}
	return nil
}

// openInput opens the selected source. Loaders are wrapped in the
// configured children cache unless --no-cache is set.
func (c *CLI) openInput(ctx context.Context, cfg *config.Config, args []string, o *inputOpts) (*input, error) {
	if err := o.validate(args); err != nil {
		return nil, err
	}

	if len(args) == 1 {
		ds, err := source.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("dataset loaded", "file", args[0], "records", ds.Len(), "flat", ds.IsFlat())
		return &input{name: args[0], dataset: ds}, nil
	}

	in := &input{}
	var (
		l   source.Loader
		err error
	)
	if o.dir != "" {
		opts := []source.DirOption{source.WithMaxEntries(o.maxEntries)}
		if o.hidden {
			opts = append(opts, source.WithHidden())
		}
		if l, err = source.NewDirLoader(o.dir, opts...); err != nil {
			return nil, err
		}
	} else {
		spinner := newSpinnerWithContext(ctx, "Connecting to MongoDB...")
		spinner.Start()
		ml, err := source.NewMongoLoader(ctx, cfg.Mongo)
		if err != nil {
			spinner.StopWithError("MongoDB unavailable")
			return nil, err
		}
		spinner.Stop()
		in.closers = append(in.closers, func() error { return ml.Close(context.Background()) })
		l = ml
	}
	in.name = l.Name()

	if !o.noCache {
		ch, err := cfg.OpenCache(ctx)
		if err != nil {
			c.Logger.Warn("children cache unavailable", "backend", cfg.Cache.Backend, "err", err)
		} else {
			in.closers = append(in.closers, ch.Close)
			l = source.NewCachedLoader(l, ch, nil, cfg.Cache.TTL, c.Logger)
		}
	}
	in.loader = l
	return in, nil
}

// start returns the data the widget starts from: the file contents or
// the loader's root alone.
func (in *input) start(ctx context.Context) (*source.Dataset, error) {
	if in.loader == nil {
		return in.dataset, nil
	}
	return source.Lazy(ctx, in.loader)
}
