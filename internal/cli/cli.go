// Package cli implements the arbor command-line interface: rendering tree
// snapshots, exploring trees in the terminal and serving them to browsers.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/config"
)

// appName names the binary in help text and completions.
const appName = "arbor"

// Log levels for main.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is the state shared by all commands: the logger and the persistent
// flags of the root command.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// configFile returns the --config path, or the per-user default.
func (c *CLI) configFile() string {
	if c.configPath == "" {
		return config.DefaultPath()
	}
	return c.configPath
}

// loadConfig reads the config file and applies ARBOR_* overrides. A missing
// file yields the defaults.
func (c *CLI) loadConfig(_ context.Context) (*config.Config, error) {
	path := c.configFile()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", path, "strategy", cfg.Widget.Strategy, "cache", cfg.Cache.Backend)
	return cfg, nil
}
