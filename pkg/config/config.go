// Package config loads arbor settings from a YAML file and ARBOR_*
// environment variables.
//
// Nested keys use a double underscore in the environment:
// ARBOR_WIDGET__ORIENTATION=ttb sets widget.orientation, and
// ARBOR_CACHE__REDIS__ADDR sets cache.redis.addr.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render/boxed"
	"github.com/matzehuels/arbor/pkg/render/circle"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/viewport"
	"github.com/matzehuels/arbor/pkg/widget"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "ARBOR_"

// Node strategies.
const (
	StrategyBoxed  = "boxed"
	StrategyCircle = "circle"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full arbor configuration.
type Config struct {
	Widget WidgetConfig       `koanf:"widget" yaml:"widget"`
	Boxed  boxed.Settings     `koanf:"boxed" yaml:"boxed"`
	Server ServerConfig       `koanf:"server" yaml:"server"`
	Cache  CacheConfig        `koanf:"cache" yaml:"cache"`
	Mongo  source.MongoConfig `koanf:"mongo" yaml:"mongo"`
}

// WidgetConfig mirrors the widget options that can be configured
// statically.
type WidgetConfig struct {
	Strategy        string               `koanf:"strategy" yaml:"strategy"`
	Theme           string               `koanf:"theme" yaml:"theme"`
	Orientation     string               `koanf:"orientation" yaml:"orientation"`
	Width           float64              `koanf:"width" yaml:"width"`
	Height          float64              `koanf:"height" yaml:"height"`
	Margins         viewport.Margins     `koanf:"margins" yaml:"margins"`
	DepthMultiplier float64              `koanf:"depth_multiplier" yaml:"depth_multiplier"`
	MinScale        float64              `koanf:"min_scale" yaml:"min_scale"`
	MaxScale        float64              `koanf:"max_scale" yaml:"max_scale"`
	Duration        time.Duration        `koanf:"duration" yaml:"duration"`
	AllowPan        bool                 `koanf:"allow_pan" yaml:"allow_pan"`
	AllowZoom       bool                 `koanf:"allow_zoom" yaml:"allow_zoom"`
	AllowFocus      bool                 `koanf:"allow_focus" yaml:"allow_focus"`
	AllowCentering  bool                 `koanf:"allow_node_centering" yaml:"allow_node_centering"`
	Nodes           diagram.NodeSettings `koanf:"nodes" yaml:"nodes"`
}

// ServerConfig configures `arbor serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr"`
	AllowAllOrigins bool          `koanf:"allow_all_origins" yaml:"allow_all_origins"`
	SessionTTL      time.Duration `koanf:"session_ttl" yaml:"session_ttl"`
	RequestTimeout  time.Duration `koanf:"request_timeout" yaml:"request_timeout"`
}

// CacheConfig selects the cache backend for lazily loaded children.
type CacheConfig struct {
	Backend string            `koanf:"backend" yaml:"backend"`
	Dir     string            `koanf:"dir" yaml:"dir"`
	TTL     time.Duration     `koanf:"ttl" yaml:"ttl"`
	Redis   cache.RedisConfig `koanf:"redis" yaml:"redis"`
}

// Default returns the built-in configuration.
func Default() *Config {
	o := widget.DefaultOptions[string, *source.Record]()
	return &Config{
		Widget: WidgetConfig{
			Strategy:        StrategyBoxed,
			Theme:           o.Theme,
			Orientation:     string(o.Orientation),
			Width:           o.WidthWithoutMargins,
			Height:          o.HeightWithoutMargins,
			Margins:         o.Margins,
			DepthMultiplier: o.NodeDepthMultiplier,
			MinScale:        o.MinScale,
			MaxScale:        o.MaxScale,
			Duration:        o.Duration,
			AllowPan:        o.AllowPan,
			AllowZoom:       o.AllowZoom,
			AllowFocus:      o.AllowFocus,
			AllowCentering:  o.AllowNodeCentering,
			Nodes:           o.NodeSettings,
		},
		Boxed: boxed.DefaultSettings(),
		Server: ServerConfig{
			Addr:           ":8080",
			SessionTTL:     30 * time.Minute,
			RequestTimeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     cache.ChildrenTTL,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "arbor", "config.yaml")
	}
	return "arbor.yaml"
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfig, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ARBOR_CACHE__REDIS__ADDR to cache.redis.addr.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	switch c.Widget.Strategy {
	case StrategyBoxed, StrategyCircle:
	default:
		return errors.Config("invalid strategy %q: must be boxed or circle", c.Widget.Strategy)
	}
	if _, err := layout.ParseOrientation(c.Widget.Orientation); err != nil {
		return err
	}
	if err := c.Widget.Nodes.Validate(); err != nil {
		return err
	}
	if err := c.Boxed.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.Config("cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.Config("invalid cache backend %q: must be none, file or redis", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 || c.Server.SessionTTL < 0 {
		return errors.Config("ttl must not be negative")
	}
	_, err := WidgetOptions[string, *source.Record](c.Widget)
	return err
}

// Strategy returns the configured node strategy.
func (c *Config) Strategy() diagram.Strategy {
	if c.Widget.Strategy == StrategyCircle {
		return circle.New()
	}
	return boxed.New(c.Boxed)
}

// WidgetOptions converts the static settings into widget options. Data,
// accessors and callbacks are left for the caller.
func WidgetOptions[K comparable, T any](w WidgetConfig) (widget.Options[K, T], error) {
	o := widget.DefaultOptions[K, T]()
	orientation, err := layout.ParseOrientation(w.Orientation)
	if err != nil {
		return o, err
	}
	o.Theme = w.Theme
	o.Orientation = orientation
	o.WidthWithoutMargins = w.Width
	o.HeightWithoutMargins = w.Height
	o.Margins = w.Margins
	o.NodeDepthMultiplier = w.DepthMultiplier
	o.MinScale = w.MinScale
	o.MaxScale = w.MaxScale
	o.Duration = w.Duration
	o.AllowPan = w.AllowPan
	o.AllowZoom = w.AllowZoom
	o.AllowFocus = w.AllowFocus
	o.AllowNodeCentering = w.AllowCentering
	o.NodeSettings = w.Nodes

	check := o
	check.GetID = func(T) K { var k K; return k }
	check.GetChildren = func(T) []T { return nil }
	check.DisplayText = func(T) string { return "" }
	if err := check.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// OpenCache builds the configured cache backend, instrumented with the
// registered cache hooks.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	var (
		inner cache.Cache
		err   error
	)
	switch c.Cache.Backend {
	case CacheRedis:
		inner, err = cache.NewRedisCache(ctx, c.Cache.Redis)
	case CacheFile:
		inner, err = cache.NewFileCache(c.Cache.Dir)
	default:
		inner = cache.NewNullCache()
	}
	if err != nil {
		return nil, err
	}
	return cache.Instrument(inner), nil
}
