// Package cache stores loaded children and rendered scenes.
//
// Hosts that fetch children from a slow backend (a database, a large
// directory tree) put a [Cache] in front of the loader so that reopening a
// node, or another viewer opening the same node, does not hit the backend
// again. The server also caches static renders of whole datasets.
//
// Three backends are provided:
//   - [NewNullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys are produced by a [Keyer] so that all components agree on their
// layout; [NewScopedKeyer] prefixes them per tenant or build.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/arbor/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. An expired
	// entry is a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// ChildrenTTL bounds how stale a cached child list may get.
	ChildrenTTL = 10 * time.Minute

	// SceneTTL is the lifetime of cached static renders.
	SceneTTL = time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// ChildrenKey identifies the children of parent in a data source.
	ChildrenKey(source, parent string) string

	// SceneKey identifies a static render of a dataset.
	SceneKey(datasetHash string, opts SceneKeyOpts) string
}

// SceneKeyOpts are the render options that change the output.
type SceneKeyOpts struct {
	Strategy    string  `json:"strategy"`
	Orientation string  `json:"orientation"`
	SizingMode  string  `json:"sizing_mode"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Theme       string  `json:"theme"`
	Expanded    bool    `json:"expanded"`
	Depth       int     `json:"depth"`
	Focus       string  `json:"focus"`
	Format      string  `json:"format"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ChildrenKey returns "children:<source>:<parent>".
func (DefaultKeyer) ChildrenKey(source, parent string) string {
	return "children:" + source + ":" + parent
}

// SceneKey returns "scene:" followed by a hash of the dataset and options.
func (DefaultKeyer) SceneKey(datasetHash string, opts SceneKeyOpts) string {
	return hashKey("scene", datasetHash, opts)
}

// Instrument reports hits, misses and writes of c to the registered
// [observability.CacheHooks]. The key type is the key's first segment.
func Instrument(c Cache) Cache {
	return &instrumented{inner: c}
}

type instrumented struct {
	inner Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *instrumented) Close() error { return c.inner.Close() }

// keyType strips any scope prefix and returns the key's kind.
func keyType(key string) string {
	for _, kind := range []string{"children:", "scene:"} {
		if strings.Contains(key, kind) {
			return strings.TrimSuffix(kind, ":")
		}
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
