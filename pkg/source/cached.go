package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/cache"
)

// CachedLoader serves children from a cache before asking the inner
// loader. Cache failures are logged and fall through to the backend.
type CachedLoader struct {
	inner  Loader
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCachedLoader wraps inner. A nil keyer uses the default layout; a zero
// ttl uses cache.ChildrenTTL.
func NewCachedLoader(inner Loader, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedLoader {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.ChildrenTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedLoader{inner: inner, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// Name implements Loader.
func (l *CachedLoader) Name() string { return l.inner.Name() }

// Root implements Loader. Roots are not cached.
func (l *CachedLoader) Root(ctx context.Context) (*Record, error) { return l.inner.Root(ctx) }

// Children implements Loader.
func (l *CachedLoader) Children(ctx context.Context, parent *Record) ([]*Record, error) {
	key := l.keyer.ChildrenKey(l.inner.Name(), parent.ID)
	if data, ok, err := l.cache.Get(ctx, key); err != nil {
		l.logger.Warn("children cache read failed", "key", key, "err", err)
	} else if ok {
		var kids []*Record
		if err := json.Unmarshal(data, &kids); err == nil {
			return kids, nil
		}
		l.logger.Warn("discarding corrupt children cache entry", "key", key)
	}

	kids, err := l.inner.Children(ctx, parent)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(kids); err == nil {
		if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
			l.logger.Warn("children cache write failed", "key", key, "err", err)
		}
	}
	return kids, nil
}
