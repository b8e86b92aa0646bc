package cache

import (
	"context"
	"time"
)

// nullCache misses every read and drops every write. It backs the "none"
// backend and --no-cache.
type nullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
