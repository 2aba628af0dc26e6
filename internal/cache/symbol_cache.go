// Package cache keeps SymbolSpec lookups off the config-loading path so the
// command-dispatch hot path never touches viper/config storage.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/aowss/orderbook/internal/config"
)

// SymbolCache caches SymbolSpec entries by name.
type SymbolCache struct {
	inner *gocache.Cache
}

// New builds a SymbolCache whose entries expire after ttl and are swept on
// the given cleanup interval (gocache convention: a ttl of 0 or less means
// entries never expire, and cleanup <= 0 disables the background janitor).
func New(ttl, cleanup time.Duration) *SymbolCache {
	return &SymbolCache{inner: gocache.New(ttl, cleanup)}
}

// Put stores a SymbolSpec under its own name.
func (c *SymbolCache) Put(spec config.SymbolSpec) {
	c.inner.SetDefault(spec.Name, spec)
}

// Get returns the cached SymbolSpec for name, if present and unexpired.
func (c *SymbolCache) Get(name string) (config.SymbolSpec, bool) {
	v, ok := c.inner.Get(name)
	if !ok {
		return config.SymbolSpec{}, false
	}
	return v.(config.SymbolSpec), true
}

// Warm loads every entry of specs into the cache, e.g. right after config
// load so the first command for any symbol already hits a warm cache.
func (c *SymbolCache) Warm(specs []config.SymbolSpec) {
	for _, s := range specs {
		c.Put(s)
	}
}
