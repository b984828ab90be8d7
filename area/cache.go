package area

import (
	"github.com/bluele/gcache"

	"github.com/go-ffs/ffs/wire"
)

// HeaderCache memoizes Detect results, keyed by an arbitrary
// caller-chosen string (a device path, typically). It exists for
// callers that re-probe the same set of areas repeatedly outside the
// restore hot path itself, rather than for restore.Mount, which only
// ever detects each area once per run and has no reuse to exploit.
// Nothing else in this module (neither restore nor the ffsrestore
// CLI) uses it.
//
// Adapted from the teacher's ibtree/hugger package, which caches
// decoded node data the same way (gcache.New(size).ARC().Build())
// rather than re-parsing from storage on every lookup.
type HeaderCache struct {
	cache gcache.Cache
}

// NewHeaderCache returns a cache holding at most size entries, evicted
// by the ARC replacement policy.
func NewHeaderCache(size int) *HeaderCache {
	return &HeaderCache{cache: gcache.New(size).ARC().Build()}
}

// Detect returns the cached header for key if present, otherwise
// calls Detect(desc), caches a successful result, and returns it.
// Errors are never cached, since a transient Flash error on one call
// shouldn't poison later, possibly-successful calls.
func (c *HeaderCache) Detect(key string, desc Desc) (wire.AreaHeader, error) {
	if v, err := c.cache.Get(key); err == nil {
		return v.(wire.AreaHeader), nil
	}
	h, err := Detect(desc)
	if err != nil {
		return h, err
	}
	c.cache.Set(key, h)
	return h, nil
}
