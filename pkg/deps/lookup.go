package deps

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/dazed/pkg/cache"
	"github.com/matzehuels/dazed/pkg/observability"
)

// LookupCache memoizes checker answers for the lifetime of a scan.
//
// Identical concurrent lookups collapse into one registry call. Answers
// (found or not found) are kept; errors are not, so a later lookup retries.
// With a backend, answers also persist across runs for the given TTL.
type LookupCache struct {
	entries sync.Map // key -> PublicVersion
	flight  singleflight.Group

	backend cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
}

// NewLookupCache returns an empty cache. backend may be nil for an
// in-memory cache only.
func NewLookupCache(backend cache.Cache, ttl time.Duration) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &LookupCache{backend: backend, keyer: cache.NewDefaultKeyer(), ttl: ttl}
}

// Lookup returns checker's answer for dep, calling the checker at most once
// per (checker, name, group) unless a previous call failed. Dependencies
// with a recorded source are answered from the manifest and never cached,
// since that answer is specific to the file they came from.
func (c *LookupCache) Lookup(ctx context.Context, checker Checker, dep Dependency) (PublicVersion, error) {
	if v, ok := ShortCircuit(dep); ok {
		return v, nil
	}

	key := checker.Name() + "\x00" + dep.Key()
	if v, ok := c.entries.Load(key); ok {
		return v.(PublicVersion), nil
	}

	res, err, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v.(PublicVersion), nil
		}
		if v, ok := c.load(ctx, checker, dep); ok {
			c.entries.Store(key, v)
			return v, nil
		}
		v, err := checker.Lookup(ctx, dep)
		if err != nil {
			return PublicVersion{}, err
		}
		c.entries.Store(key, v)
		c.store(ctx, checker, dep, v)
		return v, nil
	})
	if err != nil {
		return PublicVersion{}, err
	}
	return res.(PublicVersion), nil
}

// Len returns the number of memoized answers.
func (c *LookupCache) Len() int {
	n := 0
	c.entries.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func (c *LookupCache) load(ctx context.Context, checker Checker, dep Dependency) (PublicVersion, bool) {
	if c.backend == nil {
		return PublicVersion{}, false
	}
	data, ok, err := c.backend.Get(ctx, c.keyer.LookupKey(checker.Name(), dep.Name, dep.Group))
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, "lookup")
		return PublicVersion{}, false
	}
	var v PublicVersion
	if json.Unmarshal(data, &v) != nil {
		observability.Cache().OnCacheMiss(ctx, "lookup")
		return PublicVersion{}, false
	}
	observability.Cache().OnCacheHit(ctx, "lookup")
	return v, true
}

func (c *LookupCache) store(ctx context.Context, checker Checker, dep Dependency, v PublicVersion) {
	if c.backend == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if c.backend.Set(ctx, c.keyer.LookupKey(checker.Name(), dep.Name, dep.Group), data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, "lookup", len(data))
	}
}
