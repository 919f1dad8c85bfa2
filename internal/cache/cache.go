// Package cache implements the read-through, write-invalidate cache used by
// the diet service.
//
// A Cache coordinates named Regions. Each region is an independent key/value
// space with its own TTL and capacity bounds (in-process LRU or Redis). Values
// are stored as encoded bytes, so callers never share mutable state with the
// cache.
//
// Coherence: every region carries a generation counter. EvictAll bumps it, and
// a read-through only writes its loaded value back if the generation it
// observed before loading is still current. A slow load racing with a
// mutation therefore cannot repopulate the region with pre-mutation data.
//
// Failures of the backing region are logged and counted, never returned: a
// failed read degrades to a store fetch and a failed write is dropped.
package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Region names used by the diet service.
const (
	RegionDiets     = "dietsCache"
	RegionDietLists = "dietsListCache"
)

// Region is one named key/value space.
type Region interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, val []byte) error
	Evict(ctx context.Context, key string) error
	EvictAll(ctx context.Context) error
}

type regionState struct {
	r   Region
	mu  sync.Mutex
	gen uint64
}

// Cache is the injectable coordinator over a fixed set of regions. The zero
// value is not usable; construct with New. A nil *Cache disables caching.
type Cache struct {
	regions map[string]*regionState
	log     zerolog.Logger
}

// New builds a Cache over regions. Region names must be unique.
func New(logger *zerolog.Logger, regions ...Region) *Cache {
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	c := &Cache{regions: make(map[string]*regionState, len(regions)), log: l}
	for _, r := range regions {
		c.regions[r.Name()] = &regionState{r: r}
	}
	return c
}

func (c *Cache) region(name string) *regionState {
	if c == nil {
		return nil
	}
	return c.regions[name]
}

// Get returns the raw value stored under key, or false on miss or failure.
func (c *Cache) Get(ctx context.Context, region, key string) ([]byte, bool) {
	rs := c.region(region)
	if rs == nil {
		return nil, false
	}
	b, ok, err := rs.r.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("region", region).Str("key", key).Msg("cache get failed")
		cacheRequests.WithLabelValues(region, "error").Inc()
		return nil, false
	}
	if !ok {
		cacheRequests.WithLabelValues(region, "miss").Inc()
		return nil, false
	}
	cacheRequests.WithLabelValues(region, "hit").Inc()
	return b, true
}

// Put stores val under key unconditionally.
func (c *Cache) Put(ctx context.Context, region, key string, val []byte) {
	rs := c.region(region)
	if rs == nil {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	c.put(ctx, rs, key, val)
}

// Evict removes a single key.
func (c *Cache) Evict(ctx context.Context, region, key string) {
	rs := c.region(region)
	if rs == nil {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.gen++
	if err := rs.r.Evict(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("region", region).Str("key", key).Msg("cache evict failed")
	}
	cacheEvictions.WithLabelValues(region, "key").Inc()
}

// EvictAll clears a whole region and invalidates in-flight read-throughs.
func (c *Cache) EvictAll(ctx context.Context, region string) {
	rs := c.region(region)
	if rs == nil {
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.gen++
	if err := rs.r.EvictAll(ctx); err != nil {
		c.log.Warn().Err(err).Str("region", region).Msg("cache evict-all failed")
	}
	cacheEvictions.WithLabelValues(region, "all").Inc()
}

// Generation returns the current generation of region.
func (c *Cache) Generation(region string) uint64 {
	rs := c.region(region)
	if rs == nil {
		return 0
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.gen
}

// PutIfGeneration stores val only if region is still at generation gen.
// It reports whether the value was written.
func (c *Cache) PutIfGeneration(ctx context.Context, region, key string, val []byte, gen uint64) bool {
	rs := c.region(region)
	if rs == nil {
		return false
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.gen != gen {
		cacheRequests.WithLabelValues(region, "stale_fill").Inc()
		return false
	}
	return c.put(ctx, rs, key, val)
}

func (c *Cache) put(ctx context.Context, rs *regionState, key string, val []byte) bool {
	if err := rs.r.Put(ctx, key, val); err != nil {
		c.log.Warn().Err(err).Str("region", rs.r.Name()).Str("key", key).Msg("cache put failed")
		return false
	}
	return true
}

// Fetch reads key from region, falling back to load on a miss and writing
// the loaded value back. Load errors are returned as-is and never cached.
func Fetch[T any](ctx context.Context, c *Cache, region, key string, load func(context.Context) (T, error)) (T, error) {
	if b, ok := c.Get(ctx, region, key); ok {
		var v T
		err := json.Unmarshal(b, &v)
		if err == nil {
			return v, nil
		}
		c.log.Warn().Err(err).Str("region", region).Str("key", key).Msg("cache decode failed")
		c.Evict(ctx, region, key)
	}

	gen := c.Generation(region)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		c.PutIfGeneration(ctx, region, key, b, gen)
	}
	return v, nil
}
