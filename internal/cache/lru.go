package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default bounds applied to every region.
const (
	DefaultTTL      = 15 * time.Minute
	DefaultCapacity = 10_000
)

// LRURegion is an in-process region bounded by capacity (least recently used
// entries go first) and by a TTL measured from write time.
type LRURegion struct {
	name string
	lru  *expirable.LRU[string, []byte]
}

// NewLRURegion builds an in-process region. Non-positive bounds fall back to
// the defaults.
func NewLRURegion(name string, capacity int, ttl time.Duration) *LRURegion {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRURegion{name: name, lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (r *LRURegion) Name() string { return r.name }

func (r *LRURegion) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := r.lru.Get(key)
	return v, ok, nil
}

func (r *LRURegion) Put(_ context.Context, key string, val []byte) error {
	r.lru.Add(key, val)
	return nil
}

func (r *LRURegion) Evict(_ context.Context, key string) error {
	r.lru.Remove(key)
	return nil
}

func (r *LRURegion) EvictAll(context.Context) error {
	r.lru.Purge()
	return nil
}

// Len returns the number of live entries.
func (r *LRURegion) Len() int { return r.lru.Len() }
