package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRegion stores a region in Redis so several API instances share it.
// Keys are namespaced "<prefix>:<region>:<key>". Capacity is enforced by the
// server's maxmemory policy; the TTL is set per key.
type RedisRegion struct {
	name   string
	prefix string
	ttl    time.Duration
	rdb    redis.UniversalClient
}

// NewRedisRegion builds a Redis-backed region sharing rdb.
func NewRedisRegion(rdb redis.UniversalClient, prefix, name string, ttl time.Duration) *RedisRegion {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "diet"
	}
	return &RedisRegion{name: name, prefix: prefix + ":" + name + ":", ttl: ttl, rdb: rdb}
}

func (r *RedisRegion) Name() string { return r.name }

func (r *RedisRegion) key(k string) string { return r.prefix + k }

func (r *RedisRegion) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisRegion) Put(ctx context.Context, key string, val []byte) error {
	return r.rdb.Set(ctx, r.key(key), val, r.ttl).Err()
}

func (r *RedisRegion) Evict(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

// EvictAll deletes every key of the region using SCAN so the server is never
// blocked by a KEYS call.
func (r *RedisRegion) EvictAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.prefix+"*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
