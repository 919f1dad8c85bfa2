package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-diet-backend/internal/cache"
	"github.com/tbourn/go-diet-backend/internal/config"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// openStore connects the document store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Client, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		return store.OpenSQL(store.DriverSQLite, cfg.DBPath)
	case config.StorePostgres:
		return store.OpenSQL(store.DriverPostgres, cfg.DatabaseURL)
	case config.StoreFirestore:
		return store.NewFirestoreClient(ctx, cfg.ProjectID)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// buildCache assembles the diet cache regions for CACHE_BACKEND. A nil cache
// (backend "off") makes every read go to the store.
func buildCache(ctx context.Context, cfg config.CacheConfig) (*cache.Cache, func() error, error) {
	noop := func() error { return nil }
	logger := log.With().Str("component", "cache").Logger()

	switch cfg.Backend {
	case config.CacheOff:
		return nil, noop, nil
	case config.CacheMemory:
		return cache.New(&logger,
			cache.NewLRURegion(cache.RegionDiets, cfg.Capacity, cfg.TTL),
			cache.NewLRURegion(cache.RegionDietLists, cfg.Capacity, cfg.TTL),
		), noop, nil
	case config.CacheRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return cache.New(&logger,
			cache.NewRedisRegion(rdb, cfg.RedisPrefix, cache.RegionDiets, cfg.TTL),
			cache.NewRedisRegion(rdb, cfg.RedisPrefix, cache.RegionDietLists, cfg.TTL),
		), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
