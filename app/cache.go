package app

import (
	"bitwise74/shop-api/internal"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const generationKey = "catalog:generation"

// generation versions the cached catalog. Every cache key embeds the current
// value so bumping it drops all entries at once
type generation interface {
	current(ctx context.Context) (int64, error)
	bump(ctx context.Context) error
}

type localGeneration struct {
	n atomic.Int64
}

func (g *localGeneration) current(context.Context) (int64, error) { return g.n.Load(), nil }

func (g *localGeneration) bump(context.Context) error {
	g.n.Add(1)
	return nil
}

// redisGeneration shares the value between every instance using the same redis
type redisGeneration struct {
	rdb *redis.Client
}

func (g *redisGeneration) current(ctx context.Context) (int64, error) {
	n, err := g.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (g *redisGeneration) bump(ctx context.Context) error {
	return g.rdb.Incr(ctx, generationKey).Err()
}

// catalogCache caches public catalog reads for cache.ttl. Entries live in
// redis when redis.addr is set, in memory otherwise. A zero TTL disables it.
//
// The second handler goes in front of every catalog write and invalidates the
// cache once the write succeeded
func catalogCache(d *internal.Deps) (read, write gin.HandlerFunc, closer func()) {
	ttl := d.Config.Cache.TTL
	if ttl <= 0 {
		noop := func(c *gin.Context) { c.Next() }
		return noop, noop, func() {}
	}

	var (
		store persist.CacheStore
		gen   generation
	)

	closer = func() {}

	if d.Config.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     d.Config.Redis.Addr,
			Password: d.Config.Redis.Password,
			DB:       d.Config.Redis.DB,
		})

		zap.L().Debug("Caching catalog reads in redis", zap.Duration("ttl", ttl))
		store, gen = persist.NewRedisStore(rdb), &redisGeneration{rdb: rdb}
		closer = func() { rdb.Close() }
	} else {
		store, gen = persist.NewMemoryStore(ttl), &localGeneration{}
	}

	return cachedReads(store, gen, ttl), invalidateOnWrite(gen), closer
}

func cachedReads(store persist.CacheStore, gen generation, ttl time.Duration) gin.HandlerFunc {
	return cache.Cache(store, ttl, cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
		n, err := gen.current(c.Request.Context())
		if err != nil {
			zap.L().Warn("Failed to read catalog cache generation", zap.Error(err))
			return false, cache.Strategy{}
		}

		return true, cache.Strategy{CacheKey: fmt.Sprintf("catalog:%d:%s", n, c.Request.RequestURI)}
	}))
}

func invalidateOnWrite(gen generation) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if s := c.Writer.Status(); s < 200 || s >= 300 {
			return
		}

		if err := gen.bump(c.Request.Context()); err != nil {
			zap.L().Error("Failed to invalidate catalog cache", zap.Error(err))
		}
	}
}
