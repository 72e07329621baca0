package middleware

import (
	"bitwise74/shop-api/pkg/util"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	// TTL is how long an idle visitor is remembered
	TTL time.Duration
}

// RateLimiter keeps one token bucket per client IP. Idle visitors expire
// from the cache on their own.
type RateLimiter struct {
	cfg      RateLimiterConfig
	visitors *ttlcache.Cache
	mu       sync.Mutex
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.TTL == 0 {
		cfg.TTL = 3 * time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = cfg.RequestsPerSecond * 2
	}

	visitors := ttlcache.NewCache()
	visitors.SetTTL(cfg.TTL)

	return &RateLimiter{cfg: cfg, visitors: visitors}
}

func (r *RateLimiter) limiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, err := r.visitors.Get(ip); err == nil {
		return v.(*rate.Limiter)
	}

	l := rate.NewLimiter(rate.Limit(r.cfg.RequestsPerSecond), r.cfg.Burst)
	if err := r.visitors.Set(ip, l); err != nil {
		zap.L().Warn("Failed to remember visitor", zap.Error(err))
	}

	return l
}

// Close stops the cache expiry goroutine
func (r *RateLimiter) Close() error {
	return r.visitors.Close()
}

// Middleware answers 429 once a client runs out of tokens. A non positive
// rate disables limiting.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.cfg.RequestsPerSecond <= 0 {
			c.Next()
			return
		}

		if !r.limiter(c.ClientIP()).Allow() {
			util.Abort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}

		c.Next()
	}
}
