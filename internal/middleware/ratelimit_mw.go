package middleware

import (
	"net/http"
	"sync"

	"cab_booking/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client IP
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	cfg      config.RateLimitConfig
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// RateLimitMiddleware rejects clients exceeding cfg.RPS with 429.
// A non-positive RPS disables limiting.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := &rateLimiter{cfg: cfg}
	return func(c *gin.Context) {
		if !l.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"errors": []gin.H{{"message": "rate limit exceeded"}},
			})
			return
		}
		c.Next()
	}
}
