package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/apierror"
	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter provides token-bucket rate limiting per client key
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientInfo
	perMinute int
	burst     int
	idleTTL   time.Duration
	name      string // identifier for logging
	stop      chan struct{}
	stopOnce  sync.Once
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter that refills perMinute tokens per
// minute up to burst, and starts a goroutine evicting idle clients until
// Stop is called.
func NewRateLimiter(perMinute, burst int, name string) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}

	rl := &RateLimiter{
		clients:   make(map[string]*clientInfo),
		perMinute: perMinute,
		burst:     burst,
		idleTTL:   2 * time.Minute,
		name:      name,
		stop:      make(chan struct{}),
	}

	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("per_minute", perMinute),
		logger.Int("burst", burst),
	)

	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup removes idle clients periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			cleaned, remaining := rl.evictIdle(now)
			if cleaned > 0 {
				logger.Default().Debug("rate limiter cleanup completed",
					logger.String("name", rl.name),
					logger.Int("cleaned", cleaned),
					logger.Int("remaining", remaining),
				)
			}
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) (cleaned, remaining int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, info := range rl.clients {
		if now.Sub(info.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
			cleaned++
		}
	}
	return cleaned, len(rl.clients)
}

// reserve takes a token for key at now. When none is available it returns
// false and how long until one will be.
func (rl *RateLimiter) reserve(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	info, exists := rl.clients[key]
	if !exists {
		info = &clientInfo{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60), rl.burst),
		}
		rl.clients[key] = info
	}
	info.lastSeen = now
	limiter := info.limiter
	rl.mu.Unlock()

	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware limits requests by client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(rl.perMinute)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, wait := rl.reserve(ip, time.Now())
		c.Header("X-RateLimit-Limit", limit)
		if allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}

		logger.FromContext(c.Request.Context()).Warn("rate limit exceeded",
			logger.String("limiter", rl.name),
			logger.String("client_ip", ip),
			logger.Int("per_minute", rl.perMinute),
			logger.Int("retry_after", retryAfter),
		)

		c.Header("X-RateLimit-Remaining", "0")
		apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), retryAfter))
	}
}
