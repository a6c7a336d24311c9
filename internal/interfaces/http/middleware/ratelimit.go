package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter tracks request counts per key over a fixed window. Buckets
// refill all at once when their window elapses rather than continuously.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

type bucket struct {
	remaining   int
	windowStart time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window and
// starts a janitor goroutine that evicts idle buckets.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Stop terminates the janitor. The limiter itself keeps working; idle
// buckets are simply no longer evicted.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// janitor drops buckets that have sat untouched for two full windows.
func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(2 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.windowStart) > 2*rl.window {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// take consumes one slot from the key's bucket. It reports whether the
// request fits the window and how many slots remain afterwards.
func (rl *RateLimiter) take(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		rl.buckets[key] = &bucket{remaining: rl.limit - 1, windowStart: now}
		return true, rl.limit - 1
	}
	if b.remaining > 0 {
		b.remaining--
		return true, b.remaining
	}
	return false, 0
}

// Allow reports whether a request under the given key fits the current
// window, consuming one slot when it does.
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _ := rl.take(key)
	return allowed
}

// Remaining returns how many requests the key has left without consuming
// one.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || time.Since(b.windowStart) >= rl.window {
		return rl.limit
	}
	return b.remaining
}

// RateLimit limits requests per client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey limits requests grouped by a caller-chosen key, for
// example an API key or an account identifier. Allowed responses carry the
// quota in X-RateLimit headers.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := limiter.take(keyFunc(c))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
