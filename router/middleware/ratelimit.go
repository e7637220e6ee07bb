package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
	"github.com/patrickmn/go-cache"

	"github.com/priyxstudio/pathway/internal/errdefs"
)

// RateLimiter hands every client IP its own token bucket. Buckets of clients
// that have been quiet for a while are evicted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets *cache.Cache
	rate    float64
	burst   int64
}

// NewRateLimiter returns a limiter that refills rate tokens per second up to
// burst tokens per client.
func NewRateLimiter(rate float64, burst int64) *RateLimiter {
	return &RateLimiter{
		buckets: cache.New(10*time.Minute, 15*time.Minute),
		rate:    rate,
		burst:   burst,
	}
}

func (l *RateLimiter) bucket(key string) *ratelimit.Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		// Refresh the expiration so active clients keep their bucket.
		l.buckets.SetDefault(key, v)
		return v.(*ratelimit.Bucket)
	}
	b := ratelimit.NewBucketWithRate(l.rate, l.burst)
	l.buckets.SetDefault(key, b)
	return b
}

// Handler rejects requests from clients that have exhausted their bucket with
// a 429 response.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.bucket(c.ClientIP()).TakeAvailable(1) == 0 {
			wait := time.Duration(float64(time.Second) / l.rate)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			CaptureAndAbort(c, errdefs.New(errdefs.CodeRateLimited, "too many requests, slow down"))
			return
		}
		c.Next()
	}
}
