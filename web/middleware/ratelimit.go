package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bazaarpanel/bazaar/logger"
	"github.com/bazaarpanel/bazaar/util/metrics"
	redisutil "github.com/bazaarpanel/bazaar/util/redis"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting.
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
	SkipPaths         []string
}

// DefaultRateLimitConfig returns the default rate limit config.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		SkipPaths: []string{"/assets/", "/favicon.ico"},
	}
}

func (config RateLimitConfig) shouldSkip(path string) bool {
	for _, skipPath := range config.SkipPaths {
		if len(path) >= len(skipPath) && path[:len(skipPath)] == skipPath {
			return true
		}
	}
	return false
}

// RateLimitMiddleware limits requests per key and path using the shared redis
// counter (in-memory fallback when redis is not configured).
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		rateLimitKey := "ratelimit:" + key + ":" + c.Request.URL.Path

		countStr, err := redisutil.Get(rateLimitKey)
		var count int
		if err == nil {
			count, _ = strconv.Atoi(countStr)
		}

		if count >= config.RequestsPerMinute {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.Request.URL.Path, count)
			metrics.RateLimitHits.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		newCount, err := redisutil.Incr(rateLimitKey)
		if err != nil {
			logger.Warning("Rate limit increment failed:", err)
			c.Next()
			return
		}

		if newCount == 1 {
			redisutil.Expire(rateLimitKey, time.Minute)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.RequestsPerMinute-int(newCount)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		c.Next()
	}
}
