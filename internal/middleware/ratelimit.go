package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/startin-app/startin/internal/cache"
	"github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window,
// counting through the shared cache store so limits hold across replicas
// when Redis backs the store.
func RateLimit(store cache.Store, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + "|" + c.FullPath()
		count, ttl, err := store.IncrementWithTTL(c.Request.Context(), key, window)
		if err != nil {
			// A broken limiter never blocks traffic.
			c.Next()
			return
		}

		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		resetIn := int(math.Ceil(ttl.Seconds()))

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetIn))

		if count > int64(maxRequests) {
			response.Error(c, errors.NewRateLimited("Too many requests, slow down", resetIn))
			c.Abort()
			return
		}

		c.Next()
	}
}
