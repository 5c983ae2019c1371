package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow    = time.Second
	msgTooManyRequests = "Demasiadas solicitudes, intenta de nuevo en un momento"
)

// RateLimit enforces a fixed one-second window of max requests per client IP.
// Redis failures let the request through.
func RateLimit(rdb *redis.Client, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" || max <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := time.Now().Unix()
		key := fmt.Sprintf("negocios:rate_limit:%s:%d", ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > int64(max) {
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, msgTooManyRequests)
			return
		}

		c.Next()
	}
}
