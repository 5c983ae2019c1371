package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotenceHeader = "X-Idempotency-Key"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeated POST carrying the same X-Idempotency-Key while
// the first one is in flight or within 60 seconds of its success. Requests
// without the header are not deduplicated.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := resolveIdempotenceKey(c)
		if key == "" {
			c.Next()
			return
		}

		redisKey := fmt.Sprintf("negocios:idempotence:%s", key)
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "La misma solicitud solo puede enviarse una vez cada 60 segundos"
			if val == "0" {
				msg = "La misma solicitud se está procesando"
			}
			response.Conflict(c, msg)
			return
		}

		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		// The request context may already be past its deadline.
		bg := context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(bg, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(bg, redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) string {
	key := strings.TrimSpace(c.GetHeader(IdempotenceHeader))
	if key == "" {
		return ""
	}
	h := sha256.Sum256([]byte(c.Request.URL.Path + "|" + key))
	return hex.EncodeToString(h[:])
}
