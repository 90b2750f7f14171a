// ratelimit.go - Per client request limits for the credential endpoints

package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const tooManyRequests = `{"detail":"Too many requests"}`

// RateLimit allows limit requests per client IP and route within window,
// counted in process memory.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return wrap(httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(tooManyRequests))
		}),
	))
}

// RedisRateLimit counts requests in Redis so that several instances share one
// limit. When Redis is unreachable requests are let through.
func RedisRateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := hit(ctx, client, key, window)
		if err != nil {
			log.Println("ratelimit: redis unavailable, allowing request:", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests"})
			return
		}
		c.Next()
	}
}

// hit counts one request against key. The key is created with its expiry in
// the same transaction as the increment, so a counter never outlives window.
func hit(ctx context.Context, client redis.Cmdable, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// wrap runs a net/http middleware as gin middleware. The chain continues only
// if the wrapped middleware calls its next handler.
func wrap(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
