package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go-inventory-backend/auth"
	"go-inventory-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	users map[string]*models.User
	err   error
}

func (f fakeResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidToken
}

func authRouter(resolver TokenResolver) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	return r
}

func TestAuth(t *testing.T) {
	resolver := fakeResolver{users: map[string]*models.User{
		"good": {ID: 1, Email: "alice@example.com"},
	}}
	router := authRouter(resolver)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, w.Body.String())
			} else {
				assert.JSONEq(t, `{"email":"alice@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestAuthStoreFailure(t *testing.T) {
	router := authRouter(fakeResolver{err: errors.New("db down")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/users/token", RateLimit(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users/token", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, tooManyRequests, w.Body.String())
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// Another client has its own budget.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/users/token", nil)
	req.RemoteAddr = "198.51.100.1:4000"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := gin.New()
	r.POST("/users", RedisRateLimit(client, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/users", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// Needs a Redis server; set REDIS_ADDR to run it.
func TestRedisRateLimitCounterExpires(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	key := fmt.Sprintf("rate_limit:test:%d", time.Now().UnixNano())
	defer client.Del(ctx, key)

	// Every hit leaves a TTL on the counter, including the first
	for want := int64(1); want <= 3; want++ {
		count, err := hit(ctx, client, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)

		ttl, err := client.TTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	}

	// Once the counter is gone the count starts over
	require.NoError(t, client.Del(ctx, key).Err())
	count, err := hit(ctx, client, key, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
