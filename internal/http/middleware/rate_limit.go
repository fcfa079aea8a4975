package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/festivo/festivo-api/internal/http/response"
	"github.com/festivo/festivo-api/pkg/logger"
)

// Limiter counts hits against a key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter: INCR the key, set the expiry on
// first hit, deny once the count passes the cap.
type RedisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, requests: requests, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key so mobile numbers never land in Redis verbatim.
	hashed := fmt.Sprintf("ratelimit:%x", sha256.Sum256([]byte(key)))

	count, err := l.client.Incr(ctx, hashed).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, hashed, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.requests), nil
}

// NoopLimiter allows everything. Used when Redis is disabled and in tests.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = NoopLimiter{}
)

// RateLimit applies the limiter to every key KeyFunc yields for the request.
// Limiter errors fail open: an unavailable Redis must not take auth down.
func RateLimit(limiter Limiter, keyFunc func(r *http.Request) []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, key := range keyFunc(r) {
				ok, err := limiter.Allow(r.Context(), key)
				if err != nil {
					logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
					continue
				}
				if !ok {
					response.RateLimit(w, "too many requests, try again later")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPKeyFunc rate-limits by client address.
func IPKeyFunc(prefix string) func(r *http.Request) []string {
	return func(r *http.Request) []string {
		if ip := ClientIP(r); ip != "" {
			return []string{prefix + ":ip:" + ip}
		}
		return nil
	}
}

// ClientIP resolves the caller's address, trusting forwarding headers first.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
