package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// RateLimit limits each client IP to max requests per window. With a Redis
// client the window is shared across replicas; otherwise counting is in-process.
func RateLimit(rdb *redis.Client, max int, window time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	if rdb == nil {
		return httprate.Limit(max, window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				reject(w, http.StatusTooManyRequests, rateLimitMessage)
			}))
	}
	return redisRateLimit(rdb, max, window, log.Named("RateLimiter"))
}

// redisRateLimit is a fixed window counter: INCR per request, EXPIRE on the
// first hit of a window. Redis failures let the request through.
func redisRateLimit(rdb *redis.Client, max int, window time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			windowStart := time.Now().Truncate(window).Unix()
			key := fmt.Sprintf("ratelimit:%s:%d", clientIP(r), windowStart)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rdb.Expire(r.Context(), key, window).Err(); err != nil {
					log.Warn("Failed to set rate limit window expiry", zap.String("key", key), zap.Error(err))
				}
			}

			remaining := int64(max) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if count > int64(max) {
				reset := time.Unix(windowStart, 0).Add(window)
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())+1))
				reject(w, http.StatusTooManyRequests, rateLimitMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
