package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit enforces a per-client-IP sliding window limit backed by Redis
// sorted sets. Redis outages fail open: the outer surface prefers
// availability, while the permission gate behind it stays deny-by-default.
func RateLimit(client *redis.Client, limit int, window time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			allowed, err := slidingWindowAllow(r, client, "ratelimit:"+ClientIP(r), limit, window)
			if err != nil {
				logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func slidingWindowAllow(r *http.Request, client *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	ctx := r.Context()
	now := time.Now()
	windowStart := now.Add(-window).UnixMicro()
	member := strconv.FormatInt(now.UnixMicro(), 10) + "-" + uuid.NewString()

	// Trim, insert, and count in one MULTI so each request sees its own
	// entry in the total. Two callers arriving at limit-1 cannot both pass.
	pipe := client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	// Expiry keeps idle keys from accumulating.
	pipe.Expire(ctx, key, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, err
	}

	if int(countCmd.Val()) > limit {
		// Best-effort removal of the rejected entry; if it sticks around
		// it ages out of the window on its own.
		_ = client.ZRem(ctx, key, member).Err()
		return false, nil
	}
	return true, nil
}
