package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the token bucket.
type RateLimitConfig struct {
	Capacity       int           // bucket size and burst
	RefillInterval time.Duration // one token is added per interval
	Prefix         string        // redis key prefix
}

// tokenBucket refills the bucket stored at KEYS[1] and takes one token.
// It returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
	tokens = math.min(capacity, tokens + intervals)
	last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// NewRateLimiter returns a middleware that admits at most cfg.Capacity
// requests in a burst per caller, refilled at one per cfg.RefillInterval.
// Callers are keyed by user id when authenticated and by client IP otherwise.
// Rejected requests get 429 with a Retry-After header. When redis is
// unreachable the request is let through and the error is logged.
func NewRateLimiter(rdb redis.Scripter, cfg RateLimitConfig, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	ttl := int64((time.Duration(cfg.Capacity+1) * cfg.RefillInterval).Seconds()) + 1

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(cfg.Prefix, r)
			res, err := tokenBucket.Run(r.Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillInterval.Milliseconds(), ttl,
			).Int64Slice()
			if err != nil || len(res) != 3 {
				log.WarnContext(r.Context(), "rate limiter unavailable",
					slog.String("key", key),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryMs := res[0] == 1, res[1], res[2]
			w.Header().Set(headerRateLimitLimit, strconv.Itoa(cfg.Capacity))
			w.Header().Set(headerRateLimitRemaining, strconv.FormatInt(remaining, 10))
			if !allowed {
				secs := (retryMs + 999) / 1000
				w.Header().Set(headerRetryAfter, strconv.FormatInt(secs, 10))
				writeError(w, http.StatusTooManyRequests, "too_many_requests",
					fmt.Sprintf("rate limit exceeded, retry in %ds", secs))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(prefix string, r *http.Request) string {
	if u, ok := UserFrom(r.Context()); ok {
		return prefix + ":user:" + u.ID.String() + ":" + r.Method + " " + r.URL.Path
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return prefix + ":ip:" + host + ":" + r.Method + " " + r.URL.Path
}
