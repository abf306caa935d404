package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-booking/internal/config"
)

// limiterScript keeps a fractional token level that refills linearly,
// capacity tokens per window.  It returns {allowed, remaining, wait_ms}.
var limiterScript = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local rate = capacity / window

	local b = redis.call('HMGET', KEYS[1], 'level', 'at')
	local level = tonumber(b[1]) or capacity
	local at = tonumber(b[2]) or now
	level = math.min(capacity, level + math.max(0, now - at) * rate)

	local allowed, wait = 0, 0
	if level >= 1 then
		allowed = 1
		level = level - 1
	else
		wait = math.ceil((1 - level) / rate)
	end

	redis.call('HSET', KEYS[1], 'level', tostring(level), 'at', now)
	redis.call('PEXPIRE', KEYS[1], window)
	return { allowed, math.floor(level), wait }
`)

// NewTokenBucket throttles callers per lane: sign-in and booking writes
// get small buckets, catalogue reads a large one.  Redis failures let
// the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if cfg.Exempt(req.URL.Path) {
				return next(c)
			}
			lane := laneFor(req.Method, req.URL.Path)
			capacity := cfg.Capacity(lane)
			key := buildRateKey(cfg, c, lane)

			vals, err := limiterScript.Run(req.Context(), rdb, []string{key},
				time.Now().UnixMilli(), capacity, cfg.Window.Milliseconds()).Result()
			if err != nil {
				log.Warn("rate limit script failed", "key", key, "error", err)
				return next(c)
			}
			arr, ok := vals.([]any)
			if !ok || len(arr) != 3 {
				log.Warn("rate limit unexpected result", "key", key, "result", fmt.Sprintf("%#v", vals))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Lane", lane)
			h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(asInt64(arr[1]), 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if asInt64(arr[0]) == 1 {
				return next(c)
			}

			secs := retryAfterSeconds(asInt64(arr[2]))
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Info("rate limited", "lane", lane, "key", key, "retry_after", secs)
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     lane + " rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// laneFor classifies a request by what it does to the platform.
func laneFor(method, path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/auth/"):
		return config.LaneAuth
	case strings.HasPrefix(path, "/v1/owner/"), strings.HasPrefix(path, "/v1/admin/"):
		return config.LaneStaff
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return config.LaneBrowse
	}
	switch {
	case path == "/v1/bookings", path == "/v1/reviews",
		strings.HasPrefix(path, "/v1/bookings/") && strings.HasSuffix(path, "/cancel"):
		return config.LaneBooking
	}
	return config.LaneBrowse
}

func retryAfterSeconds(ms int64) int {
	secs := int(math.Ceil(float64(ms) / 1000.0))
	if secs < 0 {
		return 0
	}
	return secs
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey scopes a bucket to a lane and a caller.  Signed-in callers
// are keyed by user id, guests by client IP.  The auth lane is always per
// IP so that guessing passwords for many accounts shares one bucket.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context, lane string) string {
	subject := "u:" + userID(c)
	if lane == config.LaneAuth || subject == "u:anon" {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		subject = "ip:" + ip
	}
	return cfg.Prefix + ":" + lane + ":" + subject
}
