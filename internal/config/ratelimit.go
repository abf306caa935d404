package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig configures the Redis limiter.  Traffic is split into
// lanes (browse, booking, auth, staff); each lane has its own bucket that
// refills continuously, reaching full capacity over one Window.
type RateLimitConfig struct {
    Enabled     bool
    Window      time.Duration // time for an empty bucket to refill
    Browse      int           // public catalogue reads
    Booking     int           // booking creation, cancellation, reviews
    Auth        int           // sign-in, sign-up, token refresh
    Staff       int           // owner and admin dashboards
    Prefix      string
    ExemptPaths []string
    Debug       bool
}

// Lane names.
const (
    LaneBrowse  = "browse"
    LaneBooking = "booking"
    LaneAuth    = "auth"
    LaneStaff   = "staff"
)

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Window:      envDur("RATE_LIMIT_WINDOW", time.Minute),
        Browse:      envInt("RATE_LIMIT_BROWSE", 120),
        Booking:     envInt("RATE_LIMIT_BOOKING", 20),
        Auth:        envInt("RATE_LIMIT_AUTH", 10),
        Staff:       envInt("RATE_LIMIT_STAFF", 60),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "hb:rl"),
        ExemptPaths: splitList(envStr("RATE_LIMIT_EXEMPT_PATHS", "/healthz,/readyz")),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Window < time.Second {
        cfg.Window = time.Second
    }
    for _, n := range []*int{&cfg.Browse, &cfg.Booking, &cfg.Auth, &cfg.Staff} {
        if *n < 1 {
            *n = 1
        }
    }
    // sign-in attempts never get a bigger bucket than browsing
    if cfg.Auth > cfg.Browse {
        cfg.Auth = cfg.Browse
    }
    return cfg
}

// Exempt reports whether path bypasses the limiter.
func (c RateLimitConfig) Exempt(path string) bool {
    for _, p := range c.ExemptPaths {
        if path == p {
            return true
        }
    }
    return false
}

// Capacity returns the bucket size of a lane.  Unknown lanes use Browse.
func (c RateLimitConfig) Capacity(lane string) int {
    switch lane {
    case LaneBooking:
        return c.Booking
    case LaneAuth:
        return c.Auth
    case LaneStaff:
        return c.Staff
    }
    return c.Browse
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
