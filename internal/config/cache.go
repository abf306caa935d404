package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache placed in front of
// the public browse endpoints.  Only requests whose method is listed in
// Methods and whose path starts with one of PathPrefixes are cached.
// Listings change when owners edit hotels, so the TTL stays short.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    PathPrefixes []string
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        PathPrefixes: splitList(getenv("CACHE_PATH_PREFIXES", "/v1/hotels,/v1/rooms,/v1/amenities")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "path_query"),
        Prefix:       getenv("CACHE_PREFIX", "hb:cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

// Cacheable reports whether a request with the given method and path may be
// served from the cache.
func (c CacheConfig) Cacheable(method, path string) bool {
    if !c.Methods[strings.ToUpper(method)] {
        return false
    }
    if len(c.PathPrefixes) == 0 {
        return true
    }
    for _, p := range c.PathPrefixes {
        if strings.HasPrefix(path, p) {
            return true
        }
    }
    return false
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range splitList(s) {
        m[strings.ToUpper(p)] = true
    }
    return m
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

// Helper functions reused from redis.go and ratelimit.go
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
