package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit of one route class
type EndpointConfig struct {
	Path   string // exact path, "/"-terminated prefix, or pattern with "*" segments
	Method string
	Limit  int           // requests per window
	Window time.Duration
	Burst  int // bucket capacity; Limit when 0
}

// LoadConfig reads the RATE_LIMIT_* environment variables
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the built-in route classes
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// PDF rendering and model calls are the expensive ones
		{Path: "/sessions/*/export", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/sessions/*/enhance", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Writes to storage
		{Path: "/sessions/*/persist", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/sessions/*/saved/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/sessions/open", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		{Path: "/sessions", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
