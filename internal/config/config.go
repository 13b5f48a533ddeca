// SPDX-License-Identifier: MIT

// Package config loads process configuration from the environment.
// Precedence is ENV > defaults; the only fatal condition is a missing
// API credential, since no catalog can ever be built without one.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete daemon configuration, loaded once at startup.
type Config struct {
	// Upstream query API
	APIKey   string
	Channels []string // channel ids in priority order

	// Cache
	DataDir       string
	CacheTTL      time.Duration
	RedisAddr     string // selects the Redis backend when non-empty
	RedisPassword string
	RedisDB       int

	// Catalog
	ManualVideos  []string // semicolon-delimited stream URLs
	PriorityRules []PriorityRule

	// Daemon
	RefreshInterval time.Duration
	ListenAddr      string
	APIToken        string
	LogLevel        string
}

// Load reads configuration from the environment. It returns an error only
// for conditions that make the daemon unable to ever do useful work.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:          ParseString("YTWALL_API_KEY", ""),
		Channels:        ParseList("YTWALL_CHANNELS", ","),
		DataDir:         ParseString("YTWALL_DATA", "/tmp"),
		CacheTTL:        ParseDuration("YTWALL_CACHE_TTL", 6*time.Hour),
		RedisAddr:       ParseString("YTWALL_REDIS_ADDR", ""),
		RedisPassword:   ParseString("YTWALL_REDIS_PASSWORD", ""),
		RedisDB:         ParseInt("YTWALL_REDIS_DB", 0),
		ManualVideos:    ParseList("YTWALL_MANUAL_VIDEOS", ";"),
		RefreshInterval: ParseDuration("YTWALL_REFRESH_INTERVAL", 5*time.Minute),
		ListenAddr:      ParseString("YTWALL_LISTEN", ":8080"),
		APIToken:        ParseString("YTWALL_API_TOKEN", ""),
		LogLevel:        ParseString("LOG_LEVEL", "info"),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("YTWALL_API_KEY is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("YTWALL_CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("YTWALL_REFRESH_INTERVAL must be positive, got %s", cfg.RefreshInterval)
	}

	if path := ParseString("YTWALL_PRIORITY_RULES", ""); path != "" {
		rules, err := LoadPriorityRules(path)
		if err != nil {
			return nil, fmt.Errorf("load priority rules: %w", err)
		}
		cfg.PriorityRules = rules
	}

	return cfg, nil
}
