// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/log"
)

// ParseString reads a string from an environment variable or returns the
// default value. The source (environment or default) is logged at debug level.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		lowerKey := strings.ToLower(key)
		switch {
		case strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "_key") || strings.Contains(lowerKey, "password"):
			// For sensitive vars, just log that it was set
			logger.Debug().
				Str("key", key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		case value == "":
			logger.Debug().
				Str("key", key).
				Str("default", defaultValue).
				Str("source", "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		default:
			logger.Debug().
				Str("key", key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		}
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("default", defaultValue).
		Str("source", "default").
		Msg("using default value")
	return defaultValue
}

// ParseBool reads a boolean from an environment variable or returns the
// default value. Invalid values fall back to the default.
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Bool("default", defaultValue).
			Msg("invalid boolean value, using default")
		return defaultValue
	}
	return parsed
}

// ParseInt reads an integer from an environment variable or returns the
// default value. Invalid values fall back to the default.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Int("default", defaultValue).
			Msg("invalid integer value, using default")
		return defaultValue
	}
	return parsed
}

// ParseDuration reads a time.Duration from an environment variable or returns
// the default value. Accepts Go duration syntax ("6h", "5m", "90s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Dur("default", defaultValue).
			Msg("invalid duration value, using default")
		return defaultValue
	}
	return parsed
}

// ParseList reads a delimited list from an environment variable. Empty
// elements are dropped and surrounding whitespace is trimmed.
func ParseList(key, sep string) []string {
	raw := ParseString(key, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
