// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the tracker daemon.
type Config struct {
	Port                  string
	DatabaseURL           string
	RedisURL              string
	SyncBaseURL           string // application backend, e.g. "http://localhost:8000"
	ResyncIntervalMinutes int    // how often the sync sweep fires
	ResyncJitterSeconds   int    // random delay inside each sweep tick
	PlatformRulesPath     string // optional YAML overriding the built-in board rules
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("TRACKER_PORT")
	if port == "" {
		port = "8082"
	}

	syncBase := os.Getenv("SYNC_BASE_URL")
	if syncBase == "" {
		syncBase = "http://localhost:8000"
	}

	interval := 30
	if s := os.Getenv("RESYNC_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RESYNC_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	jitter := 30
	if s := os.Getenv("RESYNC_JITTER_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("RESYNC_JITTER_SECONDS must be a non-negative integer, got %q", s)
		}
		jitter = v
	}

	return &Config{
		Port:                  port,
		DatabaseURL:           dbURL,
		RedisURL:              redisURL,
		SyncBaseURL:           syncBase,
		ResyncIntervalMinutes: interval,
		ResyncJitterSeconds:   jitter,
		PlatformRulesPath:     os.Getenv("PLATFORM_RULES_PATH"),
	}, nil
}
