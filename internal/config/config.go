// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the review engine configuration loaded from environment
// variables.
type Config struct {
	DBPath         string
	User           string        // Current participant name, used for menu actions.
	DefaultDueSpan time.Duration // Due-date offset applied when a review is created without one.
}

// Load reads configuration from environment variables and returns a
// validated Config. All variables are optional:
// REVIEWKIT_DB_PATH (reviewkit.db), REVIEWKIT_USER (empty),
// REVIEWKIT_DEFAULT_DUE_SPAN (168h, i.e. one week).
func Load() (*Config, error) {
	dbPath := "reviewkit.db"
	if v, ok := os.LookupEnv("REVIEWKIT_DB_PATH"); ok {
		dbPath = v
	}

	user := os.Getenv("REVIEWKIT_USER")

	dueSpan := 7 * 24 * time.Hour
	if v, ok := os.LookupEnv("REVIEWKIT_DEFAULT_DUE_SPAN"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REVIEWKIT_DEFAULT_DUE_SPAN has invalid duration %q: %w", v, err)
		}
		dueSpan = parsed
	}

	return &Config{
		DBPath:         dbPath,
		User:           user,
		DefaultDueSpan: dueSpan,
	}, nil
}
