// Package config builds application configuration from the environment so
// main stays lean. Database settings live with the database package; this
// covers the HTTP server and registry behavior knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures server-level configuration.
type Config struct {
	HTTPAddr string

	// TimeZone pins the civil-day boundary used by the active registry.
	// It is deliberately a fixed reference zone, never the host's local
	// zone, so "today" means the same thing on every deployment.
	TimeZone string
	Location *time.Location

	// StoreTimeout bounds each store round-trip.
	StoreTimeout time.Duration

	// SuggestDebounce is the quiet period before a suggestion lookup fires.
	SuggestDebounce time.Duration
}

// Load reads configuration from the environment, honoring a .env file if
// one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		TimeZone:        getEnv("TIMEZONE", "America/Sao_Paulo"),
		StoreTimeout:    durationEnv("STORE_TIMEOUT_MS", 5000),
		SuggestDebounce: durationEnv("SUGGEST_DEBOUNCE_MS", 350),
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return c, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	c.Location = loc
	return c, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallbackMS int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallbackMS) * time.Millisecond
}
