// Package config reads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects which store implementation the CLI talks to.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRemote Backend = "remote"
	BackendMemory Backend = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Store
	Backend Backend
	DBPath  string

	// Remote backend
	SupabaseURL     string
	SupabaseAnonKey string
	HTTPTimeout     time.Duration
}

// Load reads configuration from environment variables. A .env file in
// the working directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Backend:         Backend(getEnv("COTERIE_BACKEND", string(BackendSQLite))),
		DBPath:          getEnv("COTERIE_DB", ""),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		HTTPTimeout:     getEnvDuration("COTERIE_HTTP_TIMEOUT", 30*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRemote:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the remote backend")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
