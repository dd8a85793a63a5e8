// Package config loads application configuration from environment variables.
// All variables use the UTNT_ prefix. A .env file in the working directory
// is read first when present; variables already set in the environment win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/utntracker/internal/plan"
)

// Profile sources for the stats server.
const (
	SourceFiles    = "files"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	DBPath   string
	Plan     string
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Profiles ProfilesConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection settings for shared profiles.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables caching.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// ProfilesConfig selects where the stats server reads profiles from.
type ProfilesConfig struct {
	Source string // "files" or "postgres"
	Dir    string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with UTNT_ prefix.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath: envStr("UTNT_DB", ""),
		Plan:   envStr("UTNT_PLAN", "k23"),
		Server: ServerConfig{
			Port: envInt("UTNT_SERVER_PORT", 8080),
			Host: envStr("UTNT_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("UTNT_DATABASE_URL", ""),
			MaxConns: envInt("UTNT_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("UTNT_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("UTNT_CACHE_URL", ""),
			TTL: envDuration("UTNT_CACHE_TTL", 60*time.Second),
		},
		Profiles: ProfilesConfig{
			Source: strings.ToLower(envStr("UTNT_PROFILE_SOURCE", SourceFiles)),
			Dir:    envStr("UTNT_PROFILES_DIR", "./profiles"),
		},
		Log: LogConfig{
			Level:  envStr("UTNT_LOG_LEVEL", "info"),
			Format: envStr("UTNT_LOG_FORMAT", ""),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !plan.IsBuiltin(c.Plan) {
		if _, err := os.Stat(c.Plan); err != nil {
			return fmt.Errorf("UTNT_PLAN: %q is neither a built-in plan (%s) nor a readable file",
				c.Plan, strings.Join(plan.Names(), ", "))
		}
	}

	switch c.Profiles.Source {
	case SourceFiles:
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("UTNT_DATABASE_URL is required when UTNT_PROFILE_SOURCE is postgres")
		}
	default:
		return fmt.Errorf("UTNT_PROFILE_SOURCE must be 'files' or 'postgres', got %q", c.Profiles.Source)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("UTNT_SERVER_PORT out of range: %d", c.Server.Port)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("UTNT_DATABASE_MIN_CONNS (%d) exceeds UTNT_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}

// loadDotEnv reads path into the environment if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
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
