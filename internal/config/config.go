// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads recipe-console and recipectl settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Backend
	APIBaseURL string        `env:"RECIPE_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	APITimeout time.Duration `env:"RECIPE_API_TIMEOUT" envDefault:"0s"` // 0 = no client timeout
	RateLimit  float64       `env:"RECIPE_API_RATE_LIMIT" envDefault:"0"` // requests per second, 0 = unlimited
	RateBurst  int           `env:"RECIPE_API_RATE_BURST" envDefault:"10"`

	// Console server
	ServerHost    string `env:"RECIPE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"RECIPE_SERVER_PORT" envDefault:"8081"`
	Env           string `env:"RECIPE_ENV" envDefault:"development"`
	LogLevel      string `env:"RECIPE_LOG_LEVEL" envDefault:"info"`
	SessionSecret string `env:"RECIPE_SESSION_SECRET"`
	SessionDB     string `env:"RECIPE_SESSION_DB"` // SQLite path for persistent sessions, empty = in-memory
	DevLogin      bool   `env:"RECIPE_DEV_LOGIN" envDefault:"false"`

	// Query cache
	RedisURL       string        `env:"RECIPE_REDIS_URL"` // Optional Redis URL for a shared query cache
	CachePrefix    string        `env:"RECIPE_CACHE_PREFIX" envDefault:"recipe:"`
	CacheStaleTime time.Duration `env:"RECIPE_CACHE_STALE_TIME" envDefault:"30s"`
	CacheTTL       time.Duration `env:"RECIPE_CACHE_TTL" envDefault:"5m"`
	CacheMaxSize   int           `env:"RECIPE_CACHE_MAX_SIZE" envDefault:"10000"`
	QueryRetries   int           `env:"RECIPE_QUERY_RETRIES" envDefault:"3"`

	// Chat polling
	PollInterval   time.Duration `env:"RECIPE_POLL_INTERVAL" envDefault:"3s"`
	PollMaxBackoff time.Duration `env:"RECIPE_POLL_MAX_BACKOFF" envDefault:"30s"`

	// CLI credential file
	TokenFile string `env:"RECIPE_TOKEN_FILE"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseSessionDB returns true if sessions should persist in SQLite.
func (c Config) UseSessionDB() bool {
	return c.SessionDB != ""
}

// CredentialsPath returns the CLI credential file, defaulting to
// $XDG_CONFIG_HOME/recipectl/credentials.json.
func (c Config) CredentialsPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recipectl", "credentials.json")
}

// SlogLevel maps LogLevel to a slog level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// LoadClient parses environment variables for the CLI. No session secret is needed.
func LoadClient() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses environment variables for the console server and validates the
// session secret.
func Load() (*Config, error) {
	cfg, err := LoadClient()
	if err != nil {
		return nil, err
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("RECIPE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("RECIPE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("RECIPE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("RECIPE_API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")

	if c.APITimeout < 0 {
		return errors.New("RECIPE_API_TIMEOUT must not be negative")
	}
	if c.PollInterval <= 0 {
		return errors.New("RECIPE_POLL_INTERVAL must be positive")
	}
	if c.PollMaxBackoff < c.PollInterval {
		return errors.New("RECIPE_POLL_MAX_BACKOFF must not be shorter than RECIPE_POLL_INTERVAL")
	}
	if c.CacheStaleTime < 0 || c.CacheTTL <= 0 {
		return errors.New("RECIPE_CACHE_STALE_TIME must not be negative and RECIPE_CACHE_TTL must be positive")
	}
	if c.QueryRetries < 0 {
		return errors.New("RECIPE_QUERY_RETRIES must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("RECIPE_API_RATE_LIMIT must not be negative")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
