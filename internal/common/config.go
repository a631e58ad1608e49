// Package common provides shared utilities for Core
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/corelabs/core/internal/interfaces"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Core
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
	Snapshots   SnapshotsConfig `toml:"snapshots"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration. Driver selects the backend:
// "badger" (embedded, default) or "surrealdb" (managed).
type StorageConfig struct {
	Driver    string `toml:"driver"`
	Path      string `toml:"path"`      // badger data directory
	Address   string `toml:"address"`   // surrealdb ws/http address
	Namespace string `toml:"namespace"` // surrealdb namespace
	Database  string `toml:"database"`  // surrealdb database
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD   EODHDConfig   `toml:"eodhd"`
	FXRates FXRatesConfig `toml:"fxrates"`
	Gemini  GeminiConfig  `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FXRatesConfig holds FX rate provider configuration
type FXRatesConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FXRatesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// AuthConfig holds token verification configuration. Tokens are issued by an
// external identity provider; Core only validates them.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"`
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SnapshotsConfig holds the batch snapshot job configuration.
type SnapshotsConfig struct {
	Interval string `toml:"interval"` // duration string; "0" disables the in-process scheduler
}

// GetInterval parses and returns the snapshot job interval.
// Returns 0 (disabled) for "0" or empty; defaults to 24h on parse failure.
func (c *SnapshotsConfig) GetInterval() time.Duration {
	if c.Interval == "" || c.Interval == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver:    "badger",
			Path:      "data/core",
			Namespace: "core",
			Database:  "core",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			FXRates: FXRatesConfig{
				BaseURL: "https://open.er-api.com/v6",
				Timeout: "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Snapshots: SnapshotsConfig{
			Interval: "24h",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CORE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CORE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CORE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CORE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if driver := os.Getenv("CORE_STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = strings.ToLower(driver)
	}

	if path := os.Getenv("CORE_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if addr := os.Getenv("CORE_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if v := os.Getenv("CORE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	if v := os.Getenv("CORE_SNAPSHOT_INTERVAL"); v != "" {
		config.Snapshots.Interval = v
	}

	if v := firstEnv("EODHD_API_KEY", "CORE_EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}

	if v := firstEnv("FXRATES_API_KEY", "CORE_FXRATES_API_KEY"); v != "" {
		config.Clients.FXRates.APIKey = v
	}

	if v := firstEnv("GEMINI_API_KEY", "CORE_GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ValidateRequired returns the names of required configuration fields that are
// missing or still at insecure defaults. An empty slice means the config is
// ready for production use.
func (c *Config) ValidateRequired() []string {
	var missing []string

	if c.Clients.EODHD.APIKey == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-jwt-secret-change-in-production" {
		missing = append(missing, "auth.jwt_secret")
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "badger", "surrealdb":
	default:
		missing = append(missing, "storage.driver")
	}

	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, InternalStore, or fallback
func ResolveAPIKey(ctx context.Context, store interfaces.InternalStore, name string, fallback string) (string, error) {
	// Environment variable mapping
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":   {"EODHD_API_KEY", "CORE_EODHD_API_KEY"},
		"fxrates_api_key": {"FXRATES_API_KEY", "CORE_FXRATES_API_KEY"},
		"gemini_api_key":  {"GEMINI_API_KEY", "CORE_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try InternalStore system KV (medium priority)
	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
