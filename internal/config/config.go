// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 3000).
	Port int

	// BaseURL is the public-facing URL of this server.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	// Empty means debug in development and info otherwise.
	LogLevel string

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Backend holds settings for the remote NeuroCare auth/data service.
	Backend BackendConfig

	// LocalStore holds settings for the per-browser key/value store.
	LocalStore LocalStoreConfig

	// Chat holds chat widget and relay settings.
	Chat ChatConfig

	// TrustedProxies lists the CIDRs whose X-Forwarded-For header is
	// believed when resolving the client IP.
	TrustedProxies []string
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// BackendConfig holds settings for the remote auth/data service.
type BackendConfig struct {
	// URL is the absolute base URL of the backend (default: "http://localhost:8080").
	URL string

	// Timeout bounds every backend request. Zero means no client timeout.
	Timeout time.Duration
}

// LocalStoreConfig holds settings for browser-scoped state.
type LocalStoreConfig struct {
	// TTL is how long a browser's keys survive without being written.
	TTL time.Duration
}

// ChatConfig holds chat widget and same-origin relay settings.
type ChatConfig struct {
	// IdleTTL is how long an untouched transcript is kept in memory.
	IdleTTL time.Duration

	// SelfURL is where the chat widget reaches this server's own relay
	// (default: "http://127.0.0.1:{PORT}"). Keeping it on loopback means
	// the fallback calls are not counted by the relay's per-IP limit.
	SelfURL string

	// ArkAPIKey, ArkModel, ArkBaseURL and ArkRegion configure the optional
	// Ark model behind POST /api/chat. The relay is disabled when the key
	// or model is missing.
	ArkAPIKey  string
	ArkModel   string
	ArkBaseURL string
	ArkRegion  string
}

// RelayEnabled reports whether the same-origin chat relay has a model to call.
func (c ChatConfig) RelayEnabled() bool {
	return c.ArkAPIKey != "" && c.ArkModel != ""
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if a URL does not parse or a production requirement is unmet.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 3000),
		BaseURL:  getEnv("BASE_URL", "http://localhost:3000"),
		LogLevel: strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", ""))),

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080"), "/"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},

		LocalStore: LocalStoreConfig{
			TTL: getEnvDuration("LOCAL_STORE_TTL", 8760*time.Hour),
		},

		Chat: ChatConfig{
			IdleTTL:    getEnvDuration("CHAT_IDLE_TTL", 30*time.Minute),
			SelfURL:    strings.TrimRight(getEnv("CHAT_SELF_URL", ""), "/"),
			ArkAPIKey:  strings.TrimSpace(getEnv("ARK_API_KEY", "")),
			ArkModel:   strings.TrimSpace(getEnv("ARK_MODEL", "")),
			ArkBaseURL: getEnv("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			ArkRegion:  getEnv("ARK_REGION", "cn-beijing"),
		},

		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{
			"127.0.0.0/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"fd00::/8",
		}),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}

	backendURL, err := url.Parse(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing BACKEND_URL: %w", err)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing BASE_URL: %w", err)
	}
	if cfg.Chat.SelfURL == "" {
		cfg.Chat.SelfURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	}
	if _, err := url.Parse(cfg.Chat.SelfURL); err != nil {
		return nil, fmt.Errorf("parsing CHAT_SELF_URL: %w", err)
	}

	// Case-insensitive check catches common variants like "Production", "prod".
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if !backendURL.IsAbs() {
			return nil, fmt.Errorf("BACKEND_URL must be an absolute URL in production")
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var or returns the default. An
// empty value yields an empty list.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
