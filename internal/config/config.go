// Package config reads the server's settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds all server configuration
type Config struct {
	Port     int
	LogLevel slog.Level
	// LogJSON selects JSON log output; text otherwise
	LogJSON bool

	StorageType string
	RedisURL    string
	SQLitePath  string

	LLM LLMConfig

	AuthLatency time.Duration
	BcryptCost  int

	// GameIdleTTL is how long an untouched game stays in memory
	GameIdleTTL time.Duration

	// EmbedAllowedOrigins lists host patterns allowed to open the embedding websocket
	EmbedAllowedOrigins []string
	StaticDir           string
}

// LLMConfig selects the hosted model
type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Model returns the llm package configuration
func (c LLMConfig) Model() llm.Config {
	return llm.Config{
		Provider: c.Provider,
		APIKey:   c.APIKey,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	defaults := llm.DefaultConfig()
	provider := strings.ToLower(getEnv("LLM_PROVIDER", defaults.Provider))

	model := getEnv("LLM_MODEL", "")
	if model == "" && provider == defaults.Provider {
		model = defaults.Model
	}

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    parseLevel(getEnv("LOG_LEVEL", "info")),
		LogJSON:     getEnvBool("LOG_JSON", true),
		StorageType: strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		RedisURL:    getEnv("REDIS_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/chefgenie.db"),
		LLM: LLMConfig{
			Provider: provider,
			APIKey:   apiKey(provider),
			Model:    model,
			BaseURL:  getEnv("LLM_BASE_URL", ""),
			Timeout:  getEnvDuration("LLM_TIMEOUT", defaults.Timeout),
		},
		AuthLatency:         getEnvDuration("AUTH_LATENCY", 0),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),
		GameIdleTTL:         getEnvDuration("GAME_IDLE_TTL", 30*time.Minute),
		EmbedAllowedOrigins: splitList(getEnv("EMBED_ALLOWED_ORIGIN", "")),
		StaticDir:           getEnv("STATIC_DIR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required when STORAGE_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory, redis or sqlite")
	}
	switch c.LLM.Provider {
	case llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("LLM_PROVIDER must be gemini or openai")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY cannot be empty")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	if c.AuthLatency < 0 {
		return fmt.Errorf("AUTH_LATENCY cannot be negative")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.GameIdleTTL <= 0 {
		return fmt.Errorf("GAME_IDLE_TTL must be > 0")
	}
	return nil
}

// apiKey prefers LLM_API_KEY, then the generic and provider-specific names
func apiKey(provider string) string {
	keys := []string{"LLM_API_KEY", "API_KEY"}
	switch provider {
	case llm.ProviderOpenAI:
		keys = append(keys, "OPENAI_API_KEY")
	default:
		keys = append(keys, "GEMINI_API_KEY")
	}
	for _, k := range keys {
		if v := strings.TrimSpace(getEnv(k, "")); v != "" {
			return v
		}
	}
	return ""
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// lookupEnv treats an empty variable as unset
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func getEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// getEnvDuration accepts Go durations ("1.5s") or bare milliseconds ("1500")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
