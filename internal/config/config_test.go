package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "LOG_JSON", "STORAGE_TYPE", "REDIS_URL", "SQLITE_PATH",
		"LLM_PROVIDER", "LLM_API_KEY", "API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT", "AUTH_LATENCY", "BCRYPT_COST",
		"EMBED_ALLOWED_ORIGIN", "STATIC_DIR", "GAME_IDLE_TTL",
	} {
		t.Setenv(k, "")
	}
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"GEMINI_API_KEY": "key-1"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "key-1", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 30*time.Minute, cfg.GameIdleTTL)
	assert.Empty(t, cfg.EmbedAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"PORT":                 "9090",
		"LOG_LEVEL":            "debug",
		"LOG_JSON":             "false",
		"STORAGE_TYPE":         "SQLite",
		"SQLITE_PATH":          "/tmp/genie.db",
		"LLM_PROVIDER":         "openai",
		"LLM_API_KEY":          "sk-test",
		"OPENAI_API_KEY":       "ignored",
		"LLM_MODEL":            "gpt-4o-mini",
		"LLM_TIMEOUT":          "5s",
		"AUTH_LATENCY":         "800",
		"BCRYPT_COST":          "4",
		"EMBED_ALLOWED_ORIGIN": "example.com, *.example.org",
		"GAME_IDLE_TTL":        "2h",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, "/tmp/genie.db", cfg.SQLitePath)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 800*time.Millisecond, cfg.AuthLatency)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, 2*time.Hour, cfg.GameIdleTTL)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.EmbedAllowedOrigins)
	assert.Equal(t, "openai", cfg.LLM.Model().Provider)
}

func TestLoadProviderSpecificKey(t *testing.T) {
	setEnv(t, map[string]string{
		"LLM_PROVIDER":   "openai",
		"GEMINI_API_KEY": "wrong-provider",
		"OPENAI_API_KEY": "sk-openai",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:        8080,
			StorageType: StorageMemory,
			LLM:         LLMConfig{Provider: "gemini", APIKey: "k", Timeout: time.Second},
			BcryptCost:  10,
			GameIdleTTL: time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"redis without url", func(c *Config) { c.StorageType = StorageRedis }, "REDIS_URL"},
		{"sqlite without path", func(c *Config) { c.StorageType = StorageSQLite }, "SQLITE_PATH"},
		{"unknown storage", func(c *Config) { c.StorageType = "postgres" }, "STORAGE_TYPE"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }, "LLM_PROVIDER"},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, "LLM_API_KEY"},
		{"negative latency", func(c *Config) { c.AuthLatency = -time.Second }, "AUTH_LATENCY"},
		{"bcrypt cost", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"zero game ttl", func(c *Config) { c.GameIdleTTL = 0 }, "GAME_IDLE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
