package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envServer    = "CHEFGENIE_SERVER"
	envToken     = "CHEFGENIE_TOKEN"
	envTokenFile = "CHEFGENIE_TOKEN_FILE"
	envConfig    = "CHEFGENIE_CONFIG"

	defaultServer = "http://localhost:8080"
)

// Config holds CLI configuration. Each setting comes from a flag, else the
// environment, else the dotenv file at ~/.chefgenie/env, else a default.
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig resolves settings from the environment and the dotenv file
func DefaultConfig() *Config {
	file := readConfigFile()
	lookup := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := file[key]; v != "" {
			return v
		}
		return fallback
	}

	return &Config{
		ServerURL: lookup(envServer, defaultServer),
		Token:     lookup(envToken, ""),
		TokenFile: lookup(envTokenFile, filepath.Join(configDir(), "token")),
		Output:    "text",
	}
}

// LoadToken reads the token file unless a token was already given.
// A missing file just means no client yet.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken makes token current and writes it to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600)
}

func readConfigFile() map[string]string {
	path := os.Getenv(envConfig)
	if path == "" {
		path = filepath.Join(configDir(), "env")
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil
	}
	return values
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chefgenie"
	}
	return filepath.Join(home, ".chefgenie")
}
