// Package config loads storefront settings from YAML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigPath    = "STOREFRONT_CONFIG"
	EnvAPIBaseURL    = "FAKE_STORE_API_URL"
	EnvProfile       = "STOREFRONT_PROFILE"
	EnvStorage       = "STOREFRONT_STORAGE"
	EnvRedisAddr     = "REDIS_HOST"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultProfile scopes storage when no profile is configured.
const DefaultProfile = "default"

// GlobalStateDir returns the default state directory (~/.config/storefront).
func GlobalStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "storefront")
}

// GlobalStateFile returns the default SQLite state file path.
func GlobalStateFile() string {
	return filepath.Join(GlobalStateDir(), "state.sqlite")
}

// StorageConfig selects and configures the durable key-value backend.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // sqlite (default), redis, memory
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// CartConfig controls cart persistence.
type CartConfig struct {
	Persist bool `yaml:"persist"`
}

// Config holds storefront configuration.
type Config struct {
	APIBaseURL         string        `yaml:"api_base_url"`
	Profile            string        `yaml:"profile"`
	StateFile          string        `yaml:"state_file"`
	LogFile            string        `yaml:"log_file"`
	HTTPTimeoutSeconds int           `yaml:"http_timeout_seconds"`
	Storage            StorageConfig `yaml:"storage"`
	Cart               CartConfig    `yaml:"cart"`
}

// DefaultConfig returns defaults: SQLite storage, persisted cart, no HTTP timeout.
func DefaultConfig() *Config {
	return &Config{
		Profile: DefaultProfile,
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
		},
		Cart: CartConfig{Persist: true},
	}
}

// LoadConfig loads configuration from a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the effective configuration: .env files are loaded into the
// process environment (existing variables win), then the YAML file named by
// STOREFRONT_CONFIG if set, then environment overrides.
func Load(envFiles ...string) (*Config, error) {
	LoadEnv(envFiles...)

	cfg := DefaultConfig()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads the given .env files (default ".env"). Missing files are not
// an error. It reports whether any file was loaded.
func LoadEnv(files ...string) bool {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := false
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			loaded = true
		}
	}
	return loaded
}

// ApplyEnv overrides fields from environment variables looked up via getenv.
// Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIBaseURL)); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvProfile)); v != "" {
		c.Profile = v
	}
	if v := strings.TrimSpace(getenv(EnvStorage)); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvRedisAddr)); v != "" {
		if !strings.Contains(v, ":") {
			v += ":6379"
		}
		c.Storage.RedisAddr = v
	}
	if v := getenv(EnvRedisPassword); v != "" {
		c.Storage.RedisPassword = v
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	case "":
		c.Storage.Backend = BackendSQLite
	default:
		return fmt.Errorf("invalid storage backend %q (want sqlite, redis or memory)", c.Storage.Backend)
	}
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds %d", c.HTTPTimeoutSeconds)
	}
	if c.Storage.RedisDB < 0 {
		return fmt.Errorf("invalid storage.redis_db %d", c.Storage.RedisDB)
	}
	return nil
}

// StateFilePath returns the SQLite state file. If unset, defaults to the
// global state file so every storefront process on the machine shares it.
// Relative paths are resolved against the global state directory.
func (c *Config) StateFilePath() string {
	switch {
	case c.StateFile == "":
		return GlobalStateFile()
	case filepath.IsAbs(c.StateFile):
		return c.StateFile
	default:
		return filepath.Join(GlobalStateDir(), c.StateFile)
	}
}

// SignalFilePath returns the notify signal file, next to the state file.
func (c *Config) SignalFilePath() string {
	return filepath.Join(filepath.Dir(c.StateFilePath()), ".storefront-notify")
}

// LogFilePath returns the log file. If unset, defaults to
// ~/.config/storefront/storefront.log. "none" or "off" disables file logging
// and yields "".
func (c *Config) LogFilePath() string {
	switch strings.ToLower(c.LogFile) {
	case "":
		return filepath.Join(GlobalStateDir(), "storefront.log")
	case "none", "off":
		return ""
	default:
		return c.LogFile
	}
}

// HTTPTimeout returns the per-request timeout; zero disables it.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
