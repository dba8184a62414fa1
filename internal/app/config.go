package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string `yaml:"-" json:"home"`                  // config directory, e.g. $HOME/.fly-wrapper
	IndexURL    string `yaml:"index_url" json:"index_url"`     // package index base URL, e.g. https://pypi.org
	API         string `yaml:"api" json:"api"`                 // json or simple
	Timeout     string `yaml:"timeout" json:"timeout"`         // per-request HTTP timeout
	CacheTTL    string `yaml:"cache_ttl" json:"cache_ttl"`     // "0" disables the release cache
	Concurrency int    `yaml:"concurrency" json:"concurrency"` // parallel index lookups
	LogLevel    string `yaml:"log_level" json:"log_level"`     // debug, info, warn, error
}

// Index API flavours.
const (
	APIJSON   = "json"
	APISimple = "simple"
)

// ConfigFileName is looked up inside Home when no explicit path is given.
const ConfigFileName = "config.yaml"

// DefaultConfig returns the default configuration rooted at home.
func DefaultConfig(home string) *Config {
	return &Config{
		Home:        home,
		IndexURL:    "https://pypi.org",
		API:         APIJSON,
		Timeout:     "30s",
		CacheTTL:    "1h",
		Concurrency: 4,
		LogLevel:    "warn",
	}
}

// DefaultHome returns ~/.fly-wrapper.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".fly-wrapper"), nil
}

// LoadConfig reads defaults, then the YAML file at path (a missing file keeps
// the defaults), then a .env file in the working directory, then FLY_*
// environment variables.
func LoadConfig(home, path string) (*Config, error) {
	cfg := DefaultConfig(home)
	if path == "" {
		path = filepath.Join(home, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// .env is optional; variables already set win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FLY_HOME"); v != "" {
		c.Home = v
	}
	if v := os.Getenv("FLY_INDEX_URL"); v != "" {
		c.IndexURL = v
	}
	if v := os.Getenv("FLY_INDEX_API"); v != "" {
		c.API = v
	}
	if v := os.Getenv("FLY_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("FLY_CACHE_TTL"); v != "" {
		c.CacheTTL = v
	}
	if v := os.Getenv("FLY_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLY_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("FLY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for values the wiring cannot use.
func (c *Config) Validate() error {
	if c.API != APIJSON && c.API != APISimple {
		return fmt.Errorf("invalid index api %q (valid: %s, %s)", c.API, APIJSON, APISimple)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	u, err := url.Parse(c.IndexURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("index url %q must be an absolute http(s) URL", c.IndexURL)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
	}
	return nil
}

// GetTimeout returns the HTTP timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL returns the cache TTL; zero means caching is off.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// CacheDir is where index responses are cached.
func (c *Config) CacheDir() string { return filepath.Join(c.Home, "cache") }
