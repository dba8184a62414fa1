package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"flywrapper/internal/index"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FLY_HOME", "FLY_INDEX_URL", "FLY_INDEX_API", "FLY_TIMEOUT", "FLY_CACHE_TTL", "FLY_CONCURRENCY", "FLY_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/fly")
	assert.Equal(t, "https://pypi.org", cfg.IndexURL)
	assert.Equal(t, APIJSON, cfg.API)
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, time.Hour, cfg.GetCacheTTL())
	assert.Equal(t, filepath.Join("/tmp/fly", "cache"), cfg.CacheDir())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	cfg, err := LoadConfig(home, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(home), cfg)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	path := filepath.Join(home, ConfigFileName)

	cfg := DefaultConfig(home)
	cfg.API = APISimple
	cfg.Concurrency = 8
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(home, "")
	require.NoError(t, err)
	assert.Equal(t, APISimple, loaded.API)
	assert.Equal(t, 8, loaded.Concurrency)
	assert.Equal(t, home, loaded.Home, "home is not persisted")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))
	_, err := LoadConfig(t.TempDir(), path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("every variable applies", func(t *testing.T) {
		t.Setenv("FLY_HOME", "/srv/fly")
		t.Setenv("FLY_INDEX_URL", "https://mirror.example")
		t.Setenv("FLY_INDEX_API", "simple")
		t.Setenv("FLY_TIMEOUT", "5s")
		t.Setenv("FLY_CACHE_TTL", "0")
		t.Setenv("FLY_CONCURRENCY", "2")
		t.Setenv("FLY_LOG_LEVEL", "debug")

		cfg := DefaultConfig("/home/x/.fly-wrapper")
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, "/srv/fly", cfg.Home)
		assert.Equal(t, "https://mirror.example", cfg.IndexURL)
		assert.Equal(t, APISimple, cfg.API)
		assert.Equal(t, 5*time.Second, cfg.GetTimeout())
		assert.Zero(t, cfg.GetCacheTTL())
		assert.Equal(t, 2, cfg.Concurrency)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("bad concurrency", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FLY_CONCURRENCY", "many")
		assert.Error(t, DefaultConfig("").applyEnvOverrides())
	})
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"api":         func(c *Config) { c.API = "xmlrpc" },
		"concurrency": func(c *Config) { c.Concurrency = 0 },
		"relative":    func(c *Config) { c.IndexURL = "pypi.org" },
		"scheme":      func(c *Config) { c.IndexURL = "ftp://pypi.org" },
		"timeout":     func(c *Config) { c.Timeout = "soon" },
		"ttl":         func(c *Config) { c.CacheTTL = "forever" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewWire(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	w, err := NewWire(cfg, nil)
	require.NoError(t, err)
	_, cached := w.Index.(*index.Cached)
	assert.True(t, cached)
	assert.NotNil(t, w.WithoutCache())

	cfg.CacheTTL = "0"
	cfg.API = APISimple
	w, err = NewWire(cfg, nil)
	require.NoError(t, err)
	_, simple := w.Index.(*index.Simple)
	assert.True(t, simple)

	cfg.API = "bogus"
	_, err = NewWire(cfg, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("info", false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = NewLogger("error", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
