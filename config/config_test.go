package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "kokushi.db", cfg.DBPath)
	assert.Equal(t, 4096, cfg.ParallelThreshold)
	assert.Equal(t, 256, cfg.CacheEntries)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, "localhost:8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithDBPath("/var/lib/kokushi"),
			WithAssets("q.json", "s.json"),
			WithPoolSize(4),
			WithParallelThreshold(0),
			WithCacheEntries(0),
			WithBatchSize(50),
			WithListenAddr(":9090"),
			WithLogLevel("debug"),
		)

		assert.Equal(t, "/var/lib/kokushi", cfg.DBPath)
		assert.Equal(t, "q.json", cfg.QuestionsPath)
		assert.Equal(t, "s.json", cfg.SynonymsPath)
		assert.Equal(t, 4, cfg.PoolSize)
		assert.Zero(t, cfg.ParallelThreshold)
		assert.Zero(t, cfg.CacheEntries)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, ":9090", cfg.ListenAddr)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opt     ConfigOption
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing db path", WithDBPath("  "), true},
		{"negative pool size", WithPoolSize(-1), true},
		{"negative threshold", WithParallelThreshold(-1), true},
		{"negative cache", WithCacheEntries(-1), true},
		{"zero batch size", WithBatchSize(0), true},
		{"missing listen address", WithListenAddr(""), true},
		{"bad log level", WithLogLevel("verbose"), true},
		{"log level is normalized", WithLogLevel(" WARN "), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opt).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "kokushi.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
db_path = "/data/kokushi"
questions_path = "data/questions.json"
synonyms_path = "data/synonyms.json"
cache_entries = 1024
log_level = "debug"
`), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/data/kokushi", cfg.DBPath)
		assert.Equal(t, "data/questions.json", cfg.QuestionsPath)
		assert.Equal(t, "data/synonyms.json", cfg.SynonymsPath)
		assert.Equal(t, 1024, cfg.CacheEntries)
		assert.Equal(t, "debug", cfg.LogLevel)
		// untouched keys keep their defaults
		assert.Equal(t, 500, cfg.BatchSize)
		assert.Equal(t, "localhost:8080", cfg.ListenAddr)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "unknown.toml")
		require.NoError(t, os.WriteFile(path, []byte(`dbpath = "x"`), 0o600))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte(`db_path = `), 0o600))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	_, err = ParseLogLevel("")
	assert.Error(t, err)
}
