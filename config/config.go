// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the settings shared by the kokushi commands and how
// they are read from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/kokushi/ingestion"
	"github.com/poiesic/kokushi/search"
)

// Config holds configuration for the database, the search engine and the
// HTTP server.
type Config struct {
	// DBPath is the BadgerDB directory that holds the imported corpus.
	DBPath string `toml:"db_path"`

	// QuestionsPath is the questions asset read by import.
	QuestionsPath string `toml:"questions_path"`

	// SynonymsPath is the synonym dictionary asset read by import.
	// Empty means no synonyms.
	SynonymsPath string `toml:"synonyms_path"`

	// PoolSize is the number of search workers. Zero selects the number of CPUs.
	PoolSize int `toml:"pool_size"`

	// ParallelThreshold is the corpus size from which searches run on the
	// worker pool. Zero disables parallel search.
	// Default: 4096
	ParallelThreshold int `toml:"parallel_threshold"`

	// CacheEntries is the number of memoized search results. Zero disables
	// the cache.
	// Default: 256
	CacheEntries int `toml:"cache_entries"`

	// BatchSize is the number of questions written per import transaction.
	// Default: 500
	BatchSize int `toml:"batch_size"`

	// ListenAddr is the address the HTTP server binds to.
	// Default: "localhost:8080"
	ListenAddr string `toml:"listen_addr"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `toml:"log_level"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDBPath sets the database directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithAssets sets the questions and synonym asset paths.
func WithAssets(questionsPath, synonymsPath string) ConfigOption {
	return func(c *Config) {
		c.QuestionsPath = questionsPath
		c.SynonymsPath = synonymsPath
	}
}

// WithPoolSize sets the number of search workers.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithParallelThreshold sets the corpus size from which searches run in parallel.
func WithParallelThreshold(n int) ConfigOption {
	return func(c *Config) {
		c.ParallelThreshold = n
	}
}

// WithCacheEntries sets the number of memoized search results.
func WithCacheEntries(n int) ConfigOption {
	return func(c *Config) {
		c.CacheEntries = n
	}
}

// WithBatchSize sets the import batch size.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithListenAddr sets the HTTP listen address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// DefaultConfig returns a Config with the defaults used by every command.
func DefaultConfig() *Config {
	return &Config{
		DBPath:            "kokushi.db",
		ParallelThreshold: search.DefaultParallelThreshold,
		CacheEntries:      search.DefaultCacheEntries,
		BatchSize:         ingestion.DefaultBatchSize,
		ListenAddr:        "localhost:8080",
		LogLevel:          "info",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDBPath("/var/lib/kokushi"),
//	    WithAssets("data/questions.json", "data/synonyms.json"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadFile reads a TOML file over the defaults. Keys missing from the file
// keep their default values; unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.DBPath == "" {
		return errors.New("config: DBPath is required")
	}
	if c.PoolSize < 0 {
		return errors.New("config: PoolSize cannot be negative")
	}
	if c.ParallelThreshold < 0 {
		return errors.New("config: ParallelThreshold cannot be negative")
	}
	if c.CacheEntries < 0 {
		return errors.New("config: CacheEntries cannot be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("config: BatchSize must be positive")
	}
	if c.ListenAddr == "" {
		return errors.New("config: ListenAddr is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}
