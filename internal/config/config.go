// Package config holds configuration for the corpus query engine: planner
// tuning knobs, result ordering behavior, disk-backed storage paths, and
// logging. It is loaded from YAML with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"corpusgraph/internal/logging"
)

// Config holds all engine configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Planner tuning.
	Planner PlannerConfig `yaml:"planner"`

	// Result ordering behavior.
	Order OrderConfig `yaml:"order"`

	// Disk-backed annotation store settings.
	Storage StorageConfig `yaml:"storage"`

	// Core resource limits. Only MaxResultSetSize is enforced (by
	// pkg/corpusquery); the others are validated but not enforced.
	CoreLimits CoreLimits `yaml:"core_limits"`

	// Logging.
	Logging LoggingConfig `yaml:"logging"`
}

// PlannerConfig controls the cost-based planner (§4.H).
type PlannerConfig struct {
	// UseParallelJoins lets operators that support parallel retrieval shard
	// their outer loop onto a worker pool.
	UseParallelJoins bool `yaml:"use_parallel_joins"`

	// AllPermutationsThreshold: at or below this many remaining operators,
	// the planner switches from greedy to exhaustive join-order search.
	AllPermutationsThreshold int `yaml:"all_permutations_threshold"`

	// MaxWorkers bounds the worker pool used for parallel joins.
	MaxWorkers int `yaml:"max_workers"`
}

// OrderConfig controls result ordering (§4.I).
type OrderConfig struct {
	// QuirksMode compares only the last path segment after percent-decoding,
	// matching the legacy ordering behavior some corpora depend on.
	QuirksMode bool `yaml:"quirks_mode"`

	// ByteWiseCollation compares document paths and node names byte-wise
	// instead of case-insensitively (lower-cased before comparison).
	ByteWiseCollation bool `yaml:"byte_wise_collation"`
}

// StorageConfig controls the disk-backed annotation store variant (§4.A).
type StorageConfig struct {
	// DatabasePath is the sqlite file backing on-disk annotation tables.
	// Empty means in-memory only.
	DatabasePath string `yaml:"database_path"`

	// CacheSizeMB bounds the sqlite page cache.
	CacheSizeMB int `yaml:"cache_size_mb"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "corpusgraph",
		Version: "0.1.0",

		Planner: PlannerConfig{
			UseParallelJoins:         false,
			AllPermutationsThreshold: 7,
			MaxWorkers:               4,
		},

		Order: OrderConfig{
			QuirksMode:        false,
			ByteWiseCollation: false,
		},

		Storage: StorageConfig{
			DatabasePath: "",
			CacheSizeMB:  64,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "corpusgraph.log",
		},

		CoreLimits: CoreLimits{
			MaxConcurrentQueries: 8,
			MaxResultSetSize:     1_000_000,
			MaxPlanOperators:     64,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: planner.use_parallel_joins=%v", cfg.Planner.UseParallelJoins)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CORPUSGRAPH_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("CORPUSGRAPH_PARALLEL_JOINS"); v != "" {
		c.Planner.UseParallelJoins = v == "1" || v == "true"
	}
	if v := os.Getenv("CORPUSGRAPH_MAX_WORKERS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Planner.MaxWorkers = n
		}
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive: %q", s)
	}
	return n, nil
}

// GetCacheSize returns the sqlite cache size as a byte count.
func (c *Config) GetCacheSize() int64 {
	return int64(c.Storage.CacheSizeMB) * 1024 * 1024
}

// ApplyLogging pushes this config's logging section into the logging
// package. Call once after Load/DefaultConfig and before running queries.
func (c *Config) ApplyLogging() {
	logging.Configure(logging.Settings{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.Format == "json",
		Categories: c.Logging.Categories,
	})
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Planner.AllPermutationsThreshold < 0 {
		return fmt.Errorf("all_permutations_threshold must be >= 0")
	}
	if c.Planner.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be >= 1")
	}
	return c.CoreLimits.Validate()
}

// QueryTimeout returns a fixed 30-second per-query cancellation deadline,
// used by collaborators that want to bound how long a single evaluation may
// run. It is not read from the configuration.
func (c *Config) QueryTimeout() time.Duration {
	return 30 * time.Second
}
