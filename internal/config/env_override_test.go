package config

import (
	"path/filepath"
	"testing"
)

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CORPUSGRAPH_DB", "/tmp/env-corpus.db")
	t.Setenv("CORPUSGRAPH_PARALLEL_JOINS", "true")
	t.Setenv("CORPUSGRAPH_MAX_WORKERS", "16")

	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.DatabasePath != "/tmp/env-corpus.db" {
		t.Errorf("expected env override for database path, got %q", cfg.Storage.DatabasePath)
	}
	if !cfg.Planner.UseParallelJoins {
		t.Error("expected env override to enable parallel joins")
	}
	if cfg.Planner.MaxWorkers != 16 {
		t.Errorf("expected env override max_workers=16, got %d", cfg.Planner.MaxWorkers)
	}
}

func TestConfig_EnvOverrides_InvalidWorkerCountIgnored(t *testing.T) {
	t.Setenv("CORPUSGRAPH_MAX_WORKERS", "not-a-number")
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Planner.MaxWorkers != DefaultConfig().Planner.MaxWorkers {
		t.Errorf("expected default max_workers to be kept on invalid override, got %d", cfg.Planner.MaxWorkers)
	}
}
