package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "corpusgraph" {
		t.Errorf("expected Name=corpusgraph, got %s", cfg.Name)
	}
	if cfg.Planner.AllPermutationsThreshold != 7 {
		t.Errorf("expected AllPermutationsThreshold=7, got %d", cfg.Planner.AllPermutationsThreshold)
	}
	if cfg.Planner.UseParallelJoins {
		t.Error("expected UseParallelJoins=false by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Planner.UseParallelJoins = true
	cfg.Order.QuirksMode = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Planner.UseParallelJoins {
		t.Error("expected UseParallelJoins=true after reload")
	}
	if !loaded.Order.QuirksMode {
		t.Error("expected QuirksMode=true after reload")
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load should not fail on missing file: %v", err)
	}
	if cfg.Planner.AllPermutationsThreshold != DefaultConfig().Planner.AllPermutationsThreshold {
		t.Error("expected defaults when config file is absent")
	}
}

func TestCoreLimitsValidate(t *testing.T) {
	limits := CoreLimits{MaxConcurrentQueries: 0, MaxResultSetSize: 10, MaxPlanOperators: 10}
	if err := limits.Validate(); err == nil {
		t.Error("expected error for MaxConcurrentQueries=0")
	}
}
