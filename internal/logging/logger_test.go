package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState(t *testing.T, workspace string) {
	t.Helper()
	CloseAll()
	global.mu.Lock()
	global.loggers = make(map[Category]*Logger)
	global.logsDir = ""
	global.workspace = ""
	global.settings = Settings{}
	global.mu.Unlock()
	if err := Initialize(workspace); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	resetState(t, tempDir)
	Configure(Settings{
		DebugMode: true,
		Level:     "debug",
		Categories: map[string]bool{
			"boot": true, "annostore": true, "graphstorage": true,
			"planner": true, "executor": true, "query": true, "disk": true,
		},
	})

	if !IsDebugMode() {
		t.Fatal("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryAnnoStore, CategoryGraphStorage,
		CategoryPlanner, CategoryExecutor, CategoryQuery, CategoryDisk,
	}
	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		l := Get(cat)
		l.Info("info for %s", cat)
		l.Debug("debug for %s", cat)
		l.Warn("warn for %s", cat)
		l.Error("error for %s", cat)
	}
	Boot("boot convenience log")
	AnnoStoreDebug("annostore convenience log")
	GraphStorageDebug("graphstorage convenience log")
	PlannerDebug("planner convenience log")
	ExecutorDebug("executor convenience log")
	QueryDebug("query convenience log")
	DiskDebug("disk convenience log")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".corpusgraph", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	for _, cat := range categories {
		found := false
		for _, e := range entries {
			if strings.Contains(e.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, e.Name()))
				if err != nil {
					t.Errorf("read log file for %s: %v", cat, err)
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
			}
		}
		if !found {
			t.Errorf("no log file found for category %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()
	resetState(t, tempDir)
	Configure(Settings{DebugMode: false})

	if IsDebugMode() {
		t.Fatal("expected debug mode to be disabled")
	}
	for _, cat := range []Category{CategoryBoot, CategoryPlanner, CategoryQuery} {
		if IsCategoryEnabled(cat) {
			t.Errorf("category %s should be disabled in production mode", cat)
		}
	}

	Boot("should not be logged")
	Get(CategoryBoot).Info("should not be logged")
	CloseAll()

	logsPath := filepath.Join(tempDir, ".corpusgraph", "logs")
	if entries, err := os.ReadDir(logsPath); err == nil && len(entries) > 0 {
		t.Errorf("expected no log files in production mode, found %d", len(entries))
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir := t.TempDir()
	resetState(t, tempDir)
	Configure(Settings{
		DebugMode: true,
		Level:     "debug",
		Categories: map[string]bool{
			"boot":    true,
			"planner": true,
			"query":   false,
		},
	})

	if !IsCategoryEnabled(CategoryBoot) || !IsCategoryEnabled(CategoryPlanner) {
		t.Error("boot and planner should be enabled")
	}
	if IsCategoryEnabled(CategoryQuery) {
		t.Error("query should be disabled")
	}
	if !IsCategoryEnabled(CategoryExecutor) {
		t.Error("executor (not in config) should default to enabled")
	}

	Boot("should be logged")
	PlannerDebug("should be logged")
	QueryDebug("should not be logged")
	CloseAll()

	logsPath := filepath.Join(tempDir, ".corpusgraph", "logs")
	entries, _ := os.ReadDir(logsPath)
	var hasBoot, hasQuery bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "boot") {
			hasBoot = true
		}
		if strings.Contains(e.Name(), "query") {
			hasQuery = true
		}
	}
	if !hasBoot {
		t.Error("expected boot log file")
	}
	if hasQuery {
		t.Error("should not have a query log file")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()
	resetState(t, tempDir)
	Configure(Settings{DebugMode: true, Level: "debug"})

	timer := StartTimer(CategoryPlanner, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	if elapsed <= 0 {
		t.Error("expected non-zero duration")
	}
	CloseAll()
}
