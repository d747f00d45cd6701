// Package logging provides categorized, file-based structured logging for
// the query engine core. Each category writes to its own file under
// <workspace>/.corpusgraph/logs/; when debug mode is off, logging is a no-op
// so that query evaluation never pays for I/O it didn't ask for.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem emitting a log line.
type Category string

const (
	CategoryBoot         Category = "boot"         // module initialization
	CategoryAnnoStore    Category = "annostore"    // annotation store (§4.A)
	CategoryGraphStorage Category = "graphstorage" // component graph storages (§4.C)
	CategoryPlanner      Category = "planner"      // cost-based planner (§4.H)
	CategoryExecutor     Category = "executor"     // executor + dedup (§4.I)
	CategoryQuery        Category = "query"        // node search + operators (§4.F/G)
	CategoryDisk         Category = "disk"         // disk-backed storage I/O
)

// Settings mirrors the logging section of the engine config. It is injected
// via Configure rather than read from disk directly, so this package has no
// dependency on the config package (which itself logs during Load).
type Settings struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	JSONFormat bool
	Categories map[string]bool
}

type state struct {
	mu        sync.RWMutex
	workspace string
	logsDir   string
	settings  Settings
	level     zapcore.Level
	loggers   map[Category]*Logger
}

var global = &state{loggers: make(map[Category]*Logger)}

// Initialize sets up the logging directory for the given workspace. Call
// Configure afterward (or before) to control verbosity.
func Initialize(workspace string) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}
	global.mu.Lock()
	global.workspace = workspace
	global.logsDir = filepath.Join(workspace, ".corpusgraph", "logs")
	global.mu.Unlock()
	return nil
}

// Configure applies logging settings. Safe to call multiple times (e.g. on
// config reload).
func Configure(s Settings) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.settings = s
	global.level = parseLevel(s.Level)
	if s.DebugMode && global.logsDir != "" {
		_ = os.MkdirAll(global.logsDir, 0755)
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode reports whether debug logging is currently enabled.
func IsDebugMode() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.settings.DebugMode
}

// IsCategoryEnabled reports whether a category is enabled under the current
// settings. Returns false whenever debug mode is off.
func IsCategoryEnabled(category Category) bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	if !global.settings.DebugMode {
		return false
	}
	if global.settings.Categories == nil {
		return true
	}
	enabled, exists := global.settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Logger wraps a zap.SugaredLogger scoped to one category and file.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

// Get returns (or lazily creates) the logger for a category. The returned
// logger is a safe no-op when the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	global.mu.RLock()
	if l, ok := global.loggers[category]; ok {
		global.mu.RUnlock()
		return l
	}
	global.mu.RUnlock()

	global.mu.Lock()
	defer global.mu.Unlock()
	if l, ok := global.loggers[category]; ok {
		return l
	}

	if global.logsDir == "" {
		return &Logger{category: category}
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(global.logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open log file %s: %v\n", path, err)
		return &Logger{category: category}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if global.settings.JSONFormat {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(file), global.level)
	zl := zap.New(core).With(zap.String("category", string(category))).Sugar()

	l := &Logger{category: category, sugar: zl, file: file}
	global.loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// StructuredLog emits a log line annotated with extra key/value fields at
// the given level.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	if l.sugar == nil {
		return
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch level {
	case "debug":
		l.sugar.Debugw(msg, kv...)
	case "warn":
		l.sugar.Warnw(msg, kv...)
	case "error":
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// CloseAll closes all open per-category log files. Call at shutdown.
func CloseAll() {
	global.mu.Lock()
	defer global.mu.Unlock()
	for _, l := range global.loggers {
		if l.file != nil {
			_ = l.sugar.Sync()
			_ = l.file.Close()
		}
	}
	global.loggers = make(map[Category]*Logger)
}

// Convenience wrappers, one to three per category, mirroring the call sites
// used throughout the engine (Boot, BootDebug, BootError, ...).

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func AnnoStoreDebug(format string, args ...interface{}) {
	Get(CategoryAnnoStore).Debug(format, args...)
}
func AnnoStoreError(format string, args ...interface{}) {
	Get(CategoryAnnoStore).Error(format, args...)
}

func GraphStorageDebug(format string, args ...interface{}) {
	Get(CategoryGraphStorage).Debug(format, args...)
}
func GraphStorageWarn(format string, args ...interface{}) {
	Get(CategoryGraphStorage).Warn(format, args...)
}

func PlannerDebug(format string, args ...interface{}) { Get(CategoryPlanner).Debug(format, args...) }

func ExecutorDebug(format string, args ...interface{}) { Get(CategoryExecutor).Debug(format, args...) }
func ExecutorWarn(format string, args ...interface{})  { Get(CategoryExecutor).Warn(format, args...) }

func QueryDebug(format string, args ...interface{}) { Get(CategoryQuery).Debug(format, args...) }

func DiskDebug(format string, args ...interface{}) { Get(CategoryDisk).Debug(format, args...) }
func DiskError(format string, args ...interface{}) { Get(CategoryDisk).Error(format, args...) }

// Timer measures an operation's duration and logs it at debug level on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation in the given category.
func StartTimer(category Category, op string) *Timer {
	return &Timer{category: category, op: op, start: time.Now()}
}

// Stop logs the elapsed duration and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s took %s", t.op, elapsed)
	return elapsed
}
