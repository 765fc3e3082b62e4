// Package logging provides config-driven categorized file logging for clonekit.
// Logs are written to <dir>/<date>_<category>.log, one file per category.
// Logging is controlled by debug_mode in the config file: when false, every
// logger is a no-op and no files are created.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup and shutdown
	CategoryClone  Category = "clone"  // Deep clone runs
	CategoryCodec  Category = "codec"  // YAML/JSON decoding and encoding
	CategoryCache  Category = "cache"  // Storage wrapper operations
	CategoryTiming Category = "timing" // Debounce / throttle
	CategorySort   Category = "sort"   // Sorting routines
	CategoryConfig Category = "config" // Config loading and validation
	CategoryWatch  Category = "watch"  // File watcher events
)

// Options mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports.
type Options struct {
	Dir        string
	Level      string
	JSONFormat bool
	DebugMode  bool
	Categories map[string]bool
}

// Logger wraps a zap logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	opts      Options
	optsMu    sync.RWMutex
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	requestID string

	// override routes every category into a single core (tests, CLI stderr).
	override zapcore.Core
)

var nop = zap.NewNop().Sugar()

// Initialize applies logging options and creates the log directory when
// debug mode is on. It may be called again to reconfigure.
func Initialize(o Options) error {
	CloseAll()
	CloseAudit()

	lvl, err := parseLevel(o.Level)
	if err != nil {
		return err
	}

	optsMu.Lock()
	opts = o
	level.SetLevel(lvl)
	optsMu.Unlock()

	if !o.DebugMode {
		return nil // Silent no-op in production mode
	}
	if o.Dir == "" {
		return fmt.Errorf("logging: log directory required in debug mode")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	if err := InitAudit(); err != nil {
		return err
	}

	boot := Get(CategoryBoot)
	boot.Info("=== clonekit logging initialized ===")
	boot.Info("Logs directory: %s", o.Dir)
	boot.Info("Log level: %s", lvl)
	if len(o.Categories) == 0 {
		boot.Info("All categories enabled (no category filter)")
	} else {
		for cat, enabled := range o.Categories {
			boot.Debug("Category '%s': %v", cat, enabled)
		}
	}
	return nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return lvl, fmt.Errorf("logging: %w", err)
	}
	return lvl, nil
}

// UseCore sends every category to core, regardless of debug mode. Passing
// nil restores file output.
func UseCore(core zapcore.Core) {
	CloseAll()
	optsMu.Lock()
	override = core
	optsMu.Unlock()
}

// NewRequestID generates a correlation ID, installs it on loggers created
// from now on, and returns it.
func NewRequestID() string {
	id := uuid.NewString()
	SetRequestID(id)
	return id
}

// SetRequestID installs a correlation ID on loggers created from now on.
func SetRequestID(id string) {
	CloseAll()
	optsMu.Lock()
	requestID = id
	optsMu.Unlock()
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if override == nil && !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true // All enabled by default
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if logging is off or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: nop}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l, err := newLogger(category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: %v\n", err)
		return &Logger{category: category, sugar: nop}
	}
	loggers[category] = l
	return l
}

func newLogger(category Category) (*Logger, error) {
	optsMu.RLock()
	o, core, req := opts, override, requestID
	optsMu.RUnlock()

	fields := []zap.Field{zap.String("cat", string(category))}
	if req != "" {
		fields = append(fields, zap.String("req", req))
	}

	if core != nil {
		return &Logger{category: category, sugar: zap.New(core).With(fields...).Sugar()}, nil
	}

	// Date prefix for easy rotation
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	path := filepath.Join(o.Dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", path, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if o.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	zl := zap.New(zapcore.NewCore(enc, zapcore.AddSync(file), level)).With(fields...)
	return &Logger{category: category, sugar: zl.Sugar(), file: file}, nil
}

// Category returns the logger's category.
func (l *Logger) Category() Category { return l.category }

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// WithFields returns a logger that adds the given key-value context to every
// entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	kv := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// CloseAll flushes and closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		_ = l.sugar.Sync()
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

func Boot(format string, args ...interface{})        { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})   { Get(CategoryBoot).Debug(format, args...) }
func Clone(format string, args ...interface{})       { Get(CategoryClone).Info(format, args...) }
func CloneDebug(format string, args ...interface{})  { Get(CategoryClone).Debug(format, args...) }
func Codec(format string, args ...interface{})       { Get(CategoryCodec).Info(format, args...) }
func CodecDebug(format string, args ...interface{})  { Get(CategoryCodec).Debug(format, args...) }
func Cache(format string, args ...interface{})       { Get(CategoryCache).Info(format, args...) }
func CacheDebug(format string, args ...interface{})  { Get(CategoryCache).Debug(format, args...) }
func Timing(format string, args ...interface{})      { Get(CategoryTiming).Info(format, args...) }
func TimingDebug(format string, args ...interface{}) { Get(CategoryTiming).Debug(format, args...) }
func Sort(format string, args ...interface{})        { Get(CategorySort).Info(format, args...) }
func SortDebug(format string, args ...interface{})   { Get(CategorySort).Debug(format, args...) }
func Config(format string, args ...interface{})      { Get(CategoryConfig).Info(format, args...) }
func ConfigDebug(format string, args ...interface{}) { Get(CategoryConfig).Debug(format, args...) }
func Watch(format string, args ...interface{})       { Get(CategoryWatch).Info(format, args...) }
func WatchDebug(format string, args ...interface{})  { Get(CategoryWatch).Debug(format, args...) }

// Timer measures an operation and logs its duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
