// Package logging builds the categorized zap loggers used by formulate.
// While the editor owns the terminal, logs go to a file and only when
// debug_mode is on; one-shot commands log to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"formulate/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config, logger wiring
	CategoryCatalog  Category = "catalog"  // Remote catalog fetches
	CategoryCache    Category = "cache"    // SQLite catalog cache
	CategorySession  Category = "session"  // Editing session transitions
	CategoryResolver Category = "resolver" // Substitution and evaluation
	CategoryUI       Category = "ui"       // Terminal editor events
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBoot,
	CategoryCatalog,
	CategoryCache,
	CategorySession,
	CategoryResolver,
	CategoryUI,
}

// New builds the root logger for a run.
func New(cfg config.LoggingConfig, interactive bool) (*zap.Logger, error) {
	if interactive && !cfg.DebugMode {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zc.Encoding = "json"
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if interactive {
		path := cfg.File
		if path == "" {
			path = "formulate.log"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}

	logger, err := zc.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &categoryCore{Core: core, cfg: cfg}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// For returns the child logger for a category.
func For(logger *zap.Logger, category Category) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(string(category))
}

// categoryCore drops entries whose category is switched off in the config.
type categoryCore struct {
	zapcore.Core
	cfg config.LoggingConfig
}

func (c *categoryCore) With(fields []zapcore.Field) zapcore.Core {
	return &categoryCore{Core: c.Core.With(fields), cfg: c.cfg}
}

func (c *categoryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.cfg.IsCategoryEnabled(rootName(ent.LoggerName)) {
		return ce
	}
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func rootName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// =============================================================================
// TIMING
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	logger *zap.Logger
	op     string
	start  time.Time
}

// StartTimer begins timing an operation
func StartTimer(logger *zap.Logger, operation string) *Timer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Timer{logger: logger, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn(t.op+" slow",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		t.logger.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
