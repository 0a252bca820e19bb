// Package logging provides zap logger helpers for the pipeline.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It defaults to a no-op logger so packages
// can log before InitLogger runs (e.g. during config loading in tests).
var L = zap.NewNop()

// InitLogger replaces L with a real logger at the given level.
func InitLogger(level string, development bool) {
	logger, err := New(level, development)
	if err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	L = logger
}

// New builds a zap.Logger configured for development or production.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// NewRunLogger builds a logger that tees to stdout and a per-run log file
// under logsDir, named <prefix>_<site>_<timestamp>.log. The caller owns the
// returned sync function.
func NewRunLogger(level, logsDir, prefix, site string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.log", prefix, site, time.Now().Format("20060102_150405"))
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), lvl),
	)
	logger := zap.New(core)
	cleanup := func() {
		_ = logger.Sync()
		_ = file.Close()
	}
	return logger.With(zap.String("site", site)), cleanup, nil
}
