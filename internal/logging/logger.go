// Package logging holds the process-wide zap logger.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

func init() {
	// Production JSON until main installs the configured logger.
	l, _ := zap.NewProduction(zap.AddCallerSkip(1))
	global.Store(l)
}

// New builds a logger for the package-level helpers. Development mode uses
// the console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	// Skip the helper frame so callers show up as the log site.
	return cfg.Build(zap.AddCallerSkip(1))
}

// ParseLevel maps LOG_LEVEL to a zap level; anything unrecognised is info.
func ParseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func Global() *zap.Logger {
	return global.Load()
}

func SetGlobal(l *zap.Logger) {
	global.Store(l)
}

func Info(msg string, fields ...zap.Field) { Global().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field) { Global().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Global().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { Global().Debug(msg, fields...) }

// With returns a child logger carrying fields, for direct use by callers
// (per-request loggers, for one).
func With(fields ...zap.Field) *zap.Logger {
	return Global().WithOptions(zap.AddCallerSkip(-1)).With(fields...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Global().Sync()
}
