package telemetry

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

// Init builds the process logger for env and installs it as the global logger.
// Production-like environments get JSON output; everything else gets the console encoder.
func Init(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "staging":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := strings.TrimSpace(level); lvl != "" {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", lvl, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	SetLogger(logger)
	return logger, nil
}

// SetLogger replaces the global logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	global.Store(logger)
}

// L returns the global logger, or a no-op logger before Init.
func L() *zap.Logger {
	if logger := global.Load(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// Or returns logger when non-nil, otherwise the global logger.
func Or(logger *zap.Logger) *zap.Logger {
	if logger != nil {
		return logger
	}
	return L()
}
