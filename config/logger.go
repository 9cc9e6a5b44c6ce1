package config

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu       sync.RWMutex
	loggerInstance *zap.Logger
)

// NewLogger builds a zap logger for the environment. Production uses JSON
// output, everything else the console encoder.
func NewLogger(goEnv, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	var cfg zap.Config
	if goEnv == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// InitLogger builds the application logger from cfg and stores it for GetLogger
func InitLogger(cfg *Config) (*zap.Logger, error) {
	logger, err := NewLogger(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	SetLogger(logger)
	return logger, nil
}

// GetLogger returns the application logger, a no-op logger until one is set
func GetLogger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if loggerInstance == nil {
		return zap.NewNop()
	}
	return loggerInstance
}

// SetLogger sets the logger instance (primarily for testing)
func SetLogger(logger *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerInstance = logger
}
