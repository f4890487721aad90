package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	root  *zap.Logger
	sugar *zap.SugaredLogger
)

// NewConfig returns the zap config for a service. Debug switches to the
// console encoder at debug level, otherwise JSON at info level. Every entry
// carries the service name.
func NewConfig(service string, debug bool) zap.Config {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if service != "" {
		cfg.InitialFields = map[string]interface{}{"service": service}
	}
	return cfg
}

// Init builds the process logger for service and installs it
func Init(service string, debug bool) error {
	l, err := NewConfig(service, debug).Build()
	if err != nil {
		return err
	}
	Use(l)
	return nil
}

// Use installs l as the process logger. The previous one is flushed.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	zap.ReplaceGlobals(l)
	if root != nil {
		_ = root.Sync()
	}
	root = l
	sugar = l.Sugar()
}

// L returns the process logger, zap's global one before Init
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		return root
	}
	return zap.L()
}

func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		return sugar
	}
	return zap.S()
}

// Named returns a sugared logger for one component, e.g. "metrics" or "sink"
func Named(name string) *zap.SugaredLogger {
	return L().Named(name).Sugar()
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}
