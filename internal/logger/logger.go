// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
	mu    sync.RWMutex
)

// Init initializes the global logger for the given environment.
// "production" uses a JSON encoder, "test" discards everything, and all
// other environments use a human-readable console encoder.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		set(base)
	})
}

// Replace swaps the global logger. Tests use it to capture output.
func Replace(base *zap.Logger) {
	set(base)
}

func set(base *zap.Logger) {
	mu.Lock()
	sugar = base.Sugar()
	mu.Unlock()
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s == nil {
		Init("development")
		mu.RLock()
		s = sugar
		mu.RUnlock()
	}
	return s
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		_ = s.Sync()
	}
}
