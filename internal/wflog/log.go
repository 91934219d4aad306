// Package wflog provides the package-wide default logger used by every
// wireframe component, mirroring how the host application's caddy.Log()
// hands out a process-wide *zap.Logger that individual modules name.
package wflog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *zap.Logger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	defaultLogger = l
}

// Log returns the current default logger.
func Log() *zap.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger. A nil logger
// installs a no-op logger so callers never need a nil check.
func SetDefault(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}

// Named returns the default logger scoped to the given component name,
// the same convention ctx.Logger(mod) uses in the host application
// (named sub-logger, no separate construction path).
func Named(name string) *zap.Logger {
	return Log().Named(name)
}

// OrNop returns l if non-nil, otherwise a no-op logger. Components take a
// *zap.Logger constructor argument and use this to stay nil-safe without
// forcing every caller to know about the global default.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
