// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package comp

import (
	"log/slog"
	"sync/atomic"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
)

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the default logger of States created afterwards
// without WithLogger. By default nothing is logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-commit diagnostics (configures, imports, scans)
//   - [slog.LevelInfo]: lifecycle events (outputs added, backend selected)
//   - [slog.LevelWarn]: non-fatal failures (screencopy sessions failed)
//
// Example:
//
//	comp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by components that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes l to every component that accepts a logger.
func propagateLogger(l *slog.Logger, components ...any) {
	for _, c := range components {
		if ls, ok := c.(loggerSetter); ok {
			ls.SetLogger(l)
		}
	}
}
