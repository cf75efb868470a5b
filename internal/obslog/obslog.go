// Package obslog centralizes the logiface logger construction shared by
// every package in go-scriptthread, mirroring the single-backend wiring
// shown by the logiface-slog package (NewLogger wraps a
// slog.Handler into a logiface.Option, then logiface.New builds the typed
// Logger). Packages accept a *Logger via a WithLogger option and fall back
// to Default() — a stderr JSON sink — the documented fallback destination
// for errors no synchronous waiter observes.
package obslog

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Event is the concrete logiface event type used throughout this module.
type Event = islog.Event

// Logger is the shared logger type every package's options accept.
type Logger = logiface.Logger[*Event]

// New builds a Logger writing structured JSON through handler.
func New(handler slog.Handler) *Logger {
	return logiface.New[*Event](islog.NewLogger(handler))
}

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// Default returns the process-wide fallback logger: structured JSON on
// stderr. It is lazily constructed once and reused, since most callers
// never override it.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLog = New(slog.NewJSONHandler(os.Stderr, nil))
	})
	return defaultLog
}
