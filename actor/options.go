package actor

import (
	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-scriptthread/internal/obslog"
	"github.com/joeycumines/go-scriptthread/vm"
)

// BindHook is called once per spawned actor, synchronously on the spawning
// goroutine, after the actor's vm.Interpreter exists and is registered but
// strictly before its init script runs on the worker's own goroutine. This
// is the hook the script package uses to install its namespaced globals
// (thread, tpool, mutex, …) onto a fresh actor's Runtime before any script
// of its own gets a chance to run — Spawn itself has no knowledge of
// script, avoiding an import cycle between actor and script.
type BindHook func(id uint64, interp *vm.Interpreter) error

// Options configures a spawned worker, following the
// functional-options pattern (eventloop/options.go): a package-level
// Options struct built up by With* constructors and passed once to Spawn.
type Options struct {
	logger          *obslog.Logger
	eventMark       int64
	unwindOnError   bool
	initScript      string
	errorHandlerID  uint64
	hasErrorHandler bool
	errorScript     string
	errorLimiter    *catrate.Limiter
	bindHook        BindHook
}

// Option mutates an Options value at construction time.
type Option func(*Options)

func newOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger used for this worker's error and
// lifecycle reporting. Defaults to obslog.Default() (stderr JSON) when no
// error handler is configured.
func WithLogger(l *obslog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithEventMark sets the worker's soft cap on pending asynchronous events,
// a backpressure mechanism. Zero (the default) means no cap.
func WithEventMark(n int64) Option {
	return func(o *Options) { o.eventMark = n }
}

// WithUnwindOnError sets the worker's UnwindOnError flag: any script error
// in this worker additionally stops its event loop.
func WithUnwindOnError(b bool) Option {
	return func(o *Options) { o.unwindOnError = b }
}

// WithInitScript sets the bootstrap script run once, synchronously, before
// the worker enters its event loop.
func WithInitScript(script string) Option {
	return func(o *Options) { o.initScript = script }
}

// WithErrorHandler names a designated error-handler worker and script to
// invoke with (offenderID, errorInfo) for errors that no synchronous waiter
// will observe. Rate-limited via limiter if non-nil.
func WithErrorHandler(handlerID uint64, script string, limiter *catrate.Limiter) Option {
	return func(o *Options) {
		o.hasErrorHandler = true
		o.errorHandlerID = handlerID
		o.errorScript = script
		o.errorLimiter = limiter
	}
}

// WithBindHook registers hook to run against every actor Spawn creates,
// before that actor's init script executes. Intended for the script
// package's Bind function; see BindHook's doc comment.
func WithBindHook(hook BindHook) Option {
	return func(o *Options) { o.bindHook = hook }
}
