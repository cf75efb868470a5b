package actor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/internal/obslog"
	"github.com/joeycumines/go-scriptthread/mailbox"
	"github.com/joeycumines/go-scriptthread/scripterr"
	"github.com/joeycumines/go-scriptthread/vm"
)

// Spawn creates an interpreter, registers the new actor's record, invokes
// any bind hook, and starts servicing the mailbox on a new goroutine. The
// returned id is valid for Send/Reserve/Release as soon as Spawn returns.
func (r *Registry) Spawn(opts ...Option) (id uint64, err error) {
	o := newOptions(opts)
	if o.logger == nil {
		o.logger = obslog.Default()
	}

	rt := goja.New()
	loop := mailbox.New()
	interp := vm.New(rt, loop)

	r.mu.Lock()
	r.nextID++
	id = r.nextID
	rec := &record{
		id:            id,
		interp:        interp,
		unwindOnError: o.unwindOnError,
		eventMark:     o.eventMark,
		refcount:      1,
		errOpts:       o,
	}
	r.records[id] = rec
	r.mu.Unlock()

	if o.bindHook != nil {
		if err := o.bindHook(id, interp); err != nil {
			r.mu.Lock()
			delete(r.records, id)
			r.mu.Unlock()
			return 0, err
		}
	}

	ready := make(chan struct{})
	go r.workerMain(id, interp, o, ready)

	<-ready
	return id, nil
}

func (r *Registry) workerMain(id uint64, interp *vm.Interpreter, o Options, ready chan<- struct{}) {
	if o.initScript != "" {
		if _, err := interp.Eval(o.initScript); err != nil {
			interp.SetError("INIT", err.Error())
			r.reportErrorFor(id, err.Error())
		}
	}
	close(ready)
	r.runLoop(id, interp, o)
}

func (r *Registry) runLoop(id uint64, interp *vm.Interpreter, o Options) {
	_ = interp.Loop.Run(context.Background())

	r.mu.Lock()
	delete(r.records, id)
	r.completeDeadWorker(id)
	r.mu.Unlock()
}

// Reserve increments id's refcount and returns the new value.
func (r *Registry) Reserve(id uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		return 0, scripterr.ErrInvalidTarget
	}
	rec.refcount++
	return rec.refcount, nil
}

// Release decrements id's refcount; dropping to zero or below stops the
// actor, removes it from the registry, and wakes its mailbox loop so it
// exits its event loop promptly.
func (r *Registry) Release(id uint64) (int64, error) {
	r.mu.Lock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		r.mu.Unlock()
		return 0, scripterr.ErrInvalidTarget
	}
	rec.refcount--
	newCount := rec.refcount
	var loop *mailbox.Loop
	if newCount <= 0 {
		rec.stopped = true
		loop = rec.interp.Loop
	}
	r.mu.Unlock()

	if loop != nil {
		loop.RequestStop()
	}
	return newCount, nil
}

// Unwind is a release-self that forces the calling worker's own event loop
// to exit cleanly after the current event returns.
func (r *Registry) Unwind(id uint64) error {
	r.mu.Lock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	rec.stopped = true
	loop := rec.interp.Loop
	r.mu.Unlock()
	loop.RequestStop()
	return nil
}

// ExitThread terminates the calling goroutine immediately via
// runtime.Goexit, deliberately skipping unwind. The registry entry is
// leaked exactly as Tcl's Thread package leaks its thread-data slot on
// thread::exit; no finalizer reclaims it. Kept for compatibility with
// scripts that rely on this exact semantic.
func ExitThread() {
	runtime.Goexit()
}

// reportError SendAsyncs the configured error-handler script to the
// designated worker, rate-limited via go-catrate so a hot failing loop
// cannot flood the handler; falls back to the configured logger (stderr by
// default) if no handler is set.
func (r *Registry) reportError(offenderID uint64, errorInfo string, o Options) {
	if o.hasErrorHandler {
		allowed := true
		if o.errorLimiter != nil {
			_, allowed = o.errorLimiter.Allow(offenderID)
		}
		if allowed {
			_ = r.SendAsync(offenderID, o.errorHandlerID, fmt.Sprintf("%s(%d, %q)", o.errorScript, offenderID, errorInfo))
			return
		}
	}
	logger := o.logger
	if logger == nil {
		logger = obslog.Default()
	}
	logger.Err().Err(fmt.Errorf("%s", errorInfo)).Int("offenderID", int(offenderID)).Log("unhandled actor script error")
}

// reportErrorFor looks up id's configured error-reporting options and
// reports errorInfo through reportError, additionally stopping the worker
// if its UnwindOnError flag is set.
func (r *Registry) reportErrorFor(id uint64, errorInfo string) {
	r.mu.Lock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		r.mu.Unlock()
		return
	}
	o := rec.errOpts
	unwind := rec.unwindOnError
	var loop *mailbox.Loop
	if unwind {
		rec.stopped = true
		loop = rec.interp.Loop
	}
	r.mu.Unlock()

	r.reportError(id, errorInfo, o)
	if loop != nil {
		loop.RequestStop()
	}
}
