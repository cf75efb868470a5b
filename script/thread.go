package script

import (
	"time"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/actor"
)

// bindThread installs the `thread` command family: create, send, wait,
// exit, unwind, id, names, exists, join, transfer, preserve, release,
// errorproc, configure.
func (b *binder) bindThread() error {
	ns, err := b.namespace("thread")
	if err != nil {
		return err
	}

	bindings := map[string]func(goja.FunctionCall) goja.Value{
		"create":    b.threadCreate,
		"send":      b.threadSend,
		"wait":      b.threadWait,
		"exit":      b.threadExit,
		"unwind":    b.threadUnwind,
		"id":        b.threadID,
		"names":     b.threadNames,
		"exists":    b.threadExists,
		"join":      b.threadJoin,
		"transfer":  b.threadTransfer,
		"preserve":  b.threadPreserve,
		"release":   b.threadRelease,
		"errorproc": b.threadErrorProc,
		"configure": b.threadConfigure,
	}
	for name, fn := range bindings {
		if err := b.set(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// threadCreate implements `create ?script?`: spawns a new actor running
// script as its init script (the default "enter event loop" sentinel if
// script is empty) and returns its id. It takes no joinable flag: its only
// argument is the script. This port tracks no exit-code, so join always
// reports 0 (see threadJoin).
func (b *binder) threadCreate(call goja.FunctionCall) goja.Value {
	script := argString(call, 0)
	id, err := b.env.Spawn(actor.WithInitScript(script))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(id)
}

// threadSend implements `send ?-async? id script ?varName?`.
func (b *binder) threadSend(call goja.FunctionCall) goja.Value {
	targetID := uint64(argInt(call, 0))
	script := argString(call, 1)
	async := argBool(call, 2)
	varName := argString(call, 3)

	if !async {
		result, _, _, err := b.env.Registry.SendSync(b.selfID, targetID, script)
		if err != nil {
			panic(b.rt.NewGoError(err))
		}
		return b.rt.ToValue(result)
	}

	if varName != "" {
		if err := b.env.Registry.SendAsyncWithCallback(b.selfID, targetID, script, varName); err != nil {
			panic(b.rt.NewGoError(err))
		}
		return goja.Undefined()
	}

	if err := b.env.Registry.SendAsync(b.selfID, targetID, script); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

// threadWait implements the surface's `wait`: reentrantly pumps this
// actor's own mailbox (the same loop currently running this very script)
// until varName becomes defined in the global scope, mirroring Tcl's
// vwait. Since the mailbox has no blocking "new work arrived" notification
// reachable from inside an already-running job, an idle pump backs off with
// a short sleep rather than busy-spinning.
func (b *binder) threadWait(call goja.FunctionCall) goja.Value {
	varName := argString(call, 0)
	for {
		if v := b.rt.Get(varName); v != nil && !goja.IsUndefined(v) {
			return v
		}
		if !b.interp.Loop.PumpOnce() {
			time.Sleep(time.Millisecond)
		}
	}
}

// threadExit is the hard-abort path: terminates the calling goroutine
// immediately, leaking the registry entry.
func (b *binder) threadExit(call goja.FunctionCall) goja.Value {
	actor.ExitThread()
	return goja.Undefined()
}

// threadUnwind forces this actor's own event loop to exit cleanly after the
// current event returns.
func (b *binder) threadUnwind(call goja.FunctionCall) goja.Value {
	if err := b.env.Registry.Unwind(b.selfID); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) threadID(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.selfID)
}

func (b *binder) threadNames(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Registry.Names())
}

func (b *binder) threadExists(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Registry.Exists(uint64(argInt(call, 0))))
}

// threadJoin blocks (via the same reentrant pump as threadWait) until id
// leaves the registry, then returns 0: this port does not model a
// per-worker exit-code, only liveness.
func (b *binder) threadJoin(call goja.FunctionCall) goja.Value {
	id := uint64(argInt(call, 0))
	for b.env.Registry.Exists(id) {
		if !b.interp.Loop.PumpOnce() {
			time.Sleep(time.Millisecond)
		}
	}
	return b.rt.ToValue(0)
}

// threadTransfer implements `transfer id channel`: looks the named channel
// up in this actor's own interpreter and hands it to target.
func (b *binder) threadTransfer(call goja.FunctionCall) goja.Value {
	targetID := uint64(argInt(call, 0))
	name := argString(call, 1)
	ch, ok := b.interp.Channel(name)
	if !ok {
		panic(b.rt.NewTypeError("transfer: no such channel %q", name))
	}
	if err := b.env.Registry.Transfer(b.selfID, targetID, ch); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) threadPreserve(call goja.FunctionCall) goja.Value {
	n, err := b.env.Registry.Reserve(uint64(argInt(call, 0)))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(n)
}

func (b *binder) threadRelease(call goja.FunctionCall) goja.Value {
	n, err := b.env.Registry.Release(uint64(argInt(call, 0)))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(n)
}

// threadErrorProc implements `errorproc handlerId procName`: names a
// designated error-handler actor and script for this actor's future
// async-job failures.
func (b *binder) threadErrorProc(call goja.FunctionCall) goja.Value {
	handlerID := uint64(argInt(call, 0))
	procName := argString(call, 1)
	err := b.env.Registry.SetErrorHandler(b.selfID, actor.WithErrorHandler(handlerID, procName, nil))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

// threadConfigure implements `configure id ?eventmark? ?unwindonerror?`.
// Called with only id, it queries: returns the actor's current settings
// without touching either. Otherwise it sets whichever of eventmark/
// unwindonerror was actually supplied (as opposed to left undefined),
// leaving the other field alone.
func (b *binder) threadConfigure(call goja.FunctionCall) goja.Value {
	id := uint64(argInt(call, 0))
	hasEventMark := len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1))
	hasUnwindOnError := len(call.Arguments) > 2 && !goja.IsUndefined(call.Argument(2))

	if !hasEventMark && !hasUnwindOnError {
		eventMark, unwindOnError, err := b.env.Registry.GetConfig(id)
		if err != nil {
			panic(b.rt.NewGoError(err))
		}
		result := b.rt.NewObject()
		_ = result.Set("eventmark", eventMark)
		_ = result.Set("unwindonerror", unwindOnError)
		return result
	}

	var opts actor.ConfigureOptions
	if hasEventMark {
		v := argInt(call, 1)
		opts.EventMark = &v
	}
	if hasUnwindOnError {
		v := argBool(call, 2)
		opts.UnwindOnError = &v
	}
	if err := b.env.Registry.Configure(id, opts); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}
