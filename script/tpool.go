package script

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

// bindPool installs the `tpool` command family: create, post, wait, get,
// preserve, release, suspend, resume, names.
func (b *binder) bindPool() error {
	ns, err := b.namespace("tpool")
	if err != nil {
		return err
	}
	bindings := map[string]func(goja.FunctionCall) goja.Value{
		"create":   b.poolCreate,
		"post":     b.poolPost,
		"wait":     b.poolWait,
		"get":      b.poolGet,
		"preserve": b.poolPreserve,
		"release":  b.poolRelease,
		"suspend":  b.poolSuspend,
		"resume":   b.poolResume,
		"names":    b.poolNames,
	}
	for name, fn := range bindings {
		if err := b.set(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// poolCreate implements `create ?-minworkers n? ?-maxworkers n?
// ?-initscript s? ?-idletime secs?` -> pool-handle.
func (b *binder) poolCreate(call goja.FunctionCall) goja.Value {
	minWorkers := int(argInt(call, 0))
	maxWorkers := int(argInt(call, 1))
	initScript := argString(call, 2)
	idleSecs := call.Argument(3).ToFloat()

	handle, err := b.env.Pools.Create(minWorkers, maxWorkers, initScript, time.Duration(idleSecs*float64(time.Second)))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(handle)
}

// poolPost implements `post ?-detached? pool script` -> jobId or empty.
func (b *binder) poolPost(call goja.FunctionCall) goja.Value {
	handle := argString(call, 0)
	script := argString(call, 1)
	detached := argBool(call, 2)

	p, err := b.env.Pools.Lookup(handle)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	id, ok, err := p.Post(script, detached)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	if !ok {
		return goja.Undefined()
	}
	return b.rt.ToValue(id)
}

// poolWait implements `wait pool jobIdList ?pendingVarName?` -> doneList,
// writing the still-pending job-id list into pendingVarName (a global
// name on this actor's Runtime) when one is given. It polls the pool's
// completion map and, while nothing is done yet, reentrantly pumps this
// actor's own mailbox (the same single-threaded loop this very call is
// running on) so the actor stays responsive to other actors' sends while
// blocked, without a second goroutine touching this actor's Runtime.
func (b *binder) poolWait(call goja.FunctionCall) goja.Value {
	handle := argString(call, 0)
	ids := toUint64Slice(call.Argument(1))
	hasPendingVar := len(call.Arguments) > 2
	pendingVarName := argString(call, 2)

	p, err := b.env.Pools.Lookup(handle)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}

	for {
		done, pending := p.Poll(ids)
		if len(done) > 0 || len(pending) == 0 {
			if hasPendingVar {
				if err := b.rt.Set(pendingVarName, pending); err != nil {
					panic(b.rt.NewGoError(err))
				}
			}
			return b.rt.ToValue(done)
		}
		if !b.interp.Loop.PumpOnce() {
			time.Sleep(time.Millisecond)
		}
	}
}

// poolGet implements `get pool jobId ?resVarName?`, applying the collected
// result's errorCode/errorInfo to this actor's own interpreter on failure.
// With no resVarName, it returns the result text directly. With one, it
// sets resVarName (a global name on this actor's Runtime) to the result
// text and returns the numeric completion code instead (0 for a job that
// completed OK, 1 for one that raised an error — Tcl's TCL_OK/TCL_ERROR).
func (b *binder) poolGet(call goja.FunctionCall) goja.Value {
	handle := argString(call, 0)
	jobID := uint64(argInt(call, 1))
	hasResVar := len(call.Arguments) > 2
	resVarName := argString(call, 2)

	p, err := b.env.Pools.Lookup(handle)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	result, err := p.Collect(jobID)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	if result.Code != "OK" {
		b.interp.SetError(result.ErrorCode, result.ErrorInfo)
	}
	b.interp.SetResult(result.Value)

	if !hasResVar {
		return b.rt.ToValue(result.Value)
	}
	if err := b.rt.Set(resVarName, result.Value); err != nil {
		panic(b.rt.NewGoError(err))
	}
	code := int64(0)
	if result.Code != "OK" {
		code = 1
	}
	return b.rt.ToValue(code)
}

func (b *binder) poolPreserve(call goja.FunctionCall) goja.Value {
	handle := argString(call, 0)
	p, err := b.env.Pools.Lookup(handle)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(p.Reserve())
}

func (b *binder) poolRelease(call goja.FunctionCall) goja.Value {
	handle := argString(call, 0)
	p, err := b.env.Pools.Lookup(handle)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	n, err := p.Release(context.Background())
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	if n <= 0 {
		b.env.Pools.Forget(handle)
	}
	return b.rt.ToValue(n)
}

// poolSuspend/poolResume implement `tpool suspend`/`tpool resume`: stop or
// restart accepting new posts without tearing the pool down.
func (b *binder) poolSuspend(call goja.FunctionCall) goja.Value {
	p, err := b.env.Pools.Lookup(argString(call, 0))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	p.Suspend()
	return goja.Undefined()
}

func (b *binder) poolResume(call goja.FunctionCall) goja.Value {
	p, err := b.env.Pools.Lookup(argString(call, 0))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	p.Resume()
	return goja.Undefined()
}

// poolNames implements `tpool names`: every live pool handle in this
// process.
func (b *binder) poolNames(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Pools.Names())
}

func toUint64Slice(v goja.Value) []uint64 {
	exported := v.Export()
	raw, ok := exported.([]any)
	if !ok {
		return nil
	}
	out := make([]uint64, 0, len(raw))
	for _, e := range raw {
		switch n := e.(type) {
		case int64:
			out = append(out, uint64(n))
		case float64:
			out = append(out, uint64(n))
		}
	}
	return out
}
