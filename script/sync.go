package script

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

// bindSync installs the `mutex`, `rwmutex`, `cond`, and `eval -lock`
// surface over syncprim.Table.
func (b *binder) bindSync() error {
	mutex, err := b.namespace("mutex")
	if err != nil {
		return err
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"create":  b.mutexCreate,
		"lock":    b.mutexLock,
		"unlock":  b.mutexUnlock,
		"destroy": b.mutexDestroy,
	} {
		if err := b.set(mutex, name, fn); err != nil {
			return err
		}
	}

	rwmutex, err := b.namespace("rwmutex")
	if err != nil {
		return err
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"create":  b.rwmutexCreate,
		"rlock":   b.rwmutexRLock,
		"wlock":   b.rwmutexWLock,
		"unlock":  b.rwmutexUnlock,
		"destroy": b.mutexDestroy,
	} {
		if err := b.set(rwmutex, name, fn); err != nil {
			return err
		}
	}

	cond, err := b.namespace("cond")
	if err != nil {
		return err
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"create":  b.condCreate,
		"wait":    b.condWait,
		"notify":  b.condNotify,
		"destroy": b.mutexDestroy,
	} {
		if err := b.set(cond, name, fn); err != nil {
			return err
		}
	}

	return b.rt.Set("evalLocked", b.evalLocked)
}

// mutex.create ?recursive? -> handle
func (b *binder) mutexCreate(call goja.FunctionCall) goja.Value {
	if argBool(call, 0) {
		return b.rt.ToValue(b.env.Table.CreateRecursiveMutex())
	}
	return b.rt.ToValue(b.env.Table.CreateMutex())
}

func (b *binder) mutexLock(call goja.FunctionCall) goja.Value {
	h := argString(call, 0)
	if err := b.env.Table.Lock(h); err == nil {
		return goja.Undefined()
	}
	if err := b.env.Table.LockRecursive(h, b.selfID); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) mutexUnlock(call goja.FunctionCall) goja.Value {
	h := argString(call, 0)
	if err := b.env.Table.Unlock(h); err == nil {
		return goja.Undefined()
	}
	if err := b.env.Table.UnlockRecursive(h, b.selfID); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

// mutexDestroy is shared by mutex/rwmutex/cond destroy: all three resolve
// to handle.Registry.Unregister, which is unconditionally safe regardless
// of which primitive kind h names.
func (b *binder) mutexDestroy(call goja.FunctionCall) goja.Value {
	b.env.Table.Destroy(argString(call, 0))
	return goja.Undefined()
}

func (b *binder) rwmutexCreate(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Table.CreateRWMutex())
}

func (b *binder) rwmutexRLock(call goja.FunctionCall) goja.Value {
	if err := b.env.Table.RLock(argString(call, 0)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) rwmutexWLock(call goja.FunctionCall) goja.Value {
	if err := b.env.Table.WLock(argString(call, 0)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) rwmutexUnlock(call goja.FunctionCall) goja.Value {
	if err := b.env.Table.RWUnlock(argString(call, 0)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) condCreate(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Table.CreateCond())
}

// cond.wait handle mutexHandle ?timeoutMs?
func (b *binder) condWait(call goja.FunctionCall) goja.Value {
	h := argString(call, 0)
	mutexHandle := argString(call, 1)
	timeoutMs := argInt(call, 2)

	ctx := context.Background()
	err := b.env.Table.Wait(ctx, h, mutexHandle, time.Duration(timeoutMs)*time.Millisecond)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) condNotify(call goja.FunctionCall) goja.Value {
	if err := b.env.Table.Notify(argString(call, 0)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

// evalLocked implements `eval -lock mutexHandle body`: locks mutexHandle,
// evaluates fn, unlocks unconditionally (even on panic), and returns fn's
// result, matching the script surface's "eval ?-lock mutexHandle? body…".
func (b *binder) evalLocked(call goja.FunctionCall) (result goja.Value) {
	mutexHandle := argString(call, 0)
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(b.rt.NewTypeError("evalLocked requires a function as its second argument"))
	}

	if err := b.env.Table.Lock(mutexHandle); err != nil {
		panic(b.rt.NewGoError(err))
	}
	defer func() {
		_ = b.env.Table.Unlock(mutexHandle)
	}()

	v, err := fn(goja.Undefined())
	if err != nil {
		panic(err)
	}
	return v
}
