// Package script wires every other package's operations onto a
// goja.Runtime as namespaced globals, following the
// goja-eventloop.Adapter.Bind() pattern: one Bind function per concern,
// each registering a handful of Go-backed functions via runtime.Set, with
// goja.FunctionCall handlers that validate arguments and panic a
// goja.Object TypeError on misuse (goja converts a panicked Value back into
// a catchable script-level exception).
package script

import (
	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/actor"
	"github.com/joeycumines/go-scriptthread/syncprim"
	"github.com/joeycumines/go-scriptthread/tpool"
	"github.com/joeycumines/go-scriptthread/tsv"
	"github.com/joeycumines/go-scriptthread/vm"
)

// Env bundles the process-wide singletons every actor's runtime is bound
// against: each subsystem is a single long-lived owner object, passed
// explicitly to operations rather than reached through global state.
type Env struct {
	Registry *actor.Registry
	Table    *syncprim.Table
	Store    *tsv.Store
	Pools    *tpool.Manager
}

// NewEnv constructs an Env with a fresh instance of every subsystem.
func NewEnv() *Env {
	return &Env{
		Registry: actor.New(),
		Table:    syncprim.NewTable(),
		Store:    tsv.New(),
		Pools:    tpool.NewManager(),
	}
}

// Spawn creates a new actor with env's namespaced globals already installed
// on its Runtime before its init script runs, by appending a BindHook
// option ahead of whatever opts the caller supplied (the bootstrap sequence
// runs init strictly after the worker's interpreter is usable). Every
// caller that spawns an actor meant to run script package commands — the
// first bootstrap actor as much as thread.create — should go through Spawn
// rather than env.Registry.Spawn directly.
func (env *Env) Spawn(opts ...actor.Option) (uint64, error) {
	hook := actor.WithBindHook(func(id uint64, interp *vm.Interpreter) error {
		return Bind(interp.Runtime, id, env)
	})
	return env.Registry.Spawn(append([]actor.Option{hook}, opts...)...)
}

// Bind installs every script-visible namespace (thread, tpool, mutex,
// rwmutex, cond, channel, svar) onto rt, scoped to the actor identified by
// selfID. Each actor calls Bind once, during Spawn's init sequence, against
// its own Runtime — exactly as goja-eventloop.Adapter.Bind() is called once
// per Adapter against its own Runtime.
func Bind(rt *goja.Runtime, selfID uint64, env *Env) error {
	interp, err := env.Registry.Interpreter(selfID)
	if err != nil {
		return err
	}

	b := &binder{rt: rt, selfID: selfID, interp: interp, env: env}
	for _, bindFn := range []func() error{
		b.bindThread,
		b.bindPool,
		b.bindSync,
		b.bindChannel,
		b.bindSvar,
	} {
		if err := bindFn(); err != nil {
			return err
		}
	}
	return nil
}

type binder struct {
	rt     *goja.Runtime
	selfID uint64
	interp *vm.Interpreter
	env    *Env
}

// set is a small helper that installs fn as property name on obj, returning
// obj.Set's error unchanged.
func (b *binder) set(obj *goja.Object, name string, fn func(goja.FunctionCall) goja.Value) error {
	return obj.Set(name, b.rt.ToValue(fn))
}

func (b *binder) namespace(name string) (*goja.Object, error) {
	ns := b.rt.NewObject()
	if err := b.rt.Set(name, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

func argString(call goja.FunctionCall, i int) string {
	return call.Argument(i).String()
}

func argBool(call goja.FunctionCall, i int) bool {
	return call.Argument(i).ToBoolean()
}

func argInt(call goja.FunctionCall, i int) int64 {
	return call.Argument(i).ToInteger()
}
