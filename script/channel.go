package script

import (
	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/vm"
)

// bindChannel installs a minimal `channel` namespace: scripts need some way
// to mint and inspect the channel objects that `thread transfer` moves
// between actors. create/shared/registered are the surface; transfer
// itself lives under thread (threadTransfer).
func (b *binder) bindChannel() error {
	ns, err := b.namespace("channel")
	if err != nil {
		return err
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"create":     b.channelCreate,
		"shared":     b.channelShared,
		"registered": b.channelRegistered,
	} {
		if err := b.set(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

// channel.create name -> registers a new, unshared channel under name in
// this actor's own interpreter.
func (b *binder) channelCreate(call goja.FunctionCall) goja.Value {
	name := argString(call, 0)
	ch := vm.NewChannel(name, b.interp)
	if err := b.interp.RegisterChannel(ch); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(name)
}

// channel.shared name ?bool? -> get or set the shared flag.
func (b *binder) channelShared(call goja.FunctionCall) goja.Value {
	name := argString(call, 0)
	ch, ok := b.interp.Channel(name)
	if !ok {
		panic(b.rt.NewTypeError("channel.shared: no such channel %q", name))
	}
	if len(call.Arguments) > 1 {
		ch.SetShared(argBool(call, 1))
		return goja.Undefined()
	}
	return b.rt.ToValue(ch.IsShared())
}

func (b *binder) channelRegistered(call goja.FunctionCall) goja.Value {
	name := argString(call, 0)
	ch, ok := b.interp.Channel(name)
	if !ok {
		return b.rt.ToValue(false)
	}
	return b.rt.ToValue(ch.IsRegistered())
}
