package script

import (
	"math/big"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/tsv"
)

// bindSvar installs the shared-variable surface: set/get/exists/incr/
// append/lappend/array .../unset plus the list family, all namespaced
// under `svar` (the store itself is named "tsv" internally, after Tcl's
// Thread package shared-variable command, but the script-visible namespace
// avoids colliding with the `tpool` namespace's similar-looking name).
func (b *binder) bindSvar() error {
	ns, err := b.namespace("svar")
	if err != nil {
		return err
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"get":         b.svarGet,
		"set":         b.svarSet,
		"exists":      b.svarExists,
		"incr":        b.svarIncr,
		"append":      b.svarAppend,
		"lappend":     b.svarLAppend,
		"unset":       b.svarUnset,
		"arraySet":    b.svarArraySet,
		"arrayReset":  b.svarArrayReset,
		"arrayGet":    b.svarArrayGet,
		"arrayNames":  b.svarArrayNames,
		"arraySize":   b.svarArraySize,
		"arrayExists": b.svarArrayExists,
		"lpop":        b.svarLPop,
		"lpush":       b.svarLPush,
		"linsert":     b.svarLInsert,
		"lreplace":    b.svarLReplace,
		"llength":     b.svarLLength,
		"lindex":      b.svarLIndex,
		"lrange":      b.svarLRange,
		"lsearch":     b.svarLSearch,
	} {
		if err := b.set(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func valueToJS(rt *goja.Runtime, v tsv.Value) goja.Value {
	if v.IsList() {
		return rt.ToValue(v.List())
	}
	return rt.ToValue(v.String())
}

func stringArgs(call goja.FunctionCall, from int) []string {
	if len(call.Arguments) <= from {
		return nil
	}
	out := make([]string, 0, len(call.Arguments)-from)
	for _, a := range call.Arguments[from:] {
		out = append(out, a.String())
	}
	return out
}

func (b *binder) svarGet(call goja.FunctionCall) goja.Value {
	v, err := b.env.Store.Get(argString(call, 0), argString(call, 1))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarSet(call goja.FunctionCall) goja.Value {
	name, key := argString(call, 0), argString(call, 1)
	value := tsv.NewScalar(argString(call, 2))
	if err := b.env.Store.Set(name, key, value); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) svarExists(call goja.FunctionCall) goja.Value {
	ok, err := b.env.Store.Exists(argString(call, 0), argString(call, 1))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(ok)
}

func (b *binder) svarIncr(call goja.FunctionCall) goja.Value {
	name, key := argString(call, 0), argString(call, 1)
	by := big.NewRat(1, 1)
	if len(call.Arguments) > 2 {
		if _, ok := by.SetString(argString(call, 2)); !ok {
			panic(b.rt.NewTypeError("incr: invalid numeric increment %q", argString(call, 2)))
		}
	}
	v, err := b.env.Store.Incr(name, key, by)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarAppend(call goja.FunctionCall) goja.Value {
	name, key := argString(call, 0), argString(call, 1)
	v, err := b.env.Store.Append(name, key, stringArgs(call, 2)...)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarLAppend(call goja.FunctionCall) goja.Value {
	name, key := argString(call, 0), argString(call, 1)
	v, err := b.env.Store.LAppend(name, key, stringArgs(call, 2)...)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarUnset(call goja.FunctionCall) goja.Value {
	if err := b.env.Store.Unset(argString(call, 0), argString(call, 1)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) svarArraySet(call goja.FunctionCall) goja.Value {
	if err := b.env.Store.ArraySet(argString(call, 0), stringArgs(call, 1)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) svarArrayReset(call goja.FunctionCall) goja.Value {
	if err := b.env.Store.ArrayReset(argString(call, 0)); err != nil {
		panic(b.rt.NewGoError(err))
	}
	return goja.Undefined()
}

func (b *binder) svarArrayGet(call goja.FunctionCall) goja.Value {
	out, err := b.env.Store.ArrayGet(argString(call, 0))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(out)
}

func (b *binder) svarArrayNames(call goja.FunctionCall) goja.Value {
	out, err := b.env.Store.ArrayNames(argString(call, 0))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(out)
}

func (b *binder) svarArraySize(call goja.FunctionCall) goja.Value {
	n, err := b.env.Store.ArraySize(argString(call, 0))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(n)
}

func (b *binder) svarArrayExists(call goja.FunctionCall) goja.Value {
	return b.rt.ToValue(b.env.Store.ArrayExists(argString(call, 0)))
}

func (b *binder) svarLPop(call goja.FunctionCall) goja.Value {
	s, ok, err := b.env.Store.LPop(argString(call, 0), argString(call, 1), argString(call, 2))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	if !ok {
		return goja.Undefined()
	}
	return b.rt.ToValue(s)
}

func (b *binder) svarLPush(call goja.FunctionCall) goja.Value {
	name, key, idx := argString(call, 0), argString(call, 1), argString(call, 2)
	v, err := b.env.Store.LPush(name, key, idx, stringArgs(call, 3)...)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarLInsert(call goja.FunctionCall) goja.Value {
	name, key, idx := argString(call, 0), argString(call, 1), argString(call, 2)
	v, err := b.env.Store.LInsert(name, key, idx, stringArgs(call, 3)...)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarLReplace(call goja.FunctionCall) goja.Value {
	name, key := argString(call, 0), argString(call, 1)
	first, last := argString(call, 2), argString(call, 3)
	v, err := b.env.Store.LReplace(name, key, first, last, stringArgs(call, 4)...)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return valueToJS(b.rt, v)
}

func (b *binder) svarLLength(call goja.FunctionCall) goja.Value {
	n, err := b.env.Store.LLength(argString(call, 0), argString(call, 1))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(n)
}

func (b *binder) svarLIndex(call goja.FunctionCall) goja.Value {
	s, ok, err := b.env.Store.LIndex(argString(call, 0), argString(call, 1), argString(call, 2))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	if !ok {
		return goja.Undefined()
	}
	return b.rt.ToValue(s)
}

func (b *binder) svarLRange(call goja.FunctionCall) goja.Value {
	out, err := b.env.Store.LRange(argString(call, 0), argString(call, 1), argString(call, 2), argString(call, 3))
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(out)
}

func (b *binder) svarLSearch(call goja.FunctionCall) goja.Value {
	name, key, pattern := argString(call, 0), argString(call, 1), argString(call, 2)
	modeStr := argString(call, 3)
	all := argBool(call, 4)

	mode := tsv.SearchExact
	switch modeStr {
	case "glob":
		mode = tsv.SearchGlob
	case "regex":
		mode = tsv.SearchRegex
	}

	out, err := b.env.Store.LSearch(name, key, pattern, mode, all)
	if err != nil {
		panic(b.rt.NewGoError(err))
	}
	return b.rt.ToValue(out)
}
