// Package vm adapts a goja.Runtime plus a mailbox.Loop into a single
// runnable unit: an interpreter with Eval, variables, a result slot,
// errorCode/errorInfo, channel objects, and an event loop. It is grounded
// on the goja-eventloop.Adapter, which performs the analogous job of
// binding one goja.Runtime onto one event loop and exposing a Bind-style
// registration surface — generalized here from "bind Web Platform globals"
// to "carry the actor result-slot fields and own the channel table".
package vm

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/mailbox"
)

// Interpreter is one actor's owned scripting engine: one goja.Runtime, one
// mailbox.Loop, and the result-slot fields a Tcl-style interpreter would
// assign to "the target's interpreter" (errorCode/errorInfo/result
// string).
//
// Interpreter has no safe-interpreter variant: no sandboxing primitive
// exists at the goja.Runtime level that this package could enforce without
// also restricting the embedding host's own globals, so thread commands are
// available identically regardless of how the embedding host constructed
// its Runtime.
type Interpreter struct {
	Runtime *goja.Runtime
	Loop    *mailbox.Loop

	mu        sync.Mutex
	result    string
	errorCode string
	errorInfo string

	channels map[string]*Channel
}

// New wraps rt and loop into an Interpreter. rt and loop are not retained
// elsewhere by this package's callers — each actor owns exactly one of
// each, and neither is ever touched by any goroutine but the one running
// that actor's Loop.
func New(rt *goja.Runtime, loop *mailbox.Loop) *Interpreter {
	return &Interpreter{
		Runtime:  rt,
		Loop:     loop,
		channels: make(map[string]*Channel),
	}
}

// Eval runs script on the Interpreter's own Runtime. Callers are
// responsible for ensuring this happens on the goroutine running the
// Interpreter's Loop — vm does not itself enforce that, the same way
// goja.Runtime is not safe for concurrent use from multiple goroutines.
func (in *Interpreter) Eval(script string) (goja.Value, error) {
	return in.Runtime.RunString(script)
}

// SetResult stores the result string carried back to a synchronous Send
// caller.
func (in *Interpreter) SetResult(s string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.result = s
}

// Result returns the last value SetResult stored.
func (in *Interpreter) Result() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.result
}

// SetError stores errorCode/errorInfo, mirroring the Tcl interpreter's
// globals of the same name, propagated on failed Sends.
func (in *Interpreter) SetError(code, info string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.errorCode = code
	in.errorInfo = info
}

// ErrorCode returns the last value SetError stored for errorCode.
func (in *Interpreter) ErrorCode() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.errorCode
}

// ErrorInfo returns the last value SetError stored for errorInfo.
func (in *Interpreter) ErrorInfo() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.errorInfo
}

// RegisterChannel adds ch to this Interpreter's channel table under its
// Name.
func (in *Interpreter) RegisterChannel(ch *Channel) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.channels[ch.Name]; ok {
		return fmt.Errorf("channel %s already registered", ch.Name)
	}
	in.channels[ch.Name] = ch
	return nil
}

// UnregisterChannel removes a channel by name.
func (in *Interpreter) UnregisterChannel(name string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.channels, name)
}

// Channel looks up a registered channel by name.
func (in *Interpreter) Channel(name string) (*Channel, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	ch, ok := in.channels[name]
	return ch, ok
}
