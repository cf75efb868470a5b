// Package scripterr defines the error vocabulary shared by every package in
// go-scriptthread. Errors are concrete types implementing error and Unwrap,
// in the style of go-eventloop's errors.go: sentinel values for conditions
// that carry no extra data, and structs with a Cause field for conditions
// that wrap a lower-level failure.
package scripterr

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no additional payload.
var (
	// ErrInvalidTarget is returned when a Send/Transfer/Reserve/Release
	// names an actor or pool id that does not resolve in the registry.
	ErrInvalidTarget = errors.New("scriptthread: invalid target")

	// ErrNoSuchJob is returned by tpool.Collect when the job id was never
	// posted, or has already been collected.
	ErrNoSuchJob = errors.New("scriptthread: no such job")

	// ErrNotCompleted is returned by tpool.Collect when the job id exists
	// but has not finished evaluating.
	ErrNotCompleted = errors.New("scriptthread: job not completed")

	// ErrWrongMutexType is returned when a handle resolves to a primitive
	// of a different kind than the operation requires (e.g. cond wait
	// against a recursive mutex handle).
	ErrWrongMutexType = errors.New("scriptthread: wrong mutex type")

	// ErrMutexNeverLocked is returned by a condition-variable wait when the
	// supplied mutex handle has never been locked by anyone.
	ErrMutexNeverLocked = errors.New("scriptthread: mutex never locked")

	// ErrChannelExists is returned by Transfer when the target interpreter
	// already has a channel registered under the same name.
	ErrChannelExists = errors.New("scriptthread: channel already exists")

	// ErrChannelNotRegistered is returned by Transfer when the source
	// channel is not registered in the source interpreter.
	ErrChannelNotRegistered = errors.New("scriptthread: channel not registered")

	// ErrChannelShared is returned by Transfer when the source channel is
	// marked shared (Transfer requires exclusive ownership).
	ErrChannelShared = errors.New("scriptthread: channel is shared")

	// ErrNotFound is returned by tsv operations against a missing array or
	// key, outside of "exists" mode.
	ErrNotFound = errors.New("scriptthread: not found")

	// ErrHandleNotFound is returned by handle.Registry.Resolve for an
	// unknown or already-unregistered handle string.
	ErrHandleNotFound = errors.New("scriptthread: handle not found")

	// ErrPoolTornDown is returned by any tpool operation against a pool
	// whose reference count has already dropped to zero.
	ErrPoolTornDown = errors.New("scriptthread: pool torn down")

	// ErrLoopTerminated mirrors go-eventloop's ErrLoopTerminated: returned
	// when Submit is called against a mailbox that has already shut down.
	ErrLoopTerminated = errors.New("scriptthread: mailbox loop terminated")
)

// TargetDied is returned to a synchronous Send caller whose target actor
// exited before producing a result. It is a struct (not a sentinel) because
// it carries the id of the actor that died, useful in logs and tests.
type TargetDied struct {
	TargetID uint64
}

func (e *TargetDied) Error() string {
	return "target thread died"
}

// Is allows errors.Is(err, &TargetDied{}) to match regardless of TargetID,
// matching the convention used by go-eventloop's AggregateError.Is.
func (e *TargetDied) Is(target error) bool {
	var t *TargetDied
	return errors.As(target, &t)
}

// ScriptError wraps an error produced by evaluating script code inside a
// vm.Interpreter, preserving the interpreter's errorCode/errorInfo pair
// alongside the Go error returned by goja.
type ScriptError struct {
	Code  string // errorCode, e.g. "NONE", "EVAL", a user-set value
	Info  string // errorInfo, a human-readable traceback/description
	Cause error
}

func (e *ScriptError) Error() string {
	if e.Info != "" {
		return e.Info
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "script error"
}

func (e *ScriptError) Unwrap() error { return e.Cause }

// HandleError reports a failure resolving or operating on an opaque
// sync-primitive or pool handle, naming the offending handle string.
type HandleError struct {
	Handle string
	Cause  error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("scriptthread: handle %q: %v", e.Handle, e.Cause)
}

func (e *HandleError) Unwrap() error { return e.Cause }
