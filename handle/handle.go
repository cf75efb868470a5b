// Package handle implements a process-wide opaque-handle registry: a single
// mutex-guarded map from a string handle to an arbitrary registered object,
// with a monotonically increasing counter so a deleted handle string never
// matches a later registration.
//
// The registry is deliberately generic over the stored object type so it
// can back the sync-primitive table (syncprim) without either package
// needing to know about the other's concrete types.
package handle

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// Tag identifies the class of primitive a handle refers to. syncprim
// assigns one tag per primitive kind; handle itself is tag-agnostic.
type Tag byte

// Registry is a process-wide mapping of opaque string handles to objects of
// type T, guarded by a single mutex. The lock is held only across the map
// access itself, never across caller work on a resolved object — callers
// that need to synchronize concurrent use of the resolved object must do so
// themselves (see syncprim, which layers its own locking on top).
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]T
	counter atomic.Uint64
}

// New constructs an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// Register allocates a fresh handle string of the form "<tag>id<counter>"
// and associates it with obj. The counter is monotonic for the lifetime of
// the Registry: a handle string, once unregistered, is never reissued.
func (r *Registry[T]) Register(tag Tag, obj T) string {
	id := r.counter.Add(1)
	h := fmt.Sprintf("%cid%d", tag, id)
	r.mu.Lock()
	r.entries[h] = obj
	r.mu.Unlock()
	return h
}

// Resolve looks up the object registered under handle. It returns
// scripterr.ErrHandleNotFound if handle is unknown or has been
// unregistered.
func (r *Registry[T]) Resolve(h string) (T, error) {
	r.mu.Lock()
	obj, ok := r.entries[h]
	r.mu.Unlock()
	if !ok {
		var zero T
		return zero, &scripterr.HandleError{Handle: h, Cause: scripterr.ErrHandleNotFound}
	}
	return obj, nil
}

// Unregister removes handle from the registry. Unregistering an unknown
// handle is a silent no-op: handles are never reused after deletion, so a
// double-unregister cannot resurrect a stale handle.
func (r *Registry[T]) Unregister(h string) {
	r.mu.Lock()
	delete(r.entries, h)
	r.mu.Unlock()
}

// Len reports the number of live handles. Intended for tests and metrics,
// not for control flow (the count can change the instant it's observed).
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
