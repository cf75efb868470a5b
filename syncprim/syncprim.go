// Package syncprim implements the exclusive, recursive, and reader/writer
// mutexes and the condition variable, registered in a single process-wide
// handle.Registry: handles are tagged single-character strings ("m", "r",
// "w", "c") generated by handle.Registry.Register.
package syncprim

import (
	"github.com/joeycumines/go-scriptthread/handle"
)

// Kind identifies which of the four primitive classes a handle names.
type Kind = handle.Tag

// The four primitive kinds.
const (
	KindMutex     Kind = 'm' // exclusive mutex
	KindRecursive Kind = 'r' // recursive mutex
	KindRW        Kind = 'w' // reader/writer mutex
	KindCond      Kind = 'c' // condition variable
)

// primitive is implemented by every registerable type in this package, so
// operations can type-assert a resolved handle and report
// scripterr.ErrWrongMutexType on mismatch.
type primitive interface {
	kind() Kind
}

// Table is the process-wide sync-handle table: a single process-wide map
// guarded by one mutex. A single Table is normally shared by every actor in
// a process. Table itself holds no lock beyond the one inside
// handle.Registry — it never holds a lock across user work on a resolved
// primitive.
type Table struct {
	reg *handle.Registry[primitive]
}

// NewTable constructs an empty Table.
func NewTable() *Table {
	return &Table{reg: handle.New[primitive]()}
}

func (t *Table) register(k Kind, p primitive) string {
	return t.reg.Register(k, p)
}

// resolveAs resolves h and asserts it is of type P, returning
// scripterr.ErrWrongMutexType (via handleWrongTypeError, which unwraps to
// it) if the handle exists but names something else.
func resolveAs[P primitive](t *Table, h string) (P, error) {
	var zero P
	p, err := t.reg.Resolve(h)
	if err != nil {
		return zero, err
	}
	typed, ok := p.(P)
	if !ok {
		return zero, &handleWrongTypeError{handle: h}
	}
	return typed, nil
}

// Destroy unregisters h unconditionally. Destroying an unknown handle is a
// no-op, matching handle.Registry.Unregister.
func (t *Table) Destroy(h string) {
	t.reg.Unregister(h)
}
