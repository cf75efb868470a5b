package syncprim

import (
	"sync"
	"sync/atomic"
)

// Mutex is a classic non-reentrant lock. The zero value of sync.Mutex
// already needs no explicit initialization, so the only bookkeeping here
// is everLocked, which a Cond needs to diagnose ErrMutexNeverLocked.
type Mutex struct {
	mu         sync.Mutex
	locked     atomic.Bool
	everLocked atomic.Bool
}

func (*Mutex) kind() Kind { return KindMutex }

// CreateMutex registers a new exclusive mutex and returns its handle.
func (t *Table) CreateMutex() string {
	return t.register(KindMutex, &Mutex{})
}

// Lock acquires h, an exclusive-mutex handle.
func (t *Table) Lock(h string) error {
	m, err := resolveAs[*Mutex](t, h)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.locked.Store(true)
	m.everLocked.Store(true)
	return nil
}

// Unlock releases h.
func (t *Table) Unlock(h string) error {
	m, err := resolveAs[*Mutex](t, h)
	if err != nil {
		return err
	}
	m.locked.Store(false)
	m.mu.Unlock()
	return nil
}

// resolveMutex is used internally by Cond to validate and manipulate the
// exclusive mutex a wait is performed against.
func (t *Table) resolveMutex(h string) (*Mutex, error) {
	return resolveAs[*Mutex](t, h)
}
