package syncprim

import (
	"context"
	"sync"
	"time"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// Cond is a thin wrapper: its Wait takes the handle of an
// exclusive Mutex that must already be locked by the caller. Unlike
// sync.Cond, Cond is not bound to a fixed Locker at construction time — each
// Wait call names the mutex to release-and-reacquire, because the script
// surface creates mutex and cond handles independently and pairs them only
// at wait-time.
type Cond struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

func (*Cond) kind() Kind { return KindCond }

// CreateCond registers a new condition variable and returns its handle.
func (t *Table) CreateCond() string {
	return t.register(KindCond, &Cond{})
}

// Wait blocks on cond handle h, releasing mutexHandle for the duration and
// reacquiring it before returning. mutexHandle must name an exclusive Mutex
// that has been locked at least once already, or ErrMutexNeverLocked is
// returned; a timeout of zero waits indefinitely.
func (t *Table) Wait(ctx context.Context, h, mutexHandle string, timeout time.Duration) error {
	c, err := resolveAs[*Cond](t, h)
	if err != nil {
		return err
	}
	m, err := t.resolveMutex(mutexHandle)
	if err != nil {
		return err
	}
	if !m.everLocked.Load() {
		return scripterr.ErrMutexNeverLocked
	}

	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	m.locked.Store(false)
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.locked.Store(true)
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		c.removeWaiter(ch)
		return ctx.Err()
	}
}

// Notify wakes exactly one waiter blocked on h, if any.
func (t *Table) Notify(h string) error {
	c, err := resolveAs[*Cond](t, h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if len(c.waiters) > 0 {
		ch := c.waiters[0]
		c.waiters = c.waiters[1:]
		close(ch)
	}
	c.mu.Unlock()
	return nil
}

// Broadcast wakes every waiter blocked on h.
func (t *Table) Broadcast(h string) error {
	c, err := resolveAs[*Cond](t, h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
	c.mu.Unlock()
	return nil
}

func (c *Cond) removeWaiter(target chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range c.waiters {
		if ch == target {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}
