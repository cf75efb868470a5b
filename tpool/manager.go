package tpool

import (
	"fmt"
	"sync"
	"time"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// Manager owns every pool created in a process, addressing them by a
// handle string of the form "tpoolN", in the same tagged-handle style
// handle.Registry uses elsewhere in this module.
type Manager struct {
	mu       sync.Mutex
	pools    map[string]*Pool
	nextPool uint64
}

// NewManager returns an empty pool manager.
func NewManager() *Manager {
	return &Manager{pools: make(map[string]*Pool)}
}

// Create allocates a handle,
// pre-spawns minWorkers idle workers (running initScript in each, if set),
// and registers the pool for later lookup by handle.
func (m *Manager) Create(minWorkers, maxWorkers int, initScript string, idleTimeout time.Duration) (string, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if minWorkers > maxWorkers {
		minWorkers = maxWorkers
	}

	m.mu.Lock()
	m.nextPool++
	handle := fmt.Sprintf("tpool%d", m.nextPool)
	p := newPool(handle, minWorkers, maxWorkers, initScript, idleTimeout)
	m.pools[handle] = p
	m.mu.Unlock()

	return handle, nil
}

// Lookup resolves a pool handle to its Pool, failing with
// scripterr.ErrInvalidTarget (wrapped in a scripterr.HandleError) on a miss.
func (m *Manager) Lookup(handle string) (*Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[handle]
	if !ok {
		return nil, &scripterr.HandleError{Handle: handle, Cause: scripterr.ErrInvalidTarget}
	}
	return p, nil
}

// Forget removes handle from the manager's table; callers are expected to
// have already torn the pool down via Pool.Release.
func (m *Manager) Forget(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pools, handle)
}

// Names returns every currently registered pool handle.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.pools))
	for h := range m.pools {
		names = append(names, h)
	}
	return names
}
