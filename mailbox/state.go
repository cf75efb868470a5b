package mailbox

import "sync/atomic"

// LoopState is the run state of a Loop, a state machine trimmed to the
// transitions an actor mailbox actually needs (no Sleeping/poll state — a
// mailbox loop blocks on a condvar between jobs rather than polling file
// descriptors).
//
//	StateAwake (0)       -> StateRunning (1)     [Run]
//	StateRunning (1)     -> StateTerminating (2) [Shutdown]
//	StateTerminating (2) -> StateTerminated (3)  [worker loop returns]
type LoopState uint32

const (
	StateAwake LoopState = iota
	StateRunning
	StateTerminating
	StateTerminated
)

func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state holder, grounded on eventloop.FastState —
// simplified to a plain atomic.Uint32 since a mailbox Loop has no hot-path
// poller to keep off a mutex.
type fastState struct {
	v atomic.Uint32
}

func (s *fastState) Load() LoopState { return LoopState(s.v.Load()) }

func (s *fastState) Store(state LoopState) { s.v.Store(uint32(state)) }

func (s *fastState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
