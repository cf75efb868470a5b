// Package actor implements the process-wide actor registry, the
// synchronous/asynchronous send-and-reply engine, and worker lifecycle
// management (spawn, reserve/release, unwind, error reporting). It is
// grounded on the eventloop package for run-state shape (via mailbox,
// which it builds on) and on logiface/go-catrate for its error-reporting
// path.
package actor

import (
	"sync"

	"github.com/joeycumines/go-scriptthread/mailbox"
	"github.com/joeycumines/go-scriptthread/scripterr"
	"github.com/joeycumines/go-scriptthread/vm"
)

// code is a Send outcome: ok, errored, or the target died mid-flight.
type code int

const (
	codeOK code = iota
	codeError
	codeTargetDied
)

// record is one actor's entry in the registry: identity, owned
// interpreter, flags, refcount, and the event-mark backpressure counter.
// Kept as a plain map entry under one mutex rather than an intrusively
// linked node — Go's map already gives O(1) lookup/removal without the
// pointer bookkeeping a doubly-linked list would need.
type record struct {
	id            uint64
	interp        *vm.Interpreter
	stopped       bool
	unwindOnError bool
	refcount      int64
	eventMark     int64
	pendingEvents int64
	errOpts       Options
}

// slot is the in-flight arena entry backing both synchronous Send replies
// and Transfer outcomes: an arena keyed by a monotonic ticket avoids the
// bidirectional pointer invariant a request/reply pair would otherwise
// need to maintain by hand. A transfer additionally carries a channel.
type slot struct {
	ticket    uint64
	source    uint64
	dest      uint64
	done      bool
	code      code
	result    string
	errorCode string
	errorInfo string
	channel   *vm.Channel
}

// Registry is the process-wide owner of the actor list and the in-flight
// slot arena. It is safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	cond       sync.Cond
	records    map[uint64]*record
	nextID     uint64
	slots      map[uint64]*slot
	nextTicket uint64
}

// New constructs an empty Registry.
func New() *Registry {
	r := &Registry{
		records: make(map[uint64]*record),
		slots:   make(map[uint64]*slot),
	}
	r.cond.L = &r.mu
	return r
}

// Exists reports whether id currently names a live, non-Stopped actor.
func (r *Registry) Exists(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return ok && !rec.stopped
}

// Names returns the ids of every live actor, per the script surface's
// `thread names`.
func (r *Registry) Names() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, 0, len(r.records))
	for id, rec := range r.records {
		if !rec.stopped {
			out = append(out, id)
		}
	}
	return out
}

// ConfigureOptions names the fields Configure should touch: a nil field is
// left at its current value, so a caller querying or adjusting a single
// option never clobbers the other.
type ConfigureOptions struct {
	EventMark     *int64
	UnwindOnError *bool
}

// Configure updates the event-mark and/or unwind-on-error flags on a live
// actor, touching only the fields named in opts.
func (r *Registry) Configure(id uint64, opts ConfigureOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.stopped {
		return scripterr.ErrInvalidTarget
	}
	if opts.EventMark != nil {
		rec.eventMark = *opts.EventMark
	}
	if opts.UnwindOnError != nil {
		rec.unwindOnError = *opts.UnwindOnError
	}
	return nil
}

// GetConfig reports a live actor's current event-mark and unwind-on-error
// settings, for thread.configure's no-argument query mode.
func (r *Registry) GetConfig(id uint64) (eventMark int64, unwindOnError bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.stopped {
		return 0, false, scripterr.ErrInvalidTarget
	}
	return rec.eventMark, rec.unwindOnError, nil
}

// SetErrorHandler implements the script surface's `errorproc` verb: names a
// designated error-handler worker and script for id's future async-job
// failures, overriding whatever WithErrorHandler configured at Spawn time.
func (r *Registry) SetErrorHandler(id uint64, opt Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		return scripterr.ErrInvalidTarget
	}
	opt(&rec.errOpts)
	return nil
}

func (r *Registry) lookupLocked(id uint64) (*record, bool) {
	rec, ok := r.records[id]
	if !ok || rec.stopped {
		return nil, false
	}
	return rec, true
}

// interpreterOf returns the vm.Interpreter for a live actor, used by the
// script package to run operations against a specific actor's runtime.
func (r *Registry) interpreterOf(id uint64) (*vm.Interpreter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.lookupLocked(id)
	if !ok {
		return nil, scripterr.ErrInvalidTarget
	}
	return rec.interp, nil
}

// Interpreter exposes interpreterOf for callers outside the package (the
// script binding layer).
func (r *Registry) Interpreter(id uint64) (*vm.Interpreter, error) {
	return r.interpreterOf(id)
}

// Loop exposes an actor's mailbox.Loop for spawning its run goroutine.
func (r *Registry) Loop(id uint64) (*mailbox.Loop, error) {
	in, err := r.interpreterOf(id)
	if err != nil {
		return nil, err
	}
	return in.Loop, nil
}

func (r *Registry) allocTicket() uint64 {
	r.nextTicket++
	return r.nextTicket
}

// completeDeadWorker is the death walk: called with the registry lock
// held, once for the exiting worker's id.
// Slots sourced from id are freed (no one is waiting); slots destined for
// id are completed with a synthetic TargetDied outcome so the blocked
// source unblocks. Transfer slots are completed the same way; Transfer
// itself then splices the channel back into the still-alive source.
func (r *Registry) completeDeadWorker(id uint64) {
	for ticket, s := range r.slots {
		switch {
		case s.source == id:
			delete(r.slots, ticket)
		case s.dest == id && !s.done:
			s.done = true
			s.code = codeTargetDied
			s.result = (&scripterr.TargetDied{TargetID: id}).Error()
		}
	}
	r.cond.Broadcast()
}

// waitSlot blocks the caller, under the registry lock, until ticket's slot
// is marked done (either by the target completing the job or by the death
// walk synthesizing a TargetDied outcome). Send itself has no timeout —
// only the condition-variable waits in syncprim accept one.
func (r *Registry) waitSlot(ticket uint64) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		s, ok := r.slots[ticket]
		if !ok {
			return nil
		}
		if s.done {
			delete(r.slots, ticket)
			return s
		}
		r.cond.Wait()
	}
}
