// Package tpool implements a thread pool: a bounded set of ready workers
// serving a shared job queue with a completion table. Each worker is a
// plain goroutine owning its own goja.Runtime; workers are not actors and
// have no vm.Interpreter or mailbox.Loop. Grounded on go-longpoll for Wait's "pump events
// until signalled" semantics and golang.org/x/sync for worker-count
// bounding (semaphore.Weighted) and teardown waiting (errgroup.Group).
package tpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/scripterr"
	longpoll "github.com/joeycumines/go-longpoll"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool is one thread pool, addressed by its Handle (e.g. "tpool1").
type Pool struct {
	Handle string

	minWorkers  int
	maxWorkers  int
	idleTimeout time.Duration
	initScript  string

	mu         sync.Mutex
	workers    int
	idleWorker int
	refcount   int
	tornDown   bool
	suspended  bool
	nextJobID  uint64
	queue      []*job
	inflight   map[uint64]struct{}
	completion map[uint64]Result
	waiters    []chan struct{}

	sem    *semaphore.Weighted
	eg     *errgroup.Group
	egCtx  context.Context
	cancel context.CancelFunc
}

func newPool(handle string, minWorkers, maxWorkers int, initScript string, idleTimeout time.Duration) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)
	p := &Pool{
		Handle:      handle,
		minWorkers:  minWorkers,
		maxWorkers:  maxWorkers,
		idleTimeout: idleTimeout,
		initScript:  initScript,
		refcount:    1,
		inflight:    make(map[uint64]struct{}),
		completion:  make(map[uint64]Result),
		sem:         semaphore.NewWeighted(int64(maxWorkers)),
		eg:          eg,
		egCtx:       egCtx,
		cancel:      cancel,
	}
	for i := 0; i < minWorkers; i++ {
		p.spawnWorkerLocked()
	}
	return p
}

// spawnWorkerLocked starts one worker goroutine, bounded by sem so the
// pool never exceeds maxWorkers concurrently running workers. Must be
// called with p.mu held.
func (p *Pool) spawnWorkerLocked() {
	if !p.sem.TryAcquire(1) {
		return
	}
	p.workers++
	p.eg.Go(func() error {
		defer p.sem.Release(1)
		rt := goja.New()
		if p.initScript != "" {
			_, _ = rt.RunString(p.initScript)
		}
		p.workerLoop(rt)
		return nil
	})
}

func (p *Pool) workerLoop(rt *goja.Runtime) {
	for {
		p.mu.Lock()
		if p.tornDown {
			p.workers--
			p.mu.Unlock()
			return
		}
		if len(p.queue) == 0 {
			p.idleWorker++
			timedOut := p.waitForWorkLocked()
			p.idleWorker--
			if timedOut && p.tornDown {
				p.workers--
				p.mu.Unlock()
				return
			}
			if timedOut && len(p.queue) == 0 && p.workers > p.minWorkers {
				p.workers--
				p.mu.Unlock()
				return
			}
			if len(p.queue) == 0 {
				p.mu.Unlock()
				continue
			}
		}

		j := p.queue[0]
		p.queue = p.queue[1:]
		if !j.detached {
			p.inflight[j.id] = struct{}{}
		}
		p.mu.Unlock()

		_ = rt.Set("jobId", j.id)
		result := evalScript(rt, j.script)
		if !j.detached {
			p.mu.Lock()
			delete(p.inflight, j.id)
			p.completion[j.id] = result
			p.notifyWaitersLocked()
			p.mu.Unlock()
		}
	}
}

// waitForWorkLocked blocks, with p.mu held, until a job is queued, the pool
// is torn down, or idleTimeout elapses (reporting timedOut=true in the
// latter case). Retires idle workers above minWorkers after idleTimeout,
// using the same waiter-channel pattern as syncprim.Cond,
// since *sync.Cond has no native timeout support.
func (p *Pool) waitForWorkLocked() (timedOut bool) {
	ch := make(chan struct{}, 1)
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	defer p.mu.Lock()

	if p.idleTimeout <= 0 {
		<-ch
		return false
	}
	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()
	select {
	case <-ch:
		return false
	case <-timer.C:
		return true
	}
}

func (p *Pool) notifyWaitersLocked() {
	for _, ch := range p.waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	p.waiters = p.waiters[:0]
}

func evalScript(rt *goja.Runtime, script string) Result {
	v, err := rt.RunString(script)
	if err != nil {
		return Result{Code: "ERROR", ErrorCode: "EVAL", ErrorInfo: err.Error()}
	}
	return Result{Code: "OK", Value: v.String()}
}

// Post spawns a worker if none are idle and
// capacity remains, enqueues the job, and returns its job id (zero, ok=false,
// for a detached post).
func (p *Pool) Post(script string, detached bool) (jobID uint64, ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tornDown {
		return 0, false, scripterr.ErrPoolTornDown
	}
	if p.suspended {
		return 0, false, fmt.Errorf("scriptthread: pool %s is suspended", p.Handle)
	}

	if p.idleWorker == 0 && p.workers < p.maxWorkers {
		p.spawnWorkerLocked()
	}

	j := &job{script: script, detached: detached}
	if !detached {
		p.nextJobID++
		j.id = p.nextJobID
		jobID = j.id
		ok = true
	}
	p.queue = append(p.queue, j)
	p.notifyWaitersLocked()
	return jobID, ok, nil
}

// Wait partitions ids into done/pending by
// the completion map, returning immediately if any are already done;
// otherwise blocks (via go-longpoll, pumping fresh completion
// notifications) until at least one of ids completes.
func (p *Pool) Wait(ctx context.Context, ids []uint64) (done []uint64, pending []uint64, err error) {
	for {
		p.mu.Lock()
		done, pending = nil, nil
		for _, id := range ids {
			if _, ok := p.completion[id]; ok {
				done = append(done, id)
			} else {
				pending = append(pending, id)
			}
		}
		if len(done) > 0 || len(pending) == 0 {
			p.mu.Unlock()
			return done, pending, nil
		}

		ch := make(chan struct{}, 1)
		p.waiters = append(p.waiters, ch)
		p.mu.Unlock()

		waitErr := longpoll.Channel(ctx, &longpoll.ChannelConfig{MinSize: 1, MaxSize: 1, PartialTimeout: 0}, ch, func(struct{}) error {
			return nil
		})
		if waitErr != nil {
			return nil, pending, waitErr
		}
	}
}

// Poll is Wait's non-blocking fast path: it partitions ids into done/pending
// against the current completion map and returns immediately, never
// touching the waiter list. Callers embedded in a single-threaded actor
// loop (script.poolWait) use this instead of Wait, interleaving polls with
// pumping their own mailbox rather than blocking a second goroutine on the
// same loop.
func (p *Pool) Poll(ids []uint64) (done, pending []uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if _, ok := p.completion[id]; ok {
			done = append(done, id)
		} else {
			pending = append(pending, id)
		}
	}
	return done, pending
}

// Collect pops a completed job's result
// from the completion map. Fails NoSuchJob if unknown, NotCompleted if the
// job is still pending (queued, or dequeued and actively being evaluated by
// a worker).
func (p *Pool) Collect(jobID uint64) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.completion[jobID]
	if !ok {
		if _, ok := p.inflight[jobID]; ok {
			return Result{}, scripterr.ErrNotCompleted
		}
		for _, j := range p.queue {
			if j.id == jobID {
				return Result{}, scripterr.ErrNotCompleted
			}
		}
		return Result{}, scripterr.ErrNoSuchJob
	}
	delete(p.completion, jobID)
	return r, nil
}

// Reserve increments the pool's refcount.
func (p *Pool) Reserve() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refcount++
	return p.refcount
}

// Release decrements the pool's refcount; dropping to zero tears the pool
// down: signal all workers, wait for worker-count to reach zero, drain the
// completion map and any pending unprocessed jobs.
func (p *Pool) Release(ctx context.Context) (int, error) {
	p.mu.Lock()
	p.refcount--
	n := p.refcount
	if n > 0 {
		p.mu.Unlock()
		return n, nil
	}
	p.tornDown = true
	p.notifyWaitersLocked()
	p.queue = nil
	p.mu.Unlock()

	p.cancel()
	if err := p.eg.Wait(); err != nil {
		return n, err
	}

	p.mu.Lock()
	p.completion = make(map[uint64]Result)
	p.inflight = make(map[uint64]struct{})
	p.mu.Unlock()
	return n, nil
}

// Suspend stops the pool from accepting new posts without tearing it down.
func (p *Pool) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suspended = true
}

// Resume re-enables Post after Suspend.
func (p *Pool) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suspended = false
}

// TornDown reports whether the pool has been torn down by Release.
func (p *Pool) TornDown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tornDown
}
