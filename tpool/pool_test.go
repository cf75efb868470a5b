package tpool

import (
	"context"
	"testing"
	"time"

	"github.com/joeycumines/go-scriptthread/scripterr"
	"github.com/stretchr/testify/require"
)

// TestPoolDetachedJobsThenRelease covers: a pool
// with min=max=2 workers runs 4 detached jobs, and once every reference is
// released the pool tears down and its handle no longer resolves.
func TestPoolDetachedJobsThenRelease(t *testing.T) {
	m := NewManager()
	handle, err := m.Create(2, 2, "", 0)
	require.NoError(t, err)

	p, err := m.Lookup(handle)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, ok, err := p.Post("1 + 1", true)
		require.NoError(t, err)
		require.False(t, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := p.Release(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.True(t, p.TornDown())

	m.Forget(handle)
	_, err = m.Lookup(handle)
	require.Error(t, err)
}

// TestPoolCollectOrdering covers: three
// non-detached jobs are posted and waited on together until all are done;
// the second job is then collected once, and a second collect of the same
// job id fails NoSuchJob.
func TestPoolCollectOrdering(t *testing.T) {
	m := NewManager()
	handle, err := m.Create(1, 2, "", 0)
	require.NoError(t, err)
	p, err := m.Lookup(handle)
	require.NoError(t, err)

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, ok, err := p.Post("String(jobId)", false)
		require.NoError(t, err)
		require.True(t, ok)
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done, pending, err := p.Wait(ctx, ids)
	require.NoError(t, err)
	for len(done) < len(ids) {
		var more []uint64
		more, pending, err = p.Wait(ctx, pending)
		require.NoError(t, err)
		done = append(done, more...)
	}
	require.ElementsMatch(t, ids, done)

	result, err := p.Collect(ids[1])
	require.NoError(t, err)
	require.Equal(t, "OK", result.Code)

	_, err = p.Collect(ids[1])
	require.ErrorIs(t, err, scripterr.ErrNoSuchJob)
}

// TestPoolWaitReturnsImmediatelyWhenAlreadyDone covers the fast path of
// Wait: if a job already completed before Wait was called, it must not
// block on the notification channel at all.
func TestPoolWaitReturnsImmediatelyWhenAlreadyDone(t *testing.T) {
	m := NewManager()
	handle, err := m.Create(1, 1, "", 0)
	require.NoError(t, err)
	p, err := m.Lookup(handle)
	require.NoError(t, err)

	id, ok, err := p.Post("1", false)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, err := p.Collect(id)
		if err != nil {
			return false
		}
		// put it back so Wait still finds a completion record.
		p.mu.Lock()
		p.completion[id] = Result{Code: "OK", Value: "1"}
		p.mu.Unlock()
		return true
	}, 2*time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done, pending, err := p.Wait(ctx, []uint64{id})
	require.NoError(t, err)
	require.Equal(t, []uint64{id}, done)
	require.Empty(t, pending)
}

// TestPoolCollectPendingFails verifies Collect reports NotCompleted for a
// queued-but-unfinished job rather than NoSuchJob.
func TestPoolCollectPendingFails(t *testing.T) {
	m := NewManager()
	handle, err := m.Create(0, 1, "", 0)
	require.NoError(t, err)
	p, err := m.Lookup(handle)
	require.NoError(t, err)

	p.mu.Lock()
	p.queue = append(p.queue, &job{id: 42, script: "1"})
	p.mu.Unlock()

	_, err = p.Collect(42)
	require.ErrorIs(t, err, scripterr.ErrNotCompleted)
}

// TestPoolCollectInFlightFails covers the dequeued-but-still-evaluating
// window: workerLoop pops a job off p.queue before running it, so a job
// that is neither queued nor in the completion map yet must still report
// NotCompleted, not NoSuchJob.
func TestPoolCollectInFlightFails(t *testing.T) {
	m := NewManager()
	handle, err := m.Create(0, 1, "", 0)
	require.NoError(t, err)
	p, err := m.Lookup(handle)
	require.NoError(t, err)

	p.mu.Lock()
	p.inflight[42] = struct{}{}
	p.mu.Unlock()

	_, err = p.Collect(42)
	require.ErrorIs(t, err, scripterr.ErrNotCompleted)
}
