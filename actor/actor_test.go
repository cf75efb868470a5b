package actor

import (
	"testing"
	"time"

	"github.com/joeycumines/go-scriptthread/scripterr"
	"github.com/stretchr/testify/require"
)

func mustSpawn(t *testing.T, r *Registry, opts ...Option) uint64 {
	t.Helper()
	id, err := r.Spawn(opts...)
	require.NoError(t, err)
	return id
}

func TestSendSyncRoundTrip(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)
	b := mustSpawn(t, r)

	result, errCode, errInfo, err := r.SendSync(a, b, "2 + 3")
	require.NoError(t, err)
	require.Empty(t, errCode)
	require.Empty(t, errInfo)
	require.Equal(t, "5", result)
}

func TestSendSyncInlineToSelf(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)

	result, _, _, err := r.SendSync(a, a, "7 * 6")
	require.NoError(t, err)
	require.Equal(t, "42", result)
}

func TestSendSyncInvalidTarget(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)

	_, _, _, err := r.SendSync(a, 9999, "1")
	require.ErrorIs(t, err, scripterr.ErrInvalidTarget)
}

func TestSendSyncPropagatesScriptError(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)
	b := mustSpawn(t, r)

	_, errCode, errInfo, err := r.SendSync(a, b, "this is not valid javascript !!!")
	require.Error(t, err)
	require.Equal(t, "EVAL", errCode)
	require.NotEmpty(t, errInfo)
}

func TestSendAsyncWithCallback(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)
	b := mustSpawn(t, r)
	observer := mustSpawn(t, r)

	require.NoError(t, r.SendAsyncWithCallback(a, b, "7 * 6", "v"))

	require.Eventually(t, func() bool {
		result, _, _, err := r.SendSync(observer, a, "typeof v !== 'undefined' ? v : 'pending'")
		return err == nil && result == "42"
	}, 2*time.Second, time.Millisecond)
}

// TestSendAsyncWithCallbackHonorsUnwindOnError covers the gap where a
// target configured with WithUnwindOnError(true) didn't unwind on a
// failure that arrived via SendAsyncWithCallback's target-side job
// closure, because that closure never routed through reportErrorFor.
func TestSendAsyncWithCallbackHonorsUnwindOnError(t *testing.T) {
	r := New()
	origin := mustSpawn(t, r)
	target := mustSpawn(t, r, WithUnwindOnError(true))

	require.NoError(t, r.SendAsyncWithCallback(origin, target, "this is not valid javascript !!!", "v"))

	require.Eventually(t, func() bool {
		r.mu.Lock()
		_, ok := r.lookupLocked(target)
		r.mu.Unlock()
		return !ok
	}, 2*time.Second, time.Millisecond, "target should have unwound after the failed callback-send job")
}

// TestWorkerMainHonorsUnwindOnErrorOnInitFailure covers the bootstrap
// init-script failure path: it must route through reportErrorFor exactly
// like every other asynchronously-evaluated event, so UnwindOnError
// applies to it too.
func TestWorkerMainHonorsUnwindOnErrorOnInitFailure(t *testing.T) {
	r := New()
	id, err := r.Spawn(WithUnwindOnError(true), WithInitScript("this is not valid javascript !!!"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		r.mu.Lock()
		_, ok := r.lookupLocked(id)
		r.mu.Unlock()
		return !ok
	}, 2*time.Second, time.Millisecond, "actor should have unwound after its init script failed")
}

// TestDeathUnblocksSyncWaiter exercises the death walk directly: a source
// blocked in waitSlot on a ticket destined for a worker that then "dies"
// (completeDeadWorker is what runLoop calls once a worker's mailbox.Loop
// actually returns) must unblock with a synthetic TargetDied outcome so a
// dead target never leaves its waiters blocked forever.
func TestDeathUnblocksSyncWaiter(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)
	b := mustSpawn(t, r)

	r.mu.Lock()
	ticket := r.allocTicket()
	r.slots[ticket] = &slot{ticket: ticket, source: a, dest: b}
	r.mu.Unlock()

	resultCh := make(chan *slot, 1)
	go func() { resultCh <- r.waitSlot(ticket) }()

	time.Sleep(20 * time.Millisecond)
	r.mu.Lock()
	r.completeDeadWorker(b)
	r.mu.Unlock()

	select {
	case s := <-resultCh:
		require.NotNil(t, s)
		require.Equal(t, codeTargetDied, s.code)
		require.Equal(t, (&scripterr.TargetDied{TargetID: b}).Error(), s.result)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked waiter was never unblocked by peer death")
	}
}

func TestReservationInvariant(t *testing.T) {
	r := New()
	a := mustSpawn(t, r)

	n, err := r.Reserve(a)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.True(t, r.Exists(a))

	n, err = r.Release(a)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.True(t, r.Exists(a))

	n, err = r.Release(a)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	require.Eventually(t, func() bool { return !r.Exists(a) }, time.Second, time.Millisecond)
}
