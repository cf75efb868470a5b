package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopFIFO(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	var order []int
	results := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		require.NoError(t, l.Submit(func() { results <- i }))
	}

	for i := 0; i < 3; i++ {
		order = append(order, <-results)
	}
	require.Equal(t, []int{1, 2, 3}, order)

	require.NoError(t, l.Shutdown(context.Background()))
	<-done
}

func TestLoopSubmitAfterShutdownFails(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	require.NoError(t, l.Shutdown(context.Background()))
	<-done

	err := l.Submit(func() {})
	require.ErrorIs(t, err, ErrLoopTerminated)
}

func TestLoopShutdownBeforeRun(t *testing.T) {
	l := New()
	require.NoError(t, l.Shutdown(context.Background()))
	require.Equal(t, StateTerminated, l.State())
}

func TestLoopPumpOnceRunsQueuedJobReentrantly(t *testing.T) {
	l := New()
	var nested []int

	require.NoError(t, l.Submit(func() {
		nested = append(nested, 1)
		require.True(t, l.PumpOnce())
		nested = append(nested, 3)
	}))
	require.NoError(t, l.Submit(func() {
		nested = append(nested, 2)
	}))

	require.True(t, l.PumpOnce())
	require.Equal(t, []int{1, 2, 3}, nested)
	require.False(t, l.PumpOnce())
}

func TestLoopShutdownTimesOut(t *testing.T) {
	l := New()
	ctx := context.Background()
	started := make(chan struct{})
	block := make(chan struct{})
	go func() {
		close(started)
		_ = l.Run(ctx)
	}()
	<-started

	require.NoError(t, l.Submit(func() { <-block }))
	time.Sleep(5 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := l.Shutdown(shutdownCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}
