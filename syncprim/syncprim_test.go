package syncprim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutexLockUnlock(t *testing.T) {
	tbl := NewTable()
	h := tbl.CreateMutex()

	require.NoError(t, tbl.Lock(h))
	done := make(chan struct{})
	go func() {
		require.NoError(t, tbl.Lock(h))
		close(done)
		require.NoError(t, tbl.Unlock(h))
	}()

	select {
	case <-done:
		t.Fatal("second Lock succeeded while first holder had not unlocked")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, tbl.Unlock(h))
	<-done
}

func TestRecursiveMutexDepth(t *testing.T) {
	tbl := NewTable()
	h := tbl.CreateRecursiveMutex()
	owner := "actor-1"

	require.NoError(t, tbl.LockRecursive(h, owner))
	require.NoError(t, tbl.LockRecursive(h, owner))
	require.NoError(t, tbl.LockRecursive(h, owner))

	depth, err := tbl.RecursiveDepth(h, owner)
	require.NoError(t, err)
	require.Equal(t, 3, depth)

	otherAcquired := make(chan struct{})
	go func() {
		require.NoError(t, tbl.LockRecursive(h, "actor-2"))
		close(otherAcquired)
	}()

	require.NoError(t, tbl.UnlockRecursive(h, owner))
	require.NoError(t, tbl.UnlockRecursive(h, owner))

	select {
	case <-otherAcquired:
		t.Fatal("other owner acquired before depth reached zero")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, tbl.UnlockRecursive(h, owner))
	<-otherAcquired
}

func TestRWMutexWriterPreference(t *testing.T) {
	tbl := NewTable()
	h := tbl.CreateRWMutex()

	require.NoError(t, tbl.RLock(h))
	require.NoError(t, tbl.RLock(h))

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	writerReady := make(chan struct{})
	go func() {
		close(writerReady)
		require.NoError(t, tbl.WLock(h))
		record("writer")
		require.NoError(t, tbl.RWUnlock(h))
	}()
	<-writerReady
	time.Sleep(10 * time.Millisecond) // let the writer register as waiting

	thirdReaderDone := make(chan struct{})
	go func() {
		require.NoError(t, tbl.RLock(h))
		record("reader3")
		require.NoError(t, tbl.RWUnlock(h))
		close(thirdReaderDone)
	}()
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, tbl.RWUnlock(h))
	require.NoError(t, tbl.RWUnlock(h))

	<-thirdReaderDone
	require.Equal(t, []string{"writer", "reader3"}, order)
}

func TestCondWaitNotify(t *testing.T) {
	tbl := NewTable()
	m := tbl.CreateMutex()
	c := tbl.CreateCond()

	require.NoError(t, tbl.Lock(m))

	woke := make(chan struct{})
	go func() {
		require.NoError(t, tbl.Lock(m))
		require.NoError(t, tbl.Wait(context.Background(), c, m, 0))
		close(woke)
		require.NoError(t, tbl.Unlock(m))
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tbl.Unlock(m))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tbl.Notify(c))
	<-woke
}

func TestCondWaitMutexNeverLocked(t *testing.T) {
	tbl := NewTable()
	m := tbl.CreateMutex()
	c := tbl.CreateCond()

	err := tbl.Wait(context.Background(), c, m, time.Millisecond)
	require.Error(t, err)
}

func TestCondWaitTimeout(t *testing.T) {
	tbl := NewTable()
	m := tbl.CreateMutex()
	c := tbl.CreateCond()

	require.NoError(t, tbl.Lock(m))
	require.NoError(t, tbl.Unlock(m))
	require.NoError(t, tbl.Lock(m))

	err := tbl.Wait(context.Background(), c, m, 10*time.Millisecond)
	require.Error(t, err)
	require.NoError(t, tbl.Unlock(m))
}

func TestWrongMutexType(t *testing.T) {
	tbl := NewTable()
	rw := tbl.CreateRWMutex()
	err := tbl.Lock(rw)
	require.Error(t, err)
}
