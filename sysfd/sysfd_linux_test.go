// File: sysfd/sysfd_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package sysfd_test

import (
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sysfd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSigsetLayout(t *testing.T) {
	set := sysfd.NewSignalSet(syscall.SIGHUP, syscall.SIGUSR1).Sigset()
	want := uint64(1)<<(uint(syscall.SIGHUP)-1) | uint64(1)<<(uint(syscall.SIGUSR1)-1)
	assert.EqualValues(t, want, uint64(set.Val[0]))
}

func TestBlockReturnsPreviousMask(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	set := sysfd.NewSignalSet(syscall.SIGUSR2)
	old, err := set.Block(sysfd.BlockAdd)
	require.NoError(t, err)
	defer old.Block(sysfd.SetMask)

	cur, err := sysfd.SignalSet{}.Block(sysfd.BlockAdd)
	require.NoError(t, err)
	assert.True(t, cur.Contains(syscall.SIGUSR2))
}

func TestSignalFDLifecycle(t *testing.T) {
	sfd, err := sysfd.NewSignalFD(sysfd.NewSignalSet(syscall.SIGUSR1), unix.SFD_NONBLOCK|unix.SFD_CLOEXEC)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sfd.Fd(), 0)

	// nothing pending
	_, err = sfd.Next()
	assert.ErrorIs(t, err, unix.EAGAIN)
	assert.ErrorIs(t, err, api.ErrSystemCallFailed)

	require.NoError(t, sfd.Reset(sysfd.NewSignalSet(syscall.SIGUSR2)))
	require.NoError(t, sfd.Close())
	assert.ErrorIs(t, sfd.Close(), api.ErrClosed)
	assert.Equal(t, -1, sfd.Fd())
}

func TestTimerExpires(t *testing.T) {
	tm, err := sysfd.NewTimer(sysfd.ClockMonotonic, unix.TFD_CLOEXEC)
	require.NoError(t, err)
	defer tm.Close()

	prev, _, err := tm.Set(10*time.Millisecond, 0)
	require.NoError(t, err)
	assert.Zero(t, prev)

	remaining, interval, err := tm.Get()
	require.NoError(t, err)
	assert.Greater(t, remaining, time.Duration(0))
	assert.Zero(t, interval)

	n, err := tm.Expirations()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestTimerUnset(t *testing.T) {
	tm, err := sysfd.NewTimer(sysfd.ClockMonotonic, unix.TFD_NONBLOCK)
	require.NoError(t, err)
	defer tm.Close()

	_, _, err = tm.Set(time.Hour, time.Minute)
	require.NoError(t, err)
	prev, interval, err := tm.Unset()
	require.NoError(t, err)
	assert.Greater(t, prev, 59*time.Minute)
	assert.Equal(t, time.Minute, interval)

	_, err = tm.Expirations()
	assert.ErrorIs(t, err, unix.EAGAIN)
}

func TestEventCounter(t *testing.T) {
	ev, err := sysfd.NewEvent(0, sysfd.EventNonblock|sysfd.EventCloexec)
	require.NoError(t, err)
	defer ev.Close()

	_, err = ev.Read()
	assert.ErrorIs(t, err, unix.EAGAIN)

	require.NoError(t, ev.Write(3))
	require.NoError(t, ev.Write(4))
	n, err := ev.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestEventSemaphore(t *testing.T) {
	ev, err := sysfd.NewEvent(2, sysfd.EventNonblock|sysfd.EventSemaphore)
	require.NoError(t, err)
	defer ev.Close()

	for i := 0; i < 2; i++ {
		n, err := ev.Read()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), n)
	}
	_, err = ev.Read()
	assert.ErrorIs(t, err, unix.EAGAIN)
}
