//go:build linux

// File: reactor/epoll_reactor_test.go
// Author: momentics <momentics@gmail.com>

package reactor_test

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/reactor"
	"github.com/momentics/hioload-sock/sysfd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestEpollBackend(t *testing.T) {
	m := openMux(t)
	assert.Equal(t, "epoll", m.Backend())
	assert.GreaterOrEqual(t, m.Fd(), 0)
}

func TestEventFDReadiness(t *testing.T) {
	m := openMux(t)
	ev, err := sysfd.NewEvent(0, sysfd.EventNonblock)
	require.NoError(t, err)
	defer ev.Close()

	require.NoError(t, m.Add(ev.Fd(), api.Readable, api.U64(42)))
	events, err := m.Poll(4, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, ev.Write(1))
	events, err = m.Poll(4, time.Second, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	v, ok := events[0].Data.AsU32()
	require.True(t, ok)
	assert.Equal(t, uint32(42), v)
}

func TestTimerFDExpiry(t *testing.T) {
	m := openMux(t)
	tm, err := sysfd.NewTimer(sysfd.ClockMonotonic, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	require.NoError(t, err)
	defer tm.Close()

	require.NoError(t, m.Add(tm.Fd(), api.Readable, api.FD(int32(tm.Fd()))))
	_, _, err = tm.Set(5*time.Millisecond, 0)
	require.NoError(t, err)

	events, err := m.Poll(4, 2*time.Second, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	fd, ok := events[0].Data.AsFD()
	require.True(t, ok)
	assert.Equal(t, int32(tm.Fd()), fd)

	n, err := tm.Expirations()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestPollWithSignalMask(t *testing.T) {
	m := openMux(t)
	ev, err := sysfd.NewEvent(1, sysfd.EventNonblock)
	require.NoError(t, err)
	defer ev.Close()
	require.NoError(t, m.Add(ev.Fd(), api.Readable, api.U64(9)))

	mask := sysfd.NewSignalSet(syscall.SIGUSR1, syscall.SIGUSR2)
	events, err := m.Poll(4, time.Second, mask)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, api.U64(9), events[0].Data)
}

func TestSignalMaskHeldDuringWait(t *testing.T) {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	m := openMux(t)
	r, _ := pipe(t)
	require.NoError(t, m.Add(r, api.Readable, api.U64(1)))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	pid, tid := unix.Getpid(), unix.Gettid()

	wait := func(mask api.SignalMask) time.Duration {
		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = unix.Tgkill(pid, tid, unix.SIGUSR1)
		}()
		start := time.Now()
		events, err := m.Poll(1, 400*time.Millisecond, mask)
		require.NoError(t, err)
		assert.Empty(t, events)
		return time.Since(start)
	}
	received := func() {
		select {
		case <-sigs:
		case <-time.After(time.Second):
			t.Fatal("SIGUSR1 not delivered")
		}
	}

	// unmasked, the signal interrupts the wait
	assert.Less(t, wait(nil), 300*time.Millisecond)
	received()

	// masked, the signal stays pending until the wait times out
	mask := sysfd.NewSignalSet(syscall.SIGUSR1, syscall.SIGURG)
	assert.GreaterOrEqual(t, wait(mask), 350*time.Millisecond)
	received()
}

func TestEdgeTriggeredReportsOnce(t *testing.T) {
	m := openMux(t)
	ev, err := sysfd.NewEvent(0, sysfd.EventNonblock)
	require.NoError(t, err)
	defer ev.Close()

	require.NoError(t, m.Add(ev.Fd(), api.Readable|api.EdgeTriggered, api.U64(1)))
	require.NoError(t, ev.Write(1))

	events, err := m.Poll(4, time.Second, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = m.Poll(4, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTimeoutRoundsDown(t *testing.T) {
	m := openMux(t)
	r, _ := pipe(t)
	require.NoError(t, m.Add(r, api.Readable, api.U64(1)))

	// 900µs rounds down to a non-blocking wait
	start := time.Now()
	events, err := m.Poll(1, 900*time.Microsecond, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDeferChangesIgnoredOnEpoll(t *testing.T) {
	m, err := reactor.Open(reactor.DeferChanges)
	require.NoError(t, err)
	defer m.Close()
	r, _ := pipe(t)
	require.NoError(t, m.Add(r, api.Readable, api.U64(1)))
	assert.ErrorIs(t, m.Add(r, api.Readable, api.U64(1)), api.ErrAlreadyWatched)
}
