// File: sysfd/timer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package sysfd

import (
	"encoding/binary"
	"time"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// Clock selects the clock a Timer counts against.
type Clock int

const (
	ClockRealtime  Clock = unix.CLOCK_REALTIME
	ClockMonotonic Clock = unix.CLOCK_MONOTONIC
	ClockBoottime  Clock = unix.CLOCK_BOOTTIME
)

// Timer is a timerfd: it becomes readable on expiry.
type Timer struct {
	handle
}

// NewTimer creates a disarmed timer. flags accepts unix.TFD_NONBLOCK and
// unix.TFD_CLOEXEC.
func NewTimer(clock Clock, flags int) (*Timer, error) {
	fd, err := unix.TimerfdCreate(int(clock), flags)
	if err != nil {
		return nil, api.SyscallError("timerfd_create", err)
	}
	return &Timer{handle: handle{fd: fd}}, nil
}

// Set arms the timer to fire after initial, then every interval (zero
// for a one-shot timer). It returns the previous settings.
func (t *Timer) Set(initial, interval time.Duration) (prevInitial, prevInterval time.Duration, err error) {
	return t.settime(0, initial, interval)
}

// SetAbsolute arms the timer to fire at the given clock time.
func (t *Timer) SetAbsolute(at time.Time, interval time.Duration) (time.Duration, time.Duration, error) {
	return t.settime(unix.TFD_TIMER_ABSTIME, time.Duration(at.UnixNano()), interval)
}

// Unset disarms the timer and returns the previous settings.
func (t *Timer) Unset() (time.Duration, time.Duration, error) {
	return t.settime(0, 0, 0)
}

func (t *Timer) settime(flags int, initial, interval time.Duration) (time.Duration, time.Duration, error) {
	if err := t.check(); err != nil {
		return 0, 0, err
	}
	next := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(int64(initial)),
		Interval: unix.NsecToTimespec(int64(interval)),
	}
	var prev unix.ItimerSpec
	if err := unix.TimerfdSettime(t.fd, flags, &next, &prev); err != nil {
		return 0, 0, api.SyscallError("timerfd_settime", err)
	}
	return time.Duration(prev.Value.Nano()), time.Duration(prev.Interval.Nano()), nil
}

// Get returns the time until the next expiry and the interval.
func (t *Timer) Get() (time.Duration, time.Duration, error) {
	if err := t.check(); err != nil {
		return 0, 0, err
	}
	var cur unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &cur); err != nil {
		return 0, 0, api.SyscallError("timerfd_gettime", err)
	}
	return time.Duration(cur.Value.Nano()), time.Duration(cur.Interval.Nano()), nil
}

// Expirations reads the number of expiries since the last read.
func (t *Timer) Expirations() (uint64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	var buf [8]byte
	if _, err := unix.Read(t.fd, buf[:]); err != nil {
		return 0, api.SyscallError("read", err)
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}

// Close releases the descriptor.
func (t *Timer) Close() error { return t.close("close") }
