// File: sysfd/event_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package sysfd

import (
	"encoding/binary"
	"errors"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// Event flags. Semaphore mode has no pipe equivalent and is ignored.
const (
	EventNonblock  = 1 << 0
	EventCloexec   = 1 << 1
	EventSemaphore = 1 << 2
)

// Event emulates an eventfd counter with a pipe: Fd is the read end and
// is readable while writes are pending.
type Event struct {
	handle
	wfd int
}

// NewEvent creates the pipe pair. A non-zero initial value is written
// immediately.
func NewEvent(initial uint32, flags int) (*Event, error) {
	p := make([]int, 2)
	if err := unix.Pipe(p); err != nil {
		return nil, api.SyscallError("pipe", err)
	}
	e := &Event{handle: handle{fd: p[0]}, wfd: p[1]}
	if err := e.configure(flags); err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		return nil, err
	}
	if initial != 0 {
		if err := e.Write(uint64(initial)); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *Event) configure(flags int) error {
	for _, fd := range []int{e.fd, e.wfd} {
		if flags&EventNonblock != 0 {
			if err := unix.SetNonblock(fd, true); err != nil {
				return api.SyscallError("fcntl", err)
			}
		}
		if flags&EventCloexec != 0 {
			unix.CloseOnExec(fd)
		}
	}
	return nil
}

// Read drains pending writes and returns their sum.
func (e *Event) Read() (uint64, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	var (
		buf [64]byte
		sum uint64
		got bool
	)
	for {
		n, err := unix.Read(e.fd, buf[:])
		if err != nil {
			if got && errors.Is(err, unix.EAGAIN) {
				return sum, nil
			}
			return sum, api.SyscallError("read", err)
		}
		for i := 0; i+8 <= n; i += 8 {
			sum += binary.NativeEndian.Uint64(buf[i:])
		}
		got = true
		if n < len(buf) {
			return sum, nil
		}
	}
}

// Write adds n to the pending sum.
func (e *Event) Write(n uint64) error {
	if err := e.check(); err != nil {
		return err
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], n)
	_, err := unix.Write(e.wfd, buf[:])
	return api.SyscallError("write", err)
}

// Close releases both ends of the pipe.
func (e *Event) Close() error {
	err := e.close("close")
	if errors.Is(err, api.ErrClosed) {
		return err
	}
	if werr := unix.Close(e.wfd); err == nil && werr != nil {
		err = api.SyscallError("close", werr)
	}
	return err
}
