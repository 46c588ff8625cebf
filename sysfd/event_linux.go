// File: sysfd/event_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package sysfd

import (
	"encoding/binary"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// Event flags.
const (
	EventNonblock  = unix.EFD_NONBLOCK
	EventCloexec   = unix.EFD_CLOEXEC
	EventSemaphore = unix.EFD_SEMAPHORE
)

// Event is an eventfd counter. It is readable while the counter is non-zero.
type Event struct {
	handle
}

// NewEvent creates an eventfd with the given initial counter.
func NewEvent(initial uint32, flags int) (*Event, error) {
	fd, err := unix.Eventfd(uint(initial), flags)
	if err != nil {
		return nil, api.SyscallError("eventfd", err)
	}
	return &Event{handle: handle{fd: fd}}, nil
}

// Read returns and resets the counter (or decrements it by one in
// semaphore mode).
func (e *Event) Read() (uint64, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	var buf [8]byte
	if _, err := unix.Read(e.fd, buf[:]); err != nil {
		return 0, api.SyscallError("read", err)
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}

// Write adds n to the counter.
func (e *Event) Write(n uint64) error {
	if err := e.check(); err != nil {
		return err
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], n)
	_, err := unix.Write(e.fd, buf[:])
	return api.SyscallError("write", err)
}

// Close releases the descriptor.
func (e *Event) Close() error { return e.close("close") }
