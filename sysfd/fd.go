// File: sysfd/fd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package sysfd

import (
	"sync/atomic"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// handle is a descriptor that can be closed once.
type handle struct {
	fd     int
	closed atomic.Bool
}

// Fd returns the underlying descriptor, or -1 after Close.
func (h *handle) Fd() int {
	if h.closed.Load() {
		return -1
	}
	return h.fd
}

func (h *handle) close(op string) error {
	if !h.closed.CompareAndSwap(false, true) {
		return api.ErrClosed
	}
	return api.SyscallError(op, unix.Close(h.fd))
}

func (h *handle) check() error {
	if h.closed.Load() {
		return api.ErrClosed
	}
	return nil
}
