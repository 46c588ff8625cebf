// File: sysfd/signal_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package sysfd

import (
	"syscall"
	"unsafe"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// BlockMode selects how Block combines a set with the thread mask.
type BlockMode int

const (
	BlockAdd BlockMode = unix.SIG_BLOCK
	Unblock  BlockMode = unix.SIG_UNBLOCK
	SetMask  BlockMode = unix.SIG_SETMASK
)

// Sigset returns the kernel representation of the set.
func (s SignalSet) Sigset() unix.Sigset_t {
	var set unix.Sigset_t
	width := uint(unsafe.Sizeof(set.Val[0]) * 8)
	for _, n := range s.Signals() {
		b := uint(n - 1)
		set.Val[b/width] |= 1 << (b % width)
	}
	return set
}

func fromSigset(set *unix.Sigset_t) SignalSet {
	var s SignalSet
	width := uint(unsafe.Sizeof(set.Val[0]) * 8)
	for b := uint(0); b < maxSignal; b++ {
		if set.Val[b/width]&(1<<(b%width)) != 0 {
			s.mask |= 1 << b
		}
	}
	return s
}

// Block changes the signal mask of the calling OS thread and returns the
// previous mask. Go schedules goroutines over many threads, so callers must
// hold runtime.LockOSThread for the mask to stay meaningful.
func (s SignalSet) Block(mode BlockMode) (SignalSet, error) {
	set := s.Sigset()
	var old unix.Sigset_t
	if err := unix.PthreadSigmask(int(mode), &set, &old); err != nil {
		return SignalSet{}, api.SyscallError("pthread_sigmask", err)
	}
	return fromSigset(&old), nil
}

// SignalFD is a descriptor that becomes readable when one of its signals
// is pending. The signals must be blocked for it to observe them.
type SignalFD struct {
	handle
}

// NewSignalFD creates a signalfd for set. flags accepts unix.SFD_NONBLOCK
// and unix.SFD_CLOEXEC.
func NewSignalFD(set SignalSet, flags int) (*SignalFD, error) {
	mask := set.Sigset()
	fd, err := unix.Signalfd(-1, &mask, flags)
	if err != nil {
		return nil, api.SyscallError("signalfd", err)
	}
	return &SignalFD{handle: handle{fd: fd}}, nil
}

// Reset replaces the set of signals the descriptor observes.
func (s *SignalFD) Reset(set SignalSet) error {
	if err := s.check(); err != nil {
		return err
	}
	mask := set.Sigset()
	_, err := unix.Signalfd(s.fd, &mask, 0)
	return api.SyscallError("signalfd", err)
}

// Next reads the next pending signal.
func (s *SignalFD) Next() (syscall.Signal, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var info unix.SignalfdSiginfo
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&info)), unsafe.Sizeof(info))
	if _, err := unix.Read(s.fd, buf); err != nil {
		return 0, api.SyscallError("read", err)
	}
	return syscall.Signal(info.Signo), nil
}

// Close releases the descriptor.
func (s *SignalFD) Close() error { return s.close("close") }
