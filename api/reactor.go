// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the readiness multiplexer contract shared by the epoll and kqueue
// backends. Callers never see backend-specific types.

package api

import "time"

// BlockForever makes Poll wait until an event or a signal arrives.
const BlockForever time.Duration = -1

// SignalMask lists the signal numbers to keep blocked while Poll waits.
type SignalMask interface {
	Signals() []int
}

// Multiplexer waits for readiness on many descriptors at once.
//
// Exactly one goroutine may call Poll on an instance at a time. Whether
// Add/Update/Remove may run concurrently with Poll depends on the backend:
// epoll allows it, kqueue does not (changes travel with the wait call), so
// callers that need portability must serialize all calls.
type Multiplexer interface {
	// Add registers fd. A second Add for the same fd fails with ErrAlreadyWatched.
	Add(fd int, interest Interest, data UserData) error

	// Update replaces interest and data of an existing watch, or fails with ErrNotWatched.
	Update(fd int, interest Interest, data UserData) error

	// Remove unregisters fd, or fails with ErrNotWatched.
	Remove(fd int) error

	// Poll returns up to maxEvents ready entries. A negative timeout blocks
	// indefinitely, zero returns immediately; expiry or an interrupting
	// signal yield an empty slice and a nil error. A non-nil blocked mask
	// is installed atomically for the duration of the wait only.
	Poll(maxEvents int, timeout time.Duration, blocked SignalMask) ([]ReadyEvent, error)

	// Close releases the kernel object. Further calls fail with ErrClosed.
	Close() error

	// Fd returns the descriptor of the kernel notification object.
	Fd() int

	// Backend names the implementation ("epoll", "kqueue").
	Backend() string
}
