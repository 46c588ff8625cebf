//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without epoll or kqueue.

package reactor

import "github.com/momentics/hioload-sock/api"

func openBackend(OpenFlags, options) (api.Multiplexer, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "no readiness multiplexer on this platform")
}
