// File: sysfd/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package sysfd wraps the descriptor-producing kernel facilities that feed a
// readiness multiplexer: signal sets and signalfd, timerfd, and an eventfd
// style wakeup descriptor (a pipe pair where eventfd is unavailable).
//
// Every type owns exactly one kernel handle and releases it in Close.
// A second Close returns api.ErrClosed.
package sysfd
