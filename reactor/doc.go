// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer behind api.Multiplexer,
// with an epoll backend on Linux and a kqueue backend on the BSDs and Darwin,
// plus a callback Dispatcher built on top of either.
//
// A multiplexer is owned by one polling goroutine. On epoll, Add, Update and
// Remove may be called from other goroutines while Poll blocks. On kqueue
// every call must be serialized by the caller. Closing a multiplexer while
// another goroutine is blocked in Poll is not supported.
package reactor
