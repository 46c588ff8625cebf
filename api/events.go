// File: api/events.go
// Package api defines the readiness event types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "strings"

// Interest is a set of readiness conditions. The same bits are used to
// request interest on Add/Update and to report readiness from Poll.
type Interest uint32

const (
	// Readable: data can be read without blocking.
	Readable Interest = 1 << iota
	// Writable: data can be written without blocking.
	Writable
	// Priority: urgent/out-of-band data is available.
	Priority
	// ReadHangUp: the peer shut down its writing half.
	ReadHangUp
	// EdgeTriggered requests edge rather than level notification.
	EdgeTriggered
	// OneShot disables the watch after one event until Update re-arms it.
	OneShot

	// Errored and HangUp are reported by Poll whether requested or not.
	Errored
	HangUp
)

// readinessMask selects the bits Poll may report.
const readinessMask = Readable | Writable | Priority | ReadHangUp | Errored | HangUp

// Has reports whether every bit of f is set in i.
func (i Interest) Has(f Interest) bool { return i&f == f }

// Readiness strips the registration-only modifiers.
func (i Interest) Readiness() Interest { return i & readinessMask }

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	names := []struct {
		f Interest
		n string
	}{
		{Readable, "readable"},
		{Writable, "writable"},
		{Priority, "priority"},
		{ReadHangUp, "rdhup"},
		{EdgeTriggered, "et"},
		{OneShot, "oneshot"},
		{Errored, "error"},
		{HangUp, "hup"},
	}
	var parts []string
	for _, n := range names {
		if i&n.f != 0 {
			parts = append(parts, n.n)
		}
	}
	return strings.Join(parts, "|")
}

// ReadyEvent is one entry returned by Multiplexer.Poll: the readiness bits
// that fired and the UserData attached at registration.
type ReadyEvent struct {
	Ready Interest
	Data  UserData
}
