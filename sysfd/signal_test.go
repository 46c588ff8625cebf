// File: sysfd/signal_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sysfd_test

import (
	"syscall"
	"testing"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sysfd"
	"github.com/stretchr/testify/assert"
)

var _ api.SignalMask = sysfd.SignalSet{}

func TestSignalSetMembership(t *testing.T) {
	s := sysfd.NewSignalSet(syscall.SIGINT, syscall.SIGTERM)
	assert.True(t, s.Contains(syscall.SIGINT))
	assert.True(t, s.Contains(syscall.SIGTERM))
	assert.False(t, s.Contains(syscall.SIGHUP))
	assert.Equal(t, 2, s.Len())

	s.Insert(syscall.SIGHUP)
	s.Remove(syscall.SIGINT)
	assert.True(t, s.Contains(syscall.SIGHUP))
	assert.False(t, s.Contains(syscall.SIGINT))
	assert.Equal(t, []int{int(syscall.SIGHUP), int(syscall.SIGTERM)}, s.Signals())
}

func TestSignalSetFillAndEmpty(t *testing.T) {
	var empty sysfd.SignalSet
	assert.True(t, empty.IsEmpty())
	assert.Empty(t, empty.Signals())

	full := sysfd.FullSignalSet()
	assert.Equal(t, 64, full.Len())
	assert.True(t, full.Contains(syscall.SIGKILL))
}

func TestSignalSetOutOfRangePanics(t *testing.T) {
	var s sysfd.SignalSet
	assert.Panics(t, func() { s.Insert(0) })
	assert.Panics(t, func() { s.Insert(65) })
}
