// File: sysfd/event_bsd_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package sysfd_test

import (
	"testing"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sysfd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeEventCounter(t *testing.T) {
	ev, err := sysfd.NewEvent(1, sysfd.EventNonblock|sysfd.EventCloexec)
	require.NoError(t, err)

	require.NoError(t, ev.Write(5))
	n, err := ev.Read()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)

	require.NoError(t, ev.Close())
	assert.ErrorIs(t, ev.Close(), api.ErrClosed)
	assert.ErrorIs(t, ev.Write(1), api.ErrClosed)
}
