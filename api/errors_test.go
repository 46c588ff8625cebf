// File: api/errors_test.go
// Author: momentics <momentics@gmail.com>

package api_test

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/momentics/hioload-sock/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyscallError(t *testing.T) {
	assert.NoError(t, api.SyscallError("read", nil))

	err := api.SyscallError("epoll_ctl", syscall.ENOENT)
	assert.ErrorIs(t, err, api.ErrSystemCallFailed)
	assert.ErrorIs(t, err, syscall.ENOENT)
	assert.NotErrorIs(t, err, api.ErrNotWatched)

	var e *api.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int(syscall.ENOENT), e.Num)
	assert.Equal(t, "epoll_ctl", e.Context["op"])

	wrapped := fmt.Errorf("watch: %w", err)
	assert.ErrorIs(t, wrapped, syscall.ENOENT)
}

func TestResolutionError(t *testing.T) {
	cause := errors.New("no such host")
	err := api.ResolutionError(-2, "name or service not known", cause)
	assert.ErrorIs(t, err, api.ErrResolutionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "resolution failed: name or service not known (code -2)", err.Error())
}

func TestErrorKinds(t *testing.T) {
	e := api.NewError(api.ErrCodeNotWatched, "fd 3").WithContext("fd", 3)
	assert.ErrorIs(t, e, api.ErrNotWatched)
	assert.Contains(t, e.Error(), "descriptor not watched: fd 3")
	assert.Contains(t, e.Error(), "fd:3")

	assert.Panics(t, func() { _ = api.ErrorCode(99).Kind() })
}
