// File: reactor/errors.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"github.com/momentics/hioload-sock/api"
)

func alreadyWatched(fd int, cause error) error {
	e := api.NewError(api.ErrCodeAlreadyWatched, "add").WithContext("fd", fd)
	e.Err = cause
	return e
}

func notWatched(op string, fd int, cause error) error {
	e := api.NewError(api.ErrCodeNotWatched, op).WithContext("fd", fd)
	e.Err = cause
	return e
}

func syscallError(op string, fd int, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := api.SyscallError(op, err).(*api.Error); ok {
		return e.WithContext("fd", fd)
	}
	return err
}
