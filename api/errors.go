// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the address model, resolver and readiness multiplexer.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrSystemCallFailed = errors.New("system call failed")
	ErrResolutionFailed = errors.New("resolution failed")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrNoAddressFound   = errors.New("no address found")
	ErrAlreadyWatched   = errors.New("descriptor already watched")
	ErrNotWatched       = errors.New("descriptor not watched")
	ErrClosed           = errors.New("use of closed descriptor")
	ErrNotSupported     = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeSystemCallFailed
	ErrCodeResolutionFailed
	ErrCodeInvalidAddress
	ErrCodeNoAddressFound
	ErrCodeAlreadyWatched
	ErrCodeNotWatched
	ErrCodeClosed
	ErrCodeNotSupported
)

var codeKinds = map[ErrorCode]error{
	ErrCodeSystemCallFailed: ErrSystemCallFailed,
	ErrCodeResolutionFailed: ErrResolutionFailed,
	ErrCodeInvalidAddress:   ErrInvalidAddress,
	ErrCodeNoAddressFound:   ErrNoAddressFound,
	ErrCodeAlreadyWatched:   ErrAlreadyWatched,
	ErrCodeNotWatched:       ErrNotWatched,
	ErrCodeClosed:           ErrClosed,
	ErrCodeNotSupported:     ErrNotSupported,
}

// Kind returns the sentinel error for the code.
func (c ErrorCode) Kind() error {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	panic(fmt.Sprintf("api: unknown error code %d", int(c)))
}

// Error represents a structured error with code and context.
//
// Num carries the platform number behind the failure: errno for
// ErrCodeSystemCallFailed, the EAI_* code for ErrCodeResolutionFailed.
type Error struct {
	Code    ErrorCode
	Num     int
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.Kind().Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Num != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Num)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is matches either api.ErrNotWatched or unix.ENOENT.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code.Kind()}
	}
	return []error{e.Code.Kind(), e.Err}
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// SyscallError wraps a failed system call. A nil err yields nil.
func SyscallError(op string, err error) error {
	if err == nil {
		return nil
	}
	e := NewError(ErrCodeSystemCallFailed, err.Error()).WithContext("op", op)
	e.Err = err
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Num = int(errno)
	}
	return e
}

// ResolutionError reports a resolver failure carrying an EAI_* code.
func ResolutionError(code int, message string, cause error) *Error {
	e := NewError(ErrCodeResolutionFailed, message)
	e.Num = code
	e.Err = cause
	return e
}
