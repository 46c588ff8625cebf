// File: netaddr/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import (
	"errors"

	"github.com/momentics/hioload-sock/api"
)

// Causes carried by AddrError. All of them satisfy errors.Is(err, api.ErrInvalidAddress).
var (
	ErrMissingPort            = errors.New("missing port")
	ErrTooManyColons          = errors.New("too many colons")
	ErrMissingBrackets        = errors.New("missing brackets")
	ErrMissingCloseBracket    = errors.New("missing ']' in address")
	ErrUnexpectedOpenBracket  = errors.New("unexpected '['")
	ErrUnexpectedCloseBracket = errors.New("unexpected ']'")

	ErrBadIPLength       = errors.New("ip address must be 4 or 16 bytes")
	ErrBadIP             = errors.New("malformed ip address")
	ErrFamilyMismatch    = errors.New("ip family does not match address variant")
	ErrPathTooLong       = errors.New("unix path too long")
	ErrPathNUL           = errors.New("unix path contains NUL")
	ErrUnexpectedFamily  = errors.New("unexpected address family")
	ErrShortBuffer       = errors.New("buffer too short for address family")
	ErrUnsupportedFamily = errors.New("unsupported address family")
)

// AddrError describes a malformed address, keeping the offending input.
type AddrError struct {
	Err  error
	Addr string
}

func (e *AddrError) Error() string {
	if e.Addr == "" {
		return "address: " + e.Err.Error()
	}
	return "address " + e.Addr + ": " + e.Err.Error()
}

// Unwrap exposes the specific cause and api.ErrInvalidAddress.
func (e *AddrError) Unwrap() []error { return []error{e.Err, api.ErrInvalidAddress} }

func addrError(err error, addr string) *AddrError {
	return &AddrError{Err: err, Addr: addr}
}
