// File: resolver/errors.go
// Author: momentics <momentics@gmail.com>

package resolver

import (
	"context"
	"errors"
	"net"

	"github.com/momentics/hioload-sock/api"
)

// EAI_* codes carried in api.Error.Num for resolution failures. The values
// are the glibc ones on every platform.
const (
	EAIBadFlags   = -1
	EAINoName     = -2
	EAIAgain      = -3
	EAIFail       = -4
	EAIFamily     = -6
	EAISockType   = -7
	EAIService    = -8
	EAIAddrFamily = -9
)

var eaiMessages = map[int]string{
	EAIBadFlags:   "bad value for ai_flags",
	EAINoName:     "name or service not known",
	EAIAgain:      "temporary failure in name resolution",
	EAIFail:       "non-recoverable failure in name resolution",
	EAIFamily:     "ai_family not supported",
	EAISockType:   "ai_socktype not supported",
	EAIService:    "servname not supported for ai_socktype",
	EAIAddrFamily: "address family for hostname not supported",
}

// EAIMessage returns the text for an EAI code.
func EAIMessage(code int) string {
	if m, ok := eaiMessages[code]; ok {
		return m
	}
	return "unknown resolver error"
}

func eaiError(code int, cause error) *api.Error {
	return api.ResolutionError(code, EAIMessage(code), cause)
}

// backendError maps a lookup failure to an EAI code.
func backendError(err error) *api.Error {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return api.ResolutionError(EAIAgain, err.Error(), err)
	case errors.As(err, &dnsErr):
		code := EAIFail
		switch {
		case dnsErr.IsNotFound:
			code = EAINoName
		case dnsErr.IsTimeout, dnsErr.IsTemporary:
			code = EAIAgain
		}
		return api.ResolutionError(code, dnsErr.Err, err)
	default:
		return api.ResolutionError(EAIFail, err.Error(), err)
	}
}
