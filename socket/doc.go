// Package socket
// Author: momentics <momentics@gmail.com>
//
// Thin BSD socket wrappers speaking netaddr.Address. Every failing call
// returns an *api.Error of kind ErrSystemCallFailed carrying the errno.
package socket
