//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

// File: netaddr/native_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

// MaxUnixPathLen matches the common sockaddr_un size on platforms without
// a native encoder.
const MaxUnixPathLen = 107
