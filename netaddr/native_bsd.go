//go:build darwin || dragonfly || freebsd || netbsd || openbsd

// File: netaddr/native_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import "golang.org/x/sys/unix"

// MaxUnixPathLen is the longest Unix socket path, excluding the NUL.
const MaxUnixPathLen = len(unix.RawSockaddrUnix{}.Path) - 1

// BSD sockaddrs carry a length byte followed by an 8-bit family.
func nativeFamilyTag(b []byte) int {
	return int(b[1])
}

func fillInet4(sa *unix.RawSockaddrInet4) {
	sa.Len = unix.SizeofSockaddrInet4
	sa.Family = unix.AF_INET
}

func fillInet6(sa *unix.RawSockaddrInet6) {
	sa.Len = unix.SizeofSockaddrInet6
	sa.Family = unix.AF_INET6
}

// Len counts the header, the path and its terminator.
func fillUnix(sa *unix.RawSockaddrUnix, n int) {
	sa.Len = uint8(3 + n)
	sa.Family = unix.AF_UNIX
}
