//go:build linux

// File: netaddr/native_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import "golang.org/x/sys/unix"

// MaxUnixPathLen is the longest Unix socket path, excluding the NUL.
const MaxUnixPathLen = len(unix.RawSockaddrUnix{}.Path) - 1

// Linux sockaddrs start with a 16-bit family in host order.
func nativeFamilyTag(b []byte) int {
	return int(HostByteOrder.Uint16(b[:2]))
}

func fillInet4(sa *unix.RawSockaddrInet4) { sa.Family = unix.AF_INET }

func fillInet6(sa *unix.RawSockaddrInet6) { sa.Family = unix.AF_INET6 }

func fillUnix(sa *unix.RawSockaddrUnix, _ int) { sa.Family = unix.AF_UNIX }
