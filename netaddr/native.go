//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// File: netaddr/native.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import (
	"fmt"
	"unsafe"

	"github.com/momentics/hioload-sock/api"
	"golang.org/x/sys/unix"
)

// NativeFamily maps an address family to the platform AF_* value.
func NativeFamily(f api.Family) int {
	switch f {
	case api.FamilyInet:
		return unix.AF_INET
	case api.FamilyInet6:
		return unix.AF_INET6
	case api.FamilyUnix:
		return unix.AF_UNIX
	default:
		return unix.AF_UNSPEC
	}
}

// FamilyFromNative maps a platform AF_* value back to a Family.
func FamilyFromNative(af int) api.Family {
	switch af {
	case unix.AF_INET:
		return api.FamilyInet
	case unix.AF_INET6:
		return api.FamilyInet6
	case unix.AF_UNIX:
		return api.FamilyUnix
	default:
		return api.FamilyUnspec
	}
}

// NativeSize is the byte length of the platform structure for f, or 0.
func NativeSize(f api.Family) int {
	switch f {
	case api.FamilyInet:
		return unix.SizeofSockaddrInet4
	case api.FamilyInet6:
		return unix.SizeofSockaddrInet6
	case api.FamilyUnix:
		return unix.SizeofSockaddrUnix
	default:
		return 0
	}
}

// Encode returns the platform sockaddr_in, sockaddr_in6 or sockaddr_un
// bytes for a. The port is stored in network byte order.
func Encode(a Address) []byte {
	switch a.kind {
	case KindInet:
		var sa unix.RawSockaddrInet4
		fillInet4(&sa)
		sa.Port = Hton16(a.port)
		sa.Addr = a.ip.as4()
		return rawBytes(unsafe.Pointer(&sa), unix.SizeofSockaddrInet4)
	case KindInet6:
		var sa unix.RawSockaddrInet6
		fillInet6(&sa)
		sa.Port = Hton16(a.port)
		sa.Addr = a.ip.b
		sa.Scope_id = a.scope
		return rawBytes(unsafe.Pointer(&sa), unix.SizeofSockaddrInet6)
	case KindUnix:
		var sa unix.RawSockaddrUnix
		fillUnix(&sa, len(a.path))
		for i := 0; i < len(a.path); i++ {
			sa.Path[i] = int8(a.path[i])
		}
		return rawBytes(unsafe.Pointer(&sa), unix.SizeofSockaddrUnix)
	}
	panic(fmt.Sprintf("netaddr: cannot encode address of kind %s", a.kind))
}

// Decode parses native bytes produced by Encode or returned by the kernel.
// The family tag in b must match family. Unix addresses may be shorter
// than the full structure, as the kernel trims them to the path.
func Decode(family api.Family, b []byte) (Address, error) {
	size := NativeSize(family)
	if size == 0 {
		return Address{}, addrError(ErrUnsupportedFamily, family.String())
	}
	need := size
	if family == api.FamilyUnix {
		need = size - len(unix.RawSockaddrUnix{}.Path)
	}
	if len(b) < need {
		return Address{}, addrError(ErrShortBuffer, family.String())
	}
	if got := nativeFamilyTag(b); got != NativeFamily(family) {
		return Address{}, addrError(ErrUnexpectedFamily,
			fmt.Sprintf("%s (tag %d)", family, got))
	}

	switch family {
	case api.FamilyInet:
		var sa unix.RawSockaddrInet4
		copy(rawView(unsafe.Pointer(&sa), unix.SizeofSockaddrInet4), b)
		return Address{
			kind: KindInet,
			ip:   IPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]),
			port: Ntoh16(sa.Port),
		}, nil
	case api.FamilyInet6:
		var sa unix.RawSockaddrInet6
		copy(rawView(unsafe.Pointer(&sa), unix.SizeofSockaddrInet6), b)
		return Address{
			kind:  KindInet6,
			ip:    IP{b: sa.Addr, n: 16},
			port:  Ntoh16(sa.Port),
			scope: sa.Scope_id,
		}, nil
	default:
		var sa unix.RawSockaddrUnix
		copy(rawView(unsafe.Pointer(&sa), unix.SizeofSockaddrUnix), b)
		n := 0
		for n < len(sa.Path) && sa.Path[n] != 0 {
			n++
		}
		path := make([]byte, n)
		for i := range path {
			path[i] = byte(sa.Path[i])
		}
		return UnixAddr(string(path))
	}
}

// DecodeAny reads the family tag from b and decodes accordingly.
func DecodeAny(b []byte) (Address, error) {
	if len(b) < 2 {
		return Address{}, addrError(ErrShortBuffer, "")
	}
	f := FamilyFromNative(nativeFamilyTag(b))
	if f == api.FamilyUnspec {
		return Address{}, addrError(ErrUnsupportedFamily, fmt.Sprintf("tag %d", nativeFamilyTag(b)))
	}
	return Decode(f, b)
}

// Sockaddr converts a to the x/sys/unix representation used by the
// socket calls.
func (a Address) Sockaddr() unix.Sockaddr {
	switch a.kind {
	case KindInet:
		return &unix.SockaddrInet4{Port: int(a.port), Addr: a.ip.as4()}
	case KindInet6:
		return &unix.SockaddrInet6{Port: int(a.port), ZoneId: a.scope, Addr: a.ip.b}
	case KindUnix:
		return &unix.SockaddrUnix{Name: a.path}
	}
	panic(fmt.Sprintf("netaddr: no sockaddr for address of kind %s", a.kind))
}

// FromSockaddr converts an x/sys/unix sockaddr into an Address.
func FromSockaddr(sa unix.Sockaddr) (Address, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return InetAddr(IPv4(sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3]), uint16(sa.Port))
	case *unix.SockaddrInet6:
		return Inet6Addr(IP{b: sa.Addr, n: 16}, uint16(sa.Port), sa.ZoneId)
	case *unix.SockaddrUnix:
		return UnixAddr(sa.Name)
	case nil:
		return Address{}, addrError(ErrUnsupportedFamily, "nil sockaddr")
	}
	return Address{}, addrError(ErrUnsupportedFamily, fmt.Sprintf("%T", sa))
}

func rawView(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

func rawBytes(p unsafe.Pointer, n int) []byte {
	out := make([]byte, n)
	copy(out, rawView(p, n))
	return out
}
