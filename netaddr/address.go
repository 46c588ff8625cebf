// File: netaddr/address.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/momentics/hioload-sock/api"
)

// Kind selects the active variant of an Address.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInet
	KindInet6
	KindUnix
)

func (k Kind) String() string {
	switch k {
	case KindInet:
		return "inet"
	case KindInet6:
		return "inet6"
	case KindUnix:
		return "unix"
	default:
		return "invalid"
	}
}

// Address is one of an IPv4 endpoint, an IPv6 endpoint with scope id, or
// a Unix-domain path. Values are immutable and comparable with ==.
// Accessors for fields of another variant return zero values.
type Address struct {
	kind  Kind
	ip    IP
	port  uint16
	scope uint32
	path  string
}

// InetAddr returns an IPv4 endpoint. ip must be 4 bytes long.
func InetAddr(ip IP, port uint16) (Address, error) {
	if ip.Len() != 4 {
		return Address{}, addrError(ErrFamilyMismatch, ip.String())
	}
	return Address{kind: KindInet, ip: ip, port: port}, nil
}

// Inet6Addr returns an IPv6 endpoint. ip must be 16 bytes long.
func Inet6Addr(ip IP, port uint16, scopeID uint32) (Address, error) {
	if ip.Len() != 16 {
		return Address{}, addrError(ErrFamilyMismatch, ip.String())
	}
	return Address{kind: KindInet6, ip: ip, port: port, scope: scopeID}, nil
}

// UnixAddr returns a Unix-domain address. The path, plus its terminating
// NUL, must fit the platform's sockaddr_un. An empty path names an
// unbound socket. Paths containing NUL are rejected.
func UnixAddr(path string) (Address, error) {
	if len(path) > MaxUnixPathLen {
		return Address{}, addrError(ErrPathTooLong, path)
	}
	if strings.IndexByte(path, 0) >= 0 {
		return Address{}, addrError(ErrPathNUL, strconv.Quote(path))
	}
	return Address{kind: KindUnix, path: path}, nil
}

// AddrFromIP picks the Inet or Inet6 variant from the IP's length.
func AddrFromIP(ip IP, port uint16, scopeID uint32) (Address, error) {
	switch ip.Len() {
	case 4:
		return InetAddr(ip, port)
	case 16:
		return Inet6Addr(ip, port, scopeID)
	}
	return Address{}, addrError(ErrBadIPLength, "")
}

// MustAddr panics on error. Intended for tests and constant addresses.
func MustAddr(a Address, err error) Address {
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Kind() Kind      { return a.kind }
func (a Address) IP() IP          { return a.ip }
func (a Address) Port() uint16    { return a.port }
func (a Address) ScopeID() uint32 { return a.scope }
func (a Address) Path() string    { return a.path }
func (a Address) IsValid() bool   { return a.kind != KindInvalid }

// Family maps the variant to the address family.
func (a Address) Family() api.Family {
	switch a.kind {
	case KindInet:
		return api.FamilyInet
	case KindInet6:
		return api.FamilyInet6
	case KindUnix:
		return api.FamilyUnix
	default:
		return api.FamilyUnspec
	}
}

// WithPort returns a copy of an IP endpoint with a different port.
func (a Address) WithPort(port uint16) Address {
	if a.kind == KindInet || a.kind == KindInet6 {
		a.port = port
	}
	return a
}

func (a Address) String() string {
	switch a.kind {
	case KindInet:
		return Join(a.ip.String(), strconv.Itoa(int(a.port)))
	case KindInet6:
		host := a.ip.String()
		if a.scope != 0 {
			host += "%" + strconv.FormatUint(uint64(a.scope), 10)
		}
		return Join(host, strconv.Itoa(int(a.port)))
	case KindUnix:
		return a.path
	case KindInvalid:
		return "invalid address"
	}
	panic(fmt.Sprintf("netaddr: corrupt address kind %d", a.kind))
}
