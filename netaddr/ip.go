// File: netaddr/ip.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import (
	"net/netip"
	"strings"

	"github.com/momentics/hioload-sock/api"
)

// IP is an immutable IPv4 (4 bytes) or IPv6 (16 bytes) address.
// Values compare byte-wise with ==. The zero IP is invalid and is never
// produced by the constructors.
type IP struct {
	b [16]byte
	n uint8
}

// Well-known addresses.
var (
	IPv4Any       = IPv4(0, 0, 0, 0)
	IPv4Loopback  = IPv4(127, 0, 0, 1)
	IPv4Broadcast = IPv4(255, 255, 255, 255)
	IPv6Any       = IPv6(0, 0, 0, 0, 0, 0, 0, 0)
	IPv6Loopback  = IPv6(0, 0, 0, 0, 0, 0, 0, 1)
)

// IPv4 builds an address from its four display-order bytes.
func IPv4(b0, b1, b2, b3 byte) IP {
	return IP{b: [16]byte{b0, b1, b2, b3}, n: 4}
}

// IPv6 builds an address from its eight 16-bit groups, in display order.
func IPv6(h0, h1, h2, h3, h4, h5, h6, h7 uint16) IP {
	ip := IP{n: 16}
	for i, h := range [8]uint16{h0, h1, h2, h3, h4, h5, h6, h7} {
		ip.b[2*i] = byte(h >> 8)
		ip.b[2*i+1] = byte(h)
	}
	return ip
}

// IPFromBytes copies a 4- or 16-byte slice. Any other length fails.
func IPFromBytes(b []byte) (IP, error) {
	if len(b) != 4 && len(b) != 16 {
		return IP{}, addrError(ErrBadIPLength, "")
	}
	ip := IP{n: uint8(len(b))}
	copy(ip.b[:], b)
	return ip, nil
}

// ParseIP parses dotted-quad IPv4 or RFC 4291 IPv6 text. Zones and
// brackets are rejected; use Split and the resolver for those.
func ParseIP(s string) (IP, error) {
	if strings.ContainsAny(s, "%[]") {
		return IP{}, addrError(ErrBadIP, s)
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return IP{}, addrError(ErrBadIP, s)
	}
	return ipFromNetip(a), nil
}

func ipFromNetip(a netip.Addr) IP {
	if a.Is4() {
		b := a.As4()
		return IPv4(b[0], b[1], b[2], b[3])
	}
	return IP{b: a.As16(), n: 16}
}

// IsValid reports whether ip was built by a constructor.
func (ip IP) IsValid() bool { return ip.n == 4 || ip.n == 16 }

// Len is 4 or 16 (0 for the zero IP).
func (ip IP) Len() int { return int(ip.n) }

// Family is derived from the length.
func (ip IP) Family() api.Family {
	switch ip.n {
	case 4:
		return api.FamilyInet
	case 16:
		return api.FamilyInet6
	default:
		return api.FamilyUnspec
	}
}

// Bytes returns a copy of the address bytes.
func (ip IP) Bytes() []byte {
	out := make([]byte, ip.n)
	copy(out, ip.b[:ip.n])
	return out
}

// IsIPv4Mapped reports an IPv6 address of the form ::ffff:a.b.c.d.
func (ip IP) IsIPv4Mapped() bool {
	return ip.n == 16 && ip.netip().Is4In6()
}

// Unmap returns the IPv4 form of a v4-mapped address, or ip unchanged.
func (ip IP) Unmap() IP {
	if !ip.IsIPv4Mapped() {
		return ip
	}
	return IPv4(ip.b[12], ip.b[13], ip.b[14], ip.b[15])
}

// MapToIPv6 returns the v4-mapped IPv6 form of an IPv4 address, or ip unchanged.
func (ip IP) MapToIPv6() IP {
	if ip.n != 4 {
		return ip
	}
	return IPv6(0, 0, 0, 0, 0, 0xffff,
		uint16(ip.b[0])<<8|uint16(ip.b[1]), uint16(ip.b[2])<<8|uint16(ip.b[3]))
}

// IsLoopback reports 127.0.0.0/8 and ::1.
func (ip IP) IsLoopback() bool {
	return ip.IsValid() && ip.netip().IsLoopback()
}

func (ip IP) netip() netip.Addr {
	switch ip.n {
	case 4:
		return netip.AddrFrom4([4]byte{ip.b[0], ip.b[1], ip.b[2], ip.b[3]})
	case 16:
		return netip.AddrFrom16(ip.b)
	}
	return netip.Addr{}
}

func (ip IP) as4() [4]byte { return [4]byte{ip.b[0], ip.b[1], ip.b[2], ip.b[3]} }

func (ip IP) String() string {
	if !ip.IsValid() {
		return "invalid IP"
	}
	return ip.netip().String()
}
