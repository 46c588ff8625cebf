// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level socket enumerations. Native values live behind the
// netaddr and socket packages; these are platform-neutral tags.

package api

// Family is a socket address family.
type Family int

const (
	FamilyUnspec Family = iota
	FamilyInet
	FamilyInet6
	FamilyUnix
)

func (f Family) String() string {
	switch f {
	case FamilyInet:
		return "inet"
	case FamilyInet6:
		return "inet6"
	case FamilyUnix:
		return "unix"
	default:
		return "unspec"
	}
}

// SocketType is a socket type.
type SocketType int

const (
	TypeUnspec SocketType = iota
	TypeStream
	TypeDatagram
)

func (t SocketType) String() string {
	switch t {
	case TypeStream:
		return "stream"
	case TypeDatagram:
		return "datagram"
	default:
		return "unspec"
	}
}

// Protocol is a socket protocol.
type Protocol int

const (
	ProtoUnspec Protocol = iota
	ProtoTCP
	ProtoUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	default:
		return "unspec"
	}
}
