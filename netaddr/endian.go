// File: netaddr/endian.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

// HostByteOrder is the byte order of the running host, detected once at
// package initialization.
var HostByteOrder binary.ByteOrder

var hostBigEndian bool

func init() {
	hostBigEndian = detectBigEndian()
	if hostBigEndian {
		HostByteOrder = binary.BigEndian
	} else {
		HostByteOrder = binary.LittleEndian
	}
}

func detectBigEndian() bool {
	x := uint16(0x0102)
	return *(*byte)(unsafe.Pointer(&x)) == 0x01
}

// Hton16 converts a host-order value to network (big-endian) order.
func Hton16(v uint16) uint16 {
	if hostBigEndian {
		return v
	}
	return bits.ReverseBytes16(v)
}

// Ntoh16 converts a network-order value to host order.
func Ntoh16(v uint16) uint16 { return Hton16(v) }

// Hton32 converts a host-order value to network (big-endian) order.
func Hton32(v uint32) uint32 {
	if hostBigEndian {
		return v
	}
	return bits.ReverseBytes32(v)
}

// Ntoh32 converts a network-order value to host order.
func Ntoh32(v uint32) uint32 { return Hton32(v) }
