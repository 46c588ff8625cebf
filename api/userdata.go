// Package api
// Author: momentics <momentics@gmail.com>
//
// UserData: the opaque payload attached to a watched descriptor.

package api

import (
	"fmt"
	"math"
)

// UserDataKind tags the active member of a UserData.
type UserDataKind uint8

const (
	KindU64 UserDataKind = iota
	KindFD
	KindU32
	KindPtr
)

func (k UserDataKind) String() string {
	switch k {
	case KindU64:
		return "u64"
	case KindFD:
		return "fd"
	case KindU32:
		return "u32"
	case KindPtr:
		return "ptr"
	default:
		return "unknown"
	}
}

// UserData is a tagged union {fd int32, u32, u64, pointer-sized integer}.
// The zero value is U64(0). Values are comparable with ==.
//
// Backends hand the payload back as U64 carrying the raw 64 bits they stored;
// use AsFD, AsU32 or AsPtr to narrow it back.
type UserData struct {
	kind UserDataKind
	raw  uint64
}

// FD returns a UserData holding a file descriptor.
func FD(fd int32) UserData { return UserData{kind: KindFD, raw: uint64(uint32(fd))} }

// U32 returns a UserData holding a uint32.
func U32(v uint32) UserData { return UserData{kind: KindU32, raw: uint64(v)} }

// U64 returns a UserData holding a uint64.
func U64(v uint64) UserData { return UserData{kind: KindU64, raw: v} }

// Ptr returns a UserData holding an address-sized integer.
func Ptr(p uintptr) UserData { return UserData{kind: KindPtr, raw: uint64(p)} }

// Kind reports the active member.
func (d UserData) Kind() UserDataKind { return d.kind }

// Raw returns the 64-bit payload as stored in the kernel structure.
// FD values are stored as their 32-bit pattern, zero-extended.
func (d UserData) Raw() uint64 { return d.raw }

// AsFD narrows a U64 to a descriptor. It fails when the value is not
// representable as a non-negative int32.
func (d UserData) AsFD() (int32, bool) {
	switch d.kind {
	case KindFD:
		return int32(uint32(d.raw)), true
	case KindU64:
		if d.raw > math.MaxInt32 {
			return 0, false
		}
		return int32(d.raw), true
	}
	return 0, false
}

// AsU32 narrows a U64 to a uint32, failing instead of truncating.
func (d UserData) AsU32() (uint32, bool) {
	switch d.kind {
	case KindU32:
		return uint32(d.raw), true
	case KindU64:
		if d.raw > math.MaxUint32 {
			return 0, false
		}
		return uint32(d.raw), true
	}
	return 0, false
}

// AsPtr narrows a U64 to a pointer-sized integer. Zero is a null pointer
// and fails, as does any value wider than the host word.
func (d UserData) AsPtr() (uintptr, bool) {
	switch d.kind {
	case KindPtr:
		return uintptr(d.raw), true
	case KindU64:
		if d.raw == 0 || d.raw > maxUintptr {
			return 0, false
		}
		return uintptr(d.raw), true
	}
	return 0, false
}

// AsU64 returns the payload of a U64 value.
func (d UserData) AsU64() (uint64, bool) {
	if d.kind != KindU64 {
		return 0, false
	}
	return d.raw, true
}

func (d UserData) String() string {
	switch d.kind {
	case KindFD:
		return fmt.Sprintf("fd(%d)", int32(uint32(d.raw)))
	case KindPtr:
		return fmt.Sprintf("ptr(%#x)", d.raw)
	default:
		return fmt.Sprintf("%s(%d)", d.kind, d.raw)
	}
}

const maxUintptr = uint64(^uintptr(0))
