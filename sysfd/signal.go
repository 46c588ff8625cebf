// File: sysfd/signal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sysfd

import (
	"fmt"
	"math/bits"
	"strings"
	"syscall"
)

// maxSignal is the highest signal number a SignalSet can hold.
const maxSignal = 64

// SignalSet is a set of signal numbers in 1..64. The zero value is empty.
// It implements api.SignalMask.
type SignalSet struct {
	mask uint64
}

// NewSignalSet returns a set holding sigs.
func NewSignalSet(sigs ...syscall.Signal) SignalSet {
	var s SignalSet
	for _, sig := range sigs {
		s.Insert(sig)
	}
	return s
}

// FullSignalSet returns a set holding every signal number.
func FullSignalSet() SignalSet { return SignalSet{mask: ^uint64(0)} }

func bit(sig syscall.Signal) uint64 {
	if sig < 1 || sig > maxSignal {
		panic(fmt.Sprintf("sysfd: signal %d out of range", int(sig)))
	}
	return 1 << (uint(sig) - 1)
}

// Insert adds sig.
func (s *SignalSet) Insert(sig syscall.Signal) { s.mask |= bit(sig) }

// Remove deletes sig.
func (s *SignalSet) Remove(sig syscall.Signal) { s.mask &^= bit(sig) }

// Contains reports whether sig is in the set.
func (s SignalSet) Contains(sig syscall.Signal) bool { return s.mask&bit(sig) != 0 }

// IsEmpty reports whether no signal is set.
func (s SignalSet) IsEmpty() bool { return s.mask == 0 }

// Len returns the number of signals in the set.
func (s SignalSet) Len() int { return bits.OnesCount64(s.mask) }

// Signals lists the signal numbers in ascending order.
func (s SignalSet) Signals() []int {
	out := make([]int, 0, s.Len())
	for m := s.mask; m != 0; m &= m - 1 {
		out = append(out, bits.TrailingZeros64(m)+1)
	}
	return out
}

func (s SignalSet) String() string {
	names := make([]string, 0, s.Len())
	for _, n := range s.Signals() {
		names = append(names, syscall.Signal(n).String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
