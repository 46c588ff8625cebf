// File: resolver/flags.go
// Author: momentics <momentics@gmail.com>

package resolver

import (
	"fmt"
	"strings"
)

// Flags adjust ResolveAddresses the way AI_* hints adjust getaddrinfo.
type Flags uint

const (
	// Passive returns wildcard addresses when no host is given.
	Passive Flags = 1 << iota
	// CanonName fills in the canonical name.
	CanonName
	// NumericHost forbids name lookups for the host.
	NumericHost
	// NumericServ forbids service database lookups.
	NumericServ
	// AddrConfig drops families with no configured interface address.
	// Loopback addresses count as configured.
	AddrConfig
	// V4Mapped returns IPv4 results as v4-mapped IPv6 addresses when an
	// IPv6 family is requested and no IPv6 result exists.
	V4Mapped
	// All, with V4Mapped, returns mapped IPv4 results alongside IPv6 ones.
	All
)

// DefaultFlags mirrors the getaddrinfo default hints.
const DefaultFlags = V4Mapped | AddrConfig

var flagNames = []struct {
	f    Flags
	name string
}{
	{Passive, "passive"},
	{CanonName, "canonname"},
	{NumericHost, "numerichost"},
	{NumericServ, "numericserv"},
	{AddrConfig, "addrconfig"},
	{V4Mapped, "v4mapped"},
	{All, "all"},
}

// ParseFlags converts flag names (as written in configuration files) to Flags.
func ParseFlags(names []string) (Flags, error) {
	var out Flags
next:
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "default" {
			out |= DefaultFlags
			continue
		}
		for _, fn := range flagNames {
			if fn.name == n {
				out |= fn.f
				continue next
			}
		}
		return 0, fmt.Errorf("resolver: unknown flag %q", n)
	}
	return out, nil
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
