// Package resolver
// Author: momentics <momentics@gmail.com>
//
// Name and service resolution producing netaddr.Address values, with
// getaddrinfo-style flags and EAI error codes. The lookups themselves are
// delegated to a Backend, which *net.Resolver satisfies.
package resolver
