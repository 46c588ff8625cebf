// Package fake
// Author: momentics <momentics@gmail.com>
//
// Table-driven name resolution backend with call counters.

package fake

import (
	"context"
	"net"
	"strings"
	"sync"
)

// ResolverBackend answers lookups from its maps and counts every call.
// Unknown hosts fail with a *net.DNSError marked IsNotFound.
type ResolverBackend struct {
	mu sync.Mutex

	Hosts    map[string][]net.IPAddr
	CNAMEs   map[string]string
	Services map[string]int // key "network/service"
	Err      error          // returned by every call when set

	HostCalls  int
	CNAMECalls int
	PortCalls  int
}

// NewResolverBackend returns a backend knowing localhost and the http and
// https services.
func NewResolverBackend() *ResolverBackend {
	return &ResolverBackend{
		Hosts: map[string][]net.IPAddr{
			"localhost": {{IP: net.IPv4(127, 0, 0, 1)}, {IP: net.IPv6loopback}},
		},
		CNAMEs: map[string]string{},
		Services: map[string]int{
			"tcp/http":   80,
			"udp/http":   80,
			"tcp/https":  443,
			"udp/https":  443,
			"udp/domain": 53,
		},
	}
}

func (b *ResolverBackend) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.HostCalls++
	if b.Err != nil {
		return nil, b.Err
	}
	addrs, ok := b.Hosts[strings.ToLower(host)]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return append([]net.IPAddr(nil), addrs...), nil
}

func (b *ResolverBackend) LookupCNAME(_ context.Context, host string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CNAMECalls++
	if b.Err != nil {
		return "", b.Err
	}
	if c, ok := b.CNAMEs[strings.ToLower(host)]; ok {
		return c, nil
	}
	if _, ok := b.Hosts[strings.ToLower(host)]; ok {
		return host + ".", nil
	}
	return "", &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func (b *ResolverBackend) LookupPort(_ context.Context, network, service string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PortCalls++
	if b.Err != nil {
		return 0, b.Err
	}
	if p, ok := b.Services[network+"/"+service]; ok {
		return p, nil
	}
	return 0, &net.DNSError{Err: "unknown port", Name: network + "/" + service, IsNotFound: true}
}

// Calls returns the total number of lookups performed.
func (b *ResolverBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.HostCalls + b.CNAMECalls + b.PortCalls
}
