// File: resolver/resolver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package resolver

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/control"
	"github.com/momentics/hioload-sock/netaddr"
)

// Backend performs the actual lookups. *net.Resolver satisfies it.
type Backend interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

// Query describes one ResolveAddresses call. Empty Host or Service means
// absent; zero Family, Type and Proto mean unspecified.
type Query struct {
	Host    string
	Service string
	Flags   Flags
	Family  api.Family
	Type    api.SocketType
	Proto   api.Protocol
}

// Resolver turns host and service names into socket addresses.
// It is safe for concurrent use.
type Resolver struct {
	backend    Backend
	timeout    time.Duration
	flags      Flags
	log        *zap.Logger
	ifaceAddrs func() ([]net.Addr, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBackend replaces net.DefaultResolver.
func WithBackend(b Backend) Option { return func(r *Resolver) { r.backend = b } }

// WithTimeout bounds every resolution. Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(r *Resolver) { r.timeout = d } }

// WithFlags sets the flags used by Resolve, LookupIP and LookupCNAME.
func WithFlags(f Flags) Option { return func(r *Resolver) { r.flags = f } }

// WithLogger sets the logger; the control package logger is the default.
func WithLogger(l *zap.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithInterfaceAddrs replaces net.InterfaceAddrs for AddrConfig filtering.
func WithInterfaceAddrs(fn func() ([]net.Addr, error)) Option {
	return func(r *Resolver) { r.ifaceAddrs = fn }
}

// New builds a Resolver backed by net.DefaultResolver unless overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		backend:    net.DefaultResolver,
		flags:      DefaultFlags,
		ifaceAddrs: net.InterfaceAddrs,
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = control.Logger()
	}
	r.log = r.log.Named("resolver")
	return r
}

// FromConfig builds a Resolver from its configuration section. Options are
// applied after the configured values.
func FromConfig(cfg control.ResolverConfig, opts ...Option) (*Resolver, error) {
	flags, err := ParseFlags(cfg.Flags)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithBackend(&net.Resolver{PreferGo: cfg.PreferGo}),
		WithTimeout(time.Duration(cfg.Timeout)),
		WithFlags(flags),
	}
	return New(append(base, opts...)...), nil
}

// Flags returns the flags used by the convenience lookups.
func (r *Resolver) Flags() Flags { return r.flags }

// Resolve resolves host and service for stream sockets with the configured flags.
func (r *Resolver) Resolve(ctx context.Context, host, service string) ([]netaddr.Address, error) {
	_, addrs, err := r.ResolveAddresses(ctx, Query{
		Host:    host,
		Service: service,
		Flags:   r.flags,
		Type:    api.TypeStream,
	})
	return addrs, err
}

// ResolveAddresses resolves q into addresses, in backend order with
// duplicates removed. The canonical name is returned only with CanonName.
func (r *Resolver) ResolveAddresses(ctx context.Context, q Query) (string, []netaddr.Address, error) {
	if err := checkQuery(q); err != nil {
		return "", nil, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	port, err := r.servicePort(ctx, q)
	if err != nil {
		return "", nil, err
	}
	canon, hosts, err := r.hostIPs(ctx, q)
	if err != nil {
		return "", nil, err
	}

	ips := filterFamily(hosts, q.Family, q.Flags)
	if q.Flags&AddrConfig != 0 && q.Host != "" && !isLiteral(q.Host) {
		ips = r.filterConfigured(ips)
	}
	if len(ips) == 0 {
		e := api.NewError(api.ErrCodeNoAddressFound, q.Host).WithContext("family", q.Family.String())
		return "", nil, e
	}

	addrs := make([]netaddr.Address, 0, len(ips))
	for _, h := range ips {
		a, err := netaddr.AddrFromIP(h.ip, port, h.scope)
		if err != nil {
			return "", nil, err
		}
		addrs = append(addrs, a)
	}
	r.log.Debug("resolved",
		zap.String("host", q.Host),
		zap.String("service", q.Service),
		zap.Stringer("flags", q.Flags),
		zap.Int("addresses", len(addrs)))
	return canon, addrs, nil
}

type hostIP struct {
	ip    netaddr.IP
	scope uint32
}

func checkQuery(q Query) error {
	switch q.Family {
	case api.FamilyUnspec, api.FamilyInet, api.FamilyInet6:
	default:
		return eaiError(EAIFamily, nil).WithContext("family", q.Family.String())
	}
	switch {
	case q.Proto == api.ProtoTCP && q.Type == api.TypeDatagram,
		q.Proto == api.ProtoUDP && q.Type == api.TypeStream:
		return eaiError(EAIService, nil).WithContext("proto", q.Proto.String())
	}
	if q.Flags&CanonName != 0 && q.Host == "" {
		return eaiError(EAIBadFlags, nil)
	}
	return nil
}

// networks lists the service database networks to try, in order.
func networks(t api.SocketType, p api.Protocol) []string {
	switch {
	case p == api.ProtoTCP, p == api.ProtoUnspec && t == api.TypeStream:
		return []string{"tcp"}
	case p == api.ProtoUDP, p == api.ProtoUnspec && t == api.TypeDatagram:
		return []string{"udp"}
	default:
		return []string{"tcp", "udp"}
	}
}

func (r *Resolver) servicePort(ctx context.Context, q Query) (uint16, error) {
	if q.Service == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(q.Service); err == nil {
		if n < 0 || n > 65535 {
			return 0, eaiError(EAIService, nil).WithContext("service", q.Service)
		}
		return uint16(n), nil
	}
	if q.Flags&NumericServ != 0 {
		return 0, eaiError(EAINoName, nil).WithContext("service", q.Service)
	}
	p, err := r.lookupService(ctx, strings.ToLower(q.Service), networks(q.Type, q.Proto))
	if err != nil {
		var (
			e   *api.Error
			dns *net.DNSError
		)
		switch {
		case errors.As(err, &e):
		case errors.As(err, &dns) && dns.IsNotFound:
			e = eaiError(EAIService, err)
		default:
			e = backendError(err)
		}
		return 0, e.WithContext("service", q.Service)
	}
	return p, nil
}

func (r *Resolver) lookupService(ctx context.Context, service string, nets []string) (uint16, error) {
	var err error
	for _, n := range nets {
		var p int
		p, err = r.backend.LookupPort(ctx, n, service)
		if err != nil {
			continue
		}
		if p < 0 || p > 65535 {
			return 0, api.ResolutionError(EAIService, "invalid port", nil).WithContext("port", p)
		}
		return uint16(p), nil
	}
	return 0, err
}

func isLiteral(host string) bool {
	ip, _, _ := strings.Cut(host, "%")
	_, err := netaddr.ParseIP(ip)
	return err == nil
}

func (r *Resolver) hostIPs(ctx context.Context, q Query) (string, []hostIP, error) {
	if q.Host == "" {
		if q.Flags&Passive != 0 {
			return "", []hostIP{{ip: netaddr.IPv6Any}, {ip: netaddr.IPv4Any}}, nil
		}
		return "", []hostIP{{ip: netaddr.IPv6Loopback}, {ip: netaddr.IPv4Loopback}}, nil
	}

	if h, ok, err := literal(q.Host); ok {
		if err != nil {
			return "", nil, err
		}
		canon := ""
		if q.Flags&CanonName != 0 {
			canon = q.Host
		}
		if q.Family == api.FamilyInet && h.ip.Len() == 16 {
			return "", nil, eaiError(EAIAddrFamily, nil).WithContext("host", q.Host)
		}
		if q.Family == api.FamilyInet6 && h.ip.Len() == 4 && q.Flags&V4Mapped == 0 {
			return "", nil, eaiError(EAIAddrFamily, nil).WithContext("host", q.Host)
		}
		return canon, []hostIP{h}, nil
	}
	if q.Flags&NumericHost != 0 {
		return "", nil, eaiError(EAINoName, nil).WithContext("host", q.Host)
	}
	return r.lookupHost(ctx, q.Host, q.Flags&CanonName != 0)
}

// literal parses an IP literal with an optional %zone. ok is false when
// host is not a literal at all.
func literal(host string) (hostIP, bool, error) {
	s, zone, hasZone := strings.Cut(host, "%")
	ip, err := netaddr.ParseIP(s)
	if err != nil {
		return hostIP{}, false, nil
	}
	if !hasZone {
		return hostIP{ip: ip}, true, nil
	}
	if ip.Len() != 16 || zone == "" {
		return hostIP{}, true, eaiError(EAINoName, nil).WithContext("host", host)
	}
	scope, err := zoneIndex(zone)
	if err != nil {
		return hostIP{}, true, eaiError(EAINoName, err).WithContext("host", host)
	}
	return hostIP{ip: ip, scope: scope}, true, nil
}

// zoneIndex accepts a numeric scope id or an interface name.
func zoneIndex(zone string) (uint32, error) {
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n), nil
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, err
	}
	return uint32(ifi.Index), nil
}

func (r *Resolver) lookupHost(ctx context.Context, host string, wantCanon bool) (string, []hostIP, error) {
	var (
		addrs    []net.IPAddr
		canon    string
		canonErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		addrs, err = r.backend.LookupIPAddr(gctx, host)
		return err
	})
	if wantCanon {
		g.Go(func() error {
			canon, canonErr = r.backend.LookupCNAME(gctx, host)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Debug("host lookup failed", zap.String("host", host), zap.Error(err))
		return "", nil, backendError(err).WithContext("host", host)
	}

	if wantCanon {
		if canonErr != nil || canon == "" {
			canon = host
		}
		if !strings.HasSuffix(canon, ".") {
			canon += "."
		}
	}

	out := make([]hostIP, 0, len(addrs))
	for _, a := range addrs {
		h, ok := fromNetIP(a)
		if !ok {
			continue
		}
		out = append(out, h)
	}
	return canon, out, nil
}

func fromNetIP(a net.IPAddr) (hostIP, bool) {
	raw := []byte(a.IP)
	if v4 := a.IP.To4(); v4 != nil {
		raw = v4
	}
	ip, err := netaddr.IPFromBytes(raw)
	if err != nil {
		return hostIP{}, false
	}
	h := hostIP{ip: ip}
	if a.Zone != "" && ip.Len() == 16 {
		if scope, err := zoneIndex(a.Zone); err == nil {
			h.scope = scope
		}
	}
	return h, true
}

// filterFamily applies the family and V4Mapped/All rules and drops duplicates.
func filterFamily(in []hostIP, family api.Family, flags Flags) []hostIP {
	var v4, v6 []hostIP
	for _, h := range in {
		if h.ip.Len() == 4 {
			v4 = append(v4, h)
		} else {
			v6 = append(v6, h)
		}
	}
	var out []hostIP
	switch family {
	case api.FamilyInet:
		out = v4
	case api.FamilyInet6:
		out = v6
		if flags&V4Mapped != 0 && (len(v6) == 0 || flags&All != 0) {
			for _, h := range v4 {
				out = append(out, hostIP{ip: h.ip.MapToIPv6()})
			}
		}
	default:
		out = in
	}
	return dedup(out)
}

func dedup(in []hostIP) []hostIP {
	seen := make(map[hostIP]struct{}, len(in))
	out := in[:0:0]
	for _, h := range in {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// filterConfigured drops addresses whose family has no interface address.
// v4-mapped addresses count as IPv4.
func (r *Resolver) filterConfigured(in []hostIP) []hostIP {
	has4, has6, err := r.configuredFamilies()
	if err != nil {
		r.log.Debug("interface enumeration failed, skipping addrconfig", zap.Error(err))
		return in
	}
	out := in[:0:0]
	for _, h := range in {
		is4 := h.ip.Len() == 4 || h.ip.IsIPv4Mapped()
		if (is4 && has4) || (!is4 && has6) {
			out = append(out, h)
		}
	}
	return out
}

func (r *Resolver) configuredFamilies() (has4, has6 bool, err error) {
	addrs, err := r.ifaceAddrs()
	if err != nil {
		return false, false, err
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		if ip.To4() != nil {
			has4 = true
		} else if len(ip) == net.IPv6len {
			has6 = true
		}
	}
	return has4, has6, nil
}
