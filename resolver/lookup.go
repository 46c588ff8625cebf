// File: resolver/lookup.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package resolver

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/netaddr"
)

// LookupPort returns the port for service. A numeric service is range
// checked and returned without touching the service database.
func (r *Resolver) LookupPort(ctx context.Context, service string, family api.Family, proto api.Protocol) (int, error) {
	if n, err := strconv.Atoi(service); err == nil {
		if n < 0 || n > 65535 {
			return 0, api.ResolutionError(EAIService, "invalid port", nil).WithContext("service", service)
		}
		return n, nil
	}
	switch family {
	case api.FamilyUnspec, api.FamilyInet, api.FamilyInet6:
	default:
		return 0, api.ResolutionError(EAIFamily, "invalid network", nil).WithContext("family", family.String())
	}
	var nets []string
	switch proto {
	case api.ProtoTCP:
		nets = []string{"tcp"}
	case api.ProtoUDP:
		nets = []string{"udp"}
	case api.ProtoUnspec:
		nets = []string{"tcp", "udp"}
	default:
		return 0, api.ResolutionError(EAISockType, "invalid protocol", nil).WithContext("proto", proto.String())
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	p, err := r.lookupService(ctx, strings.ToLower(service), nets)
	if err != nil {
		var e *api.Error
		if errors.As(err, &e) {
			return 0, e
		}
		var dns *net.DNSError
		if errors.As(err, &dns) && dns.IsNotFound {
			return 0, api.ResolutionError(EAIService, "unknown service", err).WithContext("service", service)
		}
		return 0, backendError(err).WithContext("service", service)
	}
	r.log.Debug("port resolved", zap.String("service", service), zap.Uint16("port", p))
	return int(p), nil
}

// LookupIP returns the addresses of host using the configured flags.
func (r *Resolver) LookupIP(ctx context.Context, host string) ([]netaddr.IP, error) {
	_, addrs, err := r.ResolveAddresses(ctx, Query{
		Host:  host,
		Flags: r.flags &^ CanonName,
		Type:  api.TypeStream,
	})
	if err != nil {
		return nil, err
	}
	ips := make([]netaddr.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP()
	}
	return ips, nil
}

// LookupCNAME returns the canonical name of host, with a trailing dot for
// names. IP literals are returned unchanged.
func (r *Resolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	canon, _, err := r.ResolveAddresses(ctx, Query{
		Host:  host,
		Flags: r.flags | CanonName,
		Type:  api.TypeStream,
	})
	return canon, err
}
