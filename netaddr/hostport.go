// File: netaddr/hostport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr

import "strings"

// Join combines host and port into "host:port", or "[host]:port" when the
// host contains a colon or a percent sign.
func Join(host, port string) string {
	if strings.ContainsAny(host, ":%") {
		return "[" + host + "]:" + port
	}
	return host + ":" + port
}

// Split splits "host:port", "[host]:port" or "[ipv6-host%zone]:port" into
// host (or ipv6-host%zone) and port. The port is returned as text; it may
// be empty or a service name.
func Split(hostPort string) (host, port string, err error) {
	portColon := strings.LastIndexByte(hostPort, ':')
	if portColon < 0 {
		return "", "", addrError(ErrMissingPort, hostPort)
	}

	open, close := 0, 0
	if hostPort[0] == '[' {
		end := strings.IndexByte(hostPort, ']')
		if end < 0 {
			return "", "", addrError(ErrMissingCloseBracket, hostPort)
		}
		switch end + 1 {
		case len(hostPort):
			return "", "", addrError(ErrMissingPort, hostPort)
		case portColon:
		default:
			// ']' is not followed by the last colon
			if hostPort[end+1] == ':' {
				return "", "", addrError(ErrTooManyColons, hostPort)
			}
			return "", "", addrError(ErrMissingPort, hostPort)
		}
		host = hostPort[1:end]
		open, close = 1, end+1
	} else {
		host = hostPort[:portColon]
		if strings.IndexByte(host, ':') >= 0 {
			return "", "", addrError(ErrTooManyColons, hostPort)
		}
		if strings.IndexByte(host, '%') >= 0 {
			return "", "", addrError(ErrMissingBrackets, hostPort)
		}
	}

	if strings.IndexByte(hostPort[open:], '[') >= 0 {
		return "", "", addrError(ErrUnexpectedOpenBracket, hostPort)
	}
	if strings.IndexByte(hostPort[close:], ']') >= 0 {
		return "", "", addrError(ErrUnexpectedCloseBracket, hostPort)
	}
	return host, hostPort[portColon+1:], nil
}
