// File: netaddr/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package netaddr is the network address model: fixed-length IP values,
// the Address tagged union over IPv4, IPv6 and Unix-domain endpoints, the
// host:port codec, and bit-exact conversion to and from the native sockaddr
// layouts. Platform layout differences (family tag width, BSD length byte,
// Unix path capacity) stay behind Encode/Decode; callers never see them.
package netaddr
