// File: netaddr/ip_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netaddr_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/netaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIP(t *testing.T) {
	valid := []struct {
		text string
		b    []byte
		af   api.Family
	}{
		{"0.0.0.0", []byte{0, 0, 0, 0}, api.FamilyInet},
		{"255.0.0.0", []byte{255, 0, 0, 0}, api.FamilyInet},
		{"0.0.0.255", []byte{0, 0, 0, 255}, api.FamilyInet},
		{"255.255.255.255", []byte{255, 255, 255, 255}, api.FamilyInet},
		{"127.0.0.1", []byte{127, 0, 0, 1}, api.FamilyInet},
		{"205.49.120.187", []byte{205, 49, 120, 187}, api.FamilyInet},
		{"::0", make([]byte, 16), api.FamilyInet6},
		{"::1", append(make([]byte, 15), 1), api.FamilyInet6},
		{"2001:0db8:0000:0042:0000:8a2e:0370:7334",
			[]byte{32, 1, 13, 184, 0, 0, 0, 66, 0, 0, 138, 46, 3, 112, 115, 52}, api.FamilyInet6},
		{"2001:db8::ff00:42:8329",
			[]byte{32, 1, 13, 184, 0, 0, 0, 0, 0, 0, 255, 0, 0, 66, 131, 41}, api.FamilyInet6},
		{"::ffff:192.0.2.128",
			[]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 255, 255, 192, 0, 2, 128}, api.FamilyInet6},
	}
	for _, c := range valid {
		ip, err := netaddr.ParseIP(c.text)
		require.NoError(t, err, c.text)
		assert.Equal(t, c.b, ip.Bytes(), c.text)
		assert.Equal(t, c.af, ip.Family(), c.text)
	}

	invalid := []string{"", ":", ".", "%", "[::00]", "127.0.0.1.", "127.0.0", "0::0::0", "fe80::1%eth0"}
	for _, s := range invalid {
		_, err := netaddr.ParseIP(s)
		assert.ErrorIs(t, err, api.ErrInvalidAddress, s)
	}
}

func TestIPConstructors(t *testing.T) {
	v4 := [][]byte{{0, 0, 0, 0}, {127, 0, 0, 1}, {192, 128, 14, 10}}
	for _, b := range v4 {
		ip := netaddr.IPv4(b[0], b[1], b[2], b[3])
		assert.Equal(t, b, ip.Bytes())
		assert.Equal(t, api.FamilyInet, ip.Family())
	}

	v6 := []struct {
		h [8]uint16
		b []byte
	}{
		{[8]uint16{0, 0, 0, 0, 0, 0, 0, 1}, append(make([]byte, 15), 1)},
		{[8]uint16{0xffff}, append([]byte{0xff, 0xff}, make([]byte, 14)...)},
		{[8]uint16{0x2001, 0x0db8, 0, 0x0042, 0, 0x8a2e, 0x0370, 0x7334},
			[]byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0x42, 0, 0, 0x8a, 0x2e, 0x03, 0x70, 0x73, 0x34}},
	}
	for _, c := range v6 {
		h := c.h
		ip := netaddr.IPv6(h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7])
		assert.Equal(t, c.b, ip.Bytes())
		assert.Equal(t, api.FamilyInet6, ip.Family())

		fromBytes, err := netaddr.IPFromBytes(c.b)
		require.NoError(t, err)
		assert.Equal(t, ip, fromBytes)
	}

	for _, b := range [][]byte{{}, {0}, {1, 2}, {1, 2, 3, 4, 5}, bytes.Repeat([]byte{1}, 17)} {
		_, err := netaddr.IPFromBytes(b)
		assert.ErrorIs(t, err, netaddr.ErrBadIPLength, "%v", b)
	}
}

func TestIPMapping(t *testing.T) {
	mapped, err := netaddr.ParseIP("::ffff:10.1.2.3")
	require.NoError(t, err)
	assert.True(t, mapped.IsIPv4Mapped())
	assert.Equal(t, netaddr.IPv4(10, 1, 2, 3), mapped.Unmap())
	assert.Equal(t, mapped, netaddr.IPv4(10, 1, 2, 3).MapToIPv6())
	assert.True(t, netaddr.IPv4Loopback.IsLoopback())
	assert.True(t, netaddr.IPv6Loopback.IsLoopback())
	assert.Equal(t, "::1", netaddr.IPv6Loopback.String())
	assert.Equal(t, "255.255.255.255", netaddr.IPv4Broadcast.String())
}

func TestByteOrder(t *testing.T) {
	var b [2]byte
	netaddr.HostByteOrder.PutUint16(b[:], netaddr.Hton16(0x1234))
	assert.Equal(t, [2]byte{0x12, 0x34}, b)
	assert.Equal(t, uint16(0x1234), netaddr.Ntoh16(netaddr.Hton16(0x1234)))
	assert.Equal(t, uint32(0xdeadbeef), netaddr.Ntoh32(netaddr.Hton32(0xdeadbeef)))
}
