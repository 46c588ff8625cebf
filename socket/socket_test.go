//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// File: socket/socket_test.go
// Author: momentics <momentics@gmail.com>

package socket_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/netaddr"
	"github.com/momentics/hioload-sock/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPairReadWrite(t *testing.T) {
	a, b, err := socket.Pair(api.TypeStream)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	n, err := a.Write([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	n, err = b.WriteBuffers([][]byte{[]byte("he"), []byte("llo")})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	first, second := make([]byte, 3), make([]byte, 8)
	n, err = a.ReadBuffers([][]byte{first, second})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hel", string(first))
	assert.Equal(t, "lo", string(second[:2]))

	require.NoError(t, a.Shutdown(socket.ShutdownWrite))
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTCPLoopback(t *testing.T) {
	ln, err := socket.New(api.FamilyInet, api.TypeStream, api.ProtoTCP)
	require.NoError(t, err)
	defer ln.Close()
	require.NoError(t, ln.SetReuseAddr(true))
	require.NoError(t, ln.Bind(netaddr.MustAddr(netaddr.InetAddr(netaddr.IPv4Loopback, 0))))
	require.NoError(t, ln.Listen(8))

	local, err := ln.LocalAddress()
	require.NoError(t, err)
	assert.Equal(t, netaddr.KindInet, local.Kind())
	assert.NotZero(t, local.Port())

	cl, err := socket.New(api.FamilyInet, api.TypeStream, api.ProtoTCP)
	require.NoError(t, err)
	defer cl.Close()
	require.NoError(t, cl.Connect(local))

	conn, peer, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	clLocal, err := cl.LocalAddress()
	require.NoError(t, err)
	assert.Equal(t, clLocal, peer)

	clPeer, err := cl.PeerAddress()
	require.NoError(t, err)
	assert.Equal(t, local, clPeer)
	assert.NoError(t, cl.ConnectError())

	_, err = cl.Write([]byte("hello"))
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestNonblockingAcceptWouldBlock(t *testing.T) {
	ln, err := socket.New(api.FamilyInet, api.TypeStream, api.ProtoTCP)
	require.NoError(t, err)
	defer ln.Close()
	require.NoError(t, ln.Bind(netaddr.MustAddr(netaddr.InetAddr(netaddr.IPv4Loopback, 0))))
	require.NoError(t, ln.Listen(1))
	require.NoError(t, ln.SetNonblock(true))

	_, _, err = ln.Accept()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrSystemCallFailed)
	assert.ErrorIs(t, err, unix.EAGAIN)
}

func TestUnixPathBind(t *testing.T) {
	dir, err := os.MkdirTemp("", "sock")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s")

	s, err := socket.New(api.FamilyUnix, api.TypeStream, api.ProtoUnspec)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bind(netaddr.MustAddr(netaddr.UnixAddr(path))))

	local, err := s.LocalAddress()
	require.NoError(t, err)
	assert.Equal(t, netaddr.KindUnix, local.Kind())
	assert.Equal(t, path, local.Path())
}

func TestErrors(t *testing.T) {
	s, err := socket.New(api.FamilyInet, api.TypeStream, api.ProtoTCP)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Bind(netaddr.Address{}), api.ErrInvalidAddress)

	_, err = s.PeerAddress()
	assert.ErrorIs(t, err, api.ErrSystemCallFailed)
	assert.ErrorIs(t, err, unix.ENOTCONN)

	require.NoError(t, s.Close())
	assert.Equal(t, -1, s.Fd())
	assert.ErrorIs(t, s.Close(), api.ErrClosed)
	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, api.ErrClosed)
	assert.ErrorIs(t, s.Listen(1), api.ErrClosed)

	_, err = socket.New(api.FamilyUnspec, api.TypeStream, api.ProtoUnspec)
	assert.ErrorIs(t, err, api.ErrSystemCallFailed)
}
