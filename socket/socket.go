//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

// File: socket/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package socket

import (
	"sync/atomic"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/netaddr"
	"golang.org/x/sys/unix"
)

// Socket owns one socket descriptor. Close releases it exactly once.
type Socket struct {
	fd     int
	family api.Family
	closed atomic.Bool
}

// ShutdownHow selects the half of a connection to shut down.
type ShutdownHow int

const (
	ShutdownRead  ShutdownHow = unix.SHUT_RD
	ShutdownWrite ShutdownHow = unix.SHUT_WR
	ShutdownBoth  ShutdownHow = unix.SHUT_RDWR
)

func nativeType(t api.SocketType) int {
	switch t {
	case api.TypeStream:
		return unix.SOCK_STREAM
	case api.TypeDatagram:
		return unix.SOCK_DGRAM
	}
	return 0
}

func nativeProto(p api.Protocol) int {
	switch p {
	case api.ProtoTCP:
		return unix.IPPROTO_TCP
	case api.ProtoUDP:
		return unix.IPPROTO_UDP
	}
	return 0
}

// New opens a blocking, close-on-exec socket.
func New(family api.Family, typ api.SocketType, proto api.Protocol) (*Socket, error) {
	fd, err := unix.Socket(netaddr.NativeFamily(family), nativeType(typ), nativeProto(proto))
	if err != nil {
		return nil, api.SyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	return &Socket{fd: fd, family: family}, nil
}

// Pair returns two connected sockets of the Unix family.
func Pair(typ api.SocketType) (*Socket, *Socket, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, nativeType(typ), 0)
	if err != nil {
		return nil, nil, api.SyscallError("socketpair", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	return FromFD(fds[0], api.FamilyUnix), FromFD(fds[1], api.FamilyUnix), nil
}

// FromFD adopts an open descriptor. The Socket takes ownership.
func FromFD(fd int, family api.Family) *Socket {
	return &Socket{fd: fd, family: family}
}

// Fd returns the descriptor, or -1 after Close.
func (s *Socket) Fd() int {
	if s.closed.Load() {
		return -1
	}
	return s.fd
}

// Family is the family the socket was opened with.
func (s *Socket) Family() api.Family { return s.family }

func (s *Socket) check() error {
	if s.closed.Load() {
		return api.ErrClosed
	}
	return nil
}

func sockaddr(a netaddr.Address) (unix.Sockaddr, error) {
	if !a.IsValid() {
		return nil, api.NewError(api.ErrCodeInvalidAddress, "invalid address")
	}
	return a.Sockaddr(), nil
}

// Bind assigns a local address.
func (s *Socket) Bind(a netaddr.Address) error {
	if err := s.check(); err != nil {
		return err
	}
	sa, err := sockaddr(a)
	if err != nil {
		return err
	}
	return api.SyscallError("bind", unix.Bind(s.fd, sa))
}

// Connect starts or completes a connection. On a non-blocking socket the
// error wraps unix.EINPROGRESS; poll for Writable and call ConnectError.
func (s *Socket) Connect(a netaddr.Address) error {
	if err := s.check(); err != nil {
		return err
	}
	sa, err := sockaddr(a)
	if err != nil {
		return err
	}
	return api.SyscallError("connect", unix.Connect(s.fd, sa))
}

// ConnectError reports the outcome of a non-blocking connect (SO_ERROR).
func (s *Socket) ConnectError() error {
	if err := s.check(); err != nil {
		return err
	}
	v, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return api.SyscallError("getsockopt", err)
	}
	if v != 0 {
		return api.SyscallError("connect", unix.Errno(v))
	}
	return nil
}

// Listen marks the socket as passive.
func (s *Socket) Listen(backlog int) error {
	if err := s.check(); err != nil {
		return err
	}
	return api.SyscallError("listen", unix.Listen(s.fd, backlog))
}

// Accept takes one pending connection. The new socket is blocking and
// close-on-exec regardless of the listener's mode.
func (s *Socket) Accept() (*Socket, netaddr.Address, error) {
	if err := s.check(); err != nil {
		return nil, netaddr.Address{}, err
	}
	nfd, sa, err := unix.Accept(s.fd)
	if err != nil {
		return nil, netaddr.Address{}, api.SyscallError("accept", err)
	}
	unix.CloseOnExec(nfd)
	conn := FromFD(nfd, s.family)
	if err := unix.SetNonblock(nfd, false); err != nil {
		conn.Close()
		return nil, netaddr.Address{}, api.SyscallError("fcntl", err)
	}
	if sa == nil && s.family == api.FamilyUnix {
		return conn, netaddr.MustAddr(netaddr.UnixAddr("")), nil
	}
	peer, err := netaddr.FromSockaddr(sa)
	if err != nil {
		conn.Close()
		return nil, netaddr.Address{}, err
	}
	return conn, peer, nil
}

// Read reads into p. Zero bytes with a nil error is end of stream.
func (s *Socket) Read(p []byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, api.SyscallError("read", err)
	}
	return n, nil
}

// Write writes p and returns the count the kernel accepted.
func (s *Socket) Write(p []byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := unix.Write(s.fd, p)
	if err != nil {
		return 0, api.SyscallError("write", err)
	}
	return n, nil
}

// WriteBuffers sends bufs with a single sendmsg.
func (s *Socket) WriteBuffers(bufs [][]byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := unix.SendmsgBuffers(s.fd, bufs, nil, nil, 0)
	if err != nil {
		return 0, api.SyscallError("sendmsg", err)
	}
	return n, nil
}

// ReadBuffers fills bufs in order with a single recvmsg.
func (s *Socket) ReadBuffers(bufs [][]byte) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, _, _, _, err := unix.RecvmsgBuffers(s.fd, bufs, nil, 0)
	if err != nil {
		return 0, api.SyscallError("recvmsg", err)
	}
	return n, nil
}

// Shutdown closes one or both directions of a connection.
func (s *Socket) Shutdown(how ShutdownHow) error {
	if err := s.check(); err != nil {
		return err
	}
	return api.SyscallError("shutdown", unix.Shutdown(s.fd, int(how)))
}

// LocalAddress returns the bound address.
func (s *Socket) LocalAddress() (netaddr.Address, error) {
	if err := s.check(); err != nil {
		return netaddr.Address{}, err
	}
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return netaddr.Address{}, api.SyscallError("getsockname", err)
	}
	return netaddr.FromSockaddr(sa)
}

// PeerAddress returns the address of the connected peer.
func (s *Socket) PeerAddress() (netaddr.Address, error) {
	if err := s.check(); err != nil {
		return netaddr.Address{}, err
	}
	sa, err := unix.Getpeername(s.fd)
	if err != nil {
		return netaddr.Address{}, api.SyscallError("getpeername", err)
	}
	return netaddr.FromSockaddr(sa)
}

// SetNonblock toggles O_NONBLOCK.
func (s *Socket) SetNonblock(on bool) error {
	if err := s.check(); err != nil {
		return err
	}
	return api.SyscallError("fcntl", unix.SetNonblock(s.fd, on))
}

// SetReuseAddr toggles SO_REUSEADDR.
func (s *Socket) SetReuseAddr(on bool) error {
	if err := s.check(); err != nil {
		return err
	}
	v := 0
	if on {
		v = 1
	}
	return api.SyscallError("setsockopt", unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, v))
}

// Close releases the descriptor. A second Close returns api.ErrClosed.
func (s *Socket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return api.ErrClosed
	}
	return api.SyscallError("close", unix.Close(s.fd))
}
