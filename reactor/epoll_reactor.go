//go:build linux

// File: reactor/epoll_reactor.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) multiplexer.

package reactor

import (
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/momentics/hioload-sock/api"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// epollReactor implements api.Multiplexer on an epoll instance. The
// registration set lives in the kernel, so Add/Update/Remove only touch
// immutable fields and may race with Poll.
type epollReactor struct {
	epfd   int
	closed atomic.Bool
	log    *zap.Logger

	// poll-side scratch, owned by the single poller
	events []unix.EpollEvent
}

func openBackend(flags OpenFlags, o options) (api.Multiplexer, error) {
	cflags := 0
	if flags&CloseOnExec != 0 {
		cflags = unix.EPOLL_CLOEXEC
	}
	epfd, err := unix.EpollCreate1(cflags)
	if err != nil {
		return nil, api.SyscallError("epoll_create1", err)
	}
	return &epollReactor{
		epfd: epfd,
		log:  o.logger.With(zap.String("backend", "epoll")),
	}, nil
}

func (r *epollReactor) Backend() string { return "epoll" }

func (r *epollReactor) Fd() int { return r.epfd }

// Add registers fd. EEXIST from the kernel is reported as ErrAlreadyWatched.
func (r *epollReactor) Add(fd int, interest api.Interest, data api.UserData) error {
	err := r.ctl(unix.EPOLL_CTL_ADD, fd, interest, data)
	if errors.Is(err, unix.EEXIST) {
		return alreadyWatched(fd, unix.EEXIST)
	}
	return err
}

// Update modifies an existing registration. ENOENT is reported as ErrNotWatched.
func (r *epollReactor) Update(fd int, interest api.Interest, data api.UserData) error {
	err := r.ctl(unix.EPOLL_CTL_MOD, fd, interest, data)
	if errors.Is(err, unix.ENOENT) {
		return notWatched("update", fd, unix.ENOENT)
	}
	return err
}

// Remove unregisters fd. ENOENT is reported as ErrNotWatched.
func (r *epollReactor) Remove(fd int) error {
	if r.closed.Load() {
		return api.ErrClosed
	}
	// a non-nil event keeps pre-2.6.9 kernels happy
	var ev unix.EpollEvent
	err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, &ev)
	if errors.Is(err, unix.ENOENT) {
		return notWatched("remove", fd, unix.ENOENT)
	}
	if err != nil {
		return syscallError("epoll_ctl", fd, err)
	}
	r.log.Debug("fd removed", zap.Int("fd", fd))
	return nil
}

func (r *epollReactor) ctl(op, fd int, interest api.Interest, data api.UserData) error {
	if r.closed.Load() {
		return api.ErrClosed
	}
	ev := unix.EpollEvent{Events: toEpoll(interest)}
	setEpollData(&ev, data.Raw())
	if err := unix.EpollCtl(r.epfd, op, fd, &ev); err != nil {
		return syscallError("epoll_ctl", fd, err)
	}
	r.log.Debug("fd registered",
		zap.Int("fd", fd), zap.Stringer("interest", interest), zap.Stringer("data", data))
	return nil
}

// Poll waits with millisecond granularity, rounding timeout down. With a
// blocked mask the wait goes through epoll_pwait so that the mask swap and
// the wait are atomic.
func (r *epollReactor) Poll(maxEvents int, timeout time.Duration, blocked api.SignalMask) ([]api.ReadyEvent, error) {
	if r.closed.Load() {
		return nil, api.ErrClosed
	}
	if maxEvents <= 0 {
		return nil, syscallError("epoll_wait", r.epfd, unix.EINVAL)
	}
	if cap(r.events) < maxEvents {
		r.events = make([]unix.EpollEvent, maxEvents)
	}
	events := r.events[:maxEvents]

	var (
		n   int
		err error
	)
	if blocked == nil {
		n, err = unix.EpollWait(r.epfd, events, timeoutMillis(timeout))
	} else {
		n, err = epollPwait(r.epfd, events, timeoutMillis(timeout), blocked)
	}
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return []api.ReadyEvent{}, nil
		}
		return nil, syscallError("epoll_wait", r.epfd, err)
	}

	out := make([]api.ReadyEvent, n)
	for i := 0; i < n; i++ {
		out[i] = api.ReadyEvent{
			Ready: fromEpoll(events[i].Events),
			Data:  api.U64(epollData(&events[i])),
		}
	}
	return out, nil
}

// Close releases the epoll descriptor. Registered descriptors stay open.
func (r *epollReactor) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return api.ErrClosed
	}
	if err := unix.Close(r.epfd); err != nil {
		return api.SyscallError("close", err)
	}
	r.log.Debug("multiplexer closed", zap.Int("fd", r.epfd))
	return nil
}

// The 64-bit epoll_data union starts at the Fd field on every architecture.
func setEpollData(ev *unix.EpollEvent, v uint64) {
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = v
}

func epollData(ev *unix.EpollEvent) uint64 {
	return *(*uint64)(unsafe.Pointer(&ev.Fd))
}

func toEpoll(i api.Interest) uint32 {
	var e uint32
	if i&api.Readable != 0 {
		e |= unix.EPOLLIN
	}
	if i&api.Writable != 0 {
		e |= unix.EPOLLOUT
	}
	if i&api.Priority != 0 {
		e |= unix.EPOLLPRI
	}
	if i&api.ReadHangUp != 0 {
		e |= unix.EPOLLRDHUP
	}
	if i&api.EdgeTriggered != 0 {
		e |= unix.EPOLLET
	}
	if i&api.OneShot != 0 {
		e |= unix.EPOLLONESHOT
	}
	return e
}

func fromEpoll(e uint32) api.Interest {
	var i api.Interest
	if e&unix.EPOLLIN != 0 {
		i |= api.Readable
	}
	if e&unix.EPOLLOUT != 0 {
		i |= api.Writable
	}
	if e&unix.EPOLLPRI != 0 {
		i |= api.Priority
	}
	if e&unix.EPOLLRDHUP != 0 {
		i |= api.ReadHangUp
	}
	if e&unix.EPOLLERR != 0 {
		i |= api.Errored
	}
	if e&unix.EPOLLHUP != 0 {
		i |= api.HangUp
	}
	return i
}

// epollPwait is epoll_pwait(2); x/sys/unix only wraps epoll_wait.
func epollPwait(epfd int, events []unix.EpollEvent, msec int, blocked api.SignalMask) (int, error) {
	set := kernelSigset(blocked)
	r1, _, errno := unix.Syscall6(unix.SYS_EPOLL_PWAIT,
		uintptr(epfd),
		uintptr(unsafe.Pointer(&events[0])),
		uintptr(len(events)),
		uintptr(msec),
		uintptr(unsafe.Pointer(&set)),
		kernelSigsetSize)
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}

// kernelSigsetSize is _NSIG/8 of the running kernel ABI.
var kernelSigsetSize = func() uintptr {
	if strings.HasPrefix(runtime.GOARCH, "mips") {
		return 16
	}
	return 8
}()

func kernelSigset(m api.SignalMask) unix.Sigset_t {
	var set unix.Sigset_t
	width := int(unsafe.Sizeof(set.Val[0]) * 8)
	limit := int(kernelSigsetSize) * 8
	for _, sig := range m.Signals() {
		if sig < 1 || sig > limit {
			continue
		}
		b := sig - 1
		set.Val[b/width] |= 1 << uint(b%width)
	}
	return set
}
