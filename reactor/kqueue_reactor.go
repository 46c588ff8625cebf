//go:build darwin || dragonfly || freebsd || netbsd || openbsd

// File: reactor/kqueue_reactor.go
// Author: momentics <momentics@gmail.com>
//
// kqueue(2) multiplexer for the BSDs and Darwin.

package reactor

import (
	"errors"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-sock/api"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// watch is one registered descriptor.
type watch struct {
	interest api.Interest
	data     api.UserData
}

// kqueueReactor implements api.Multiplexer on a kqueue. kqueue has no
// "already registered" notion and changes travel with kevent(2), so the
// registry is kept here and the type is not safe for concurrent use.
type kqueueReactor struct {
	kq       int
	closed   bool
	deferred bool
	log      *zap.Logger

	watched map[int]watch
	changes *queue.Queue // pending unix.Kevent_t
	events  []unix.Kevent_t
}

var zeroTimespec unix.Timespec

func openBackend(flags OpenFlags, o options) (api.Multiplexer, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, api.SyscallError("kqueue", err)
	}
	if flags&CloseOnExec != 0 {
		unix.CloseOnExec(kq)
	}
	return &kqueueReactor{
		kq:       kq,
		deferred: flags&DeferChanges != 0,
		log:      o.logger.With(zap.String("backend", "kqueue")),
		watched:  make(map[int]watch),
		changes:  queue.New(),
	}, nil
}

func (r *kqueueReactor) Backend() string { return "kqueue" }

func (r *kqueueReactor) Fd() int { return r.kq }

func (r *kqueueReactor) Add(fd int, interest api.Interest, data api.UserData) error {
	if r.closed {
		return api.ErrClosed
	}
	if _, ok := r.watched[fd]; ok {
		return alreadyWatched(fd, nil)
	}
	r.queueFilters(fd, 0, interest)
	if err := r.apply(fd, 0); err != nil {
		return err
	}
	r.watched[fd] = watch{interest: interest, data: data}
	r.log.Debug("fd registered",
		zap.Int("fd", fd), zap.Stringer("interest", interest), zap.Stringer("data", data))
	return nil
}

// Update re-adds every requested filter, which also re-arms one-shot
// filters, and deletes filters no longer requested.
func (r *kqueueReactor) Update(fd int, interest api.Interest, data api.UserData) error {
	if r.closed {
		return api.ErrClosed
	}
	w, ok := r.watched[fd]
	if !ok {
		return notWatched("update", fd, nil)
	}
	r.queueFilters(fd, w.interest, interest)
	if err := r.apply(fd, w.interest); err != nil {
		return err
	}
	r.watched[fd] = watch{interest: interest, data: data}
	return nil
}

func (r *kqueueReactor) Remove(fd int) error {
	if r.closed {
		return api.ErrClosed
	}
	w, ok := r.watched[fd]
	if !ok {
		return notWatched("remove", fd, nil)
	}
	r.queueFilters(fd, w.interest, 0)
	if err := r.apply(fd, w.interest); err != nil {
		return err
	}
	delete(r.watched, fd)
	r.log.Debug("fd removed", zap.Int("fd", fd))
	return nil
}

func wantsRead(i api.Interest) bool {
	return i&(api.Readable|api.Priority|api.ReadHangUp) != 0
}

func wantsWrite(i api.Interest) bool { return i&api.Writable != 0 }

// queueFilters queues the changes turning old into next.
func (r *kqueueReactor) queueFilters(fd int, old, next api.Interest) {
	flags := addFlags(next)
	for _, f := range []struct {
		filter    int
		had, want bool
	}{
		{unix.EVFILT_READ, wantsRead(old), wantsRead(next)},
		{unix.EVFILT_WRITE, wantsWrite(old), wantsWrite(next)},
	} {
		var ev unix.Kevent_t
		switch {
		case f.want:
			unix.SetKevent(&ev, fd, f.filter, flags)
		case f.had:
			unix.SetKevent(&ev, fd, f.filter, unix.EV_DELETE)
		default:
			continue
		}
		r.changes.Add(ev)
	}
}

func addFlags(i api.Interest) int {
	flags := unix.EV_ADD
	if i&api.EdgeTriggered != 0 {
		flags |= unix.EV_CLEAR
	}
	if i&api.OneShot != 0 {
		flags |= unix.EV_ONESHOT
	}
	return flags
}

// apply flushes the change list now, unless changes are deferred to Poll.
// Deleting a filter that already fired in one-shot mode yields ENOENT, and
// one whose descriptor was already closed yields EBADF; both are ignored.
// When a change fails, the filters already changed are restored to old so
// that the kernel keeps matching the registry.
func (r *kqueueReactor) apply(fd int, old api.Interest) error {
	if r.deferred {
		return nil
	}
	var (
		first   error
		applied []unix.Kevent_t
	)
	for r.changes.Length() > 0 {
		ev := r.changes.Remove().(unix.Kevent_t)
		if first != nil {
			continue
		}
		_, err := unix.Kevent(r.kq, []unix.Kevent_t{ev}, nil, &zeroTimespec)
		if err == nil {
			applied = append(applied, ev)
			continue
		}
		if int(ev.Flags)&unix.EV_DELETE != 0 && (errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EBADF)) {
			continue
		}
		first = syscallError("kevent", fd, err)
	}
	if first != nil {
		r.restore(fd, applied, old)
	}
	return first
}

// restore undoes applied changes, putting each filter back as old wants it.
func (r *kqueueReactor) restore(fd int, applied []unix.Kevent_t, old api.Interest) {
	for _, ev := range applied {
		had := wantsWrite(old)
		if int(ev.Filter) == unix.EVFILT_READ {
			had = wantsRead(old)
		}
		var undo unix.Kevent_t
		if had {
			unix.SetKevent(&undo, fd, int(ev.Filter), addFlags(old))
		} else {
			unix.SetKevent(&undo, fd, int(ev.Filter), unix.EV_DELETE)
		}
		if _, err := unix.Kevent(r.kq, []unix.Kevent_t{undo}, nil, &zeroTimespec); err != nil {
			r.log.Warn("kevent rollback failed", zap.Int("fd", fd), zap.Error(err))
		}
	}
}

// drain empties the change list into a slice for submission with a wait.
func (r *kqueueReactor) drain() []unix.Kevent_t {
	if r.changes.Length() == 0 {
		return nil
	}
	out := make([]unix.Kevent_t, 0, r.changes.Length())
	for r.changes.Length() > 0 {
		out = append(out, r.changes.Remove().(unix.Kevent_t))
	}
	return out
}

// Poll submits pending changes and waits with nanosecond precision.
// Read and write filter events for one descriptor are merged. Signal
// masks cannot be swapped atomically with kevent, so a non-empty mask is
// rejected with api.ErrNotSupported.
func (r *kqueueReactor) Poll(maxEvents int, timeout time.Duration, blocked api.SignalMask) ([]api.ReadyEvent, error) {
	if r.closed {
		return nil, api.ErrClosed
	}
	if blocked != nil && len(blocked.Signals()) > 0 {
		return nil, api.NewError(api.ErrCodeNotSupported, "kqueue cannot block signals during a wait")
	}
	if maxEvents <= 0 {
		return nil, syscallError("kevent", r.kq, unix.EINVAL)
	}
	if cap(r.events) < maxEvents {
		r.events = make([]unix.Kevent_t, maxEvents)
	}
	events := r.events[:maxEvents]

	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}

	n, err := unix.Kevent(r.kq, r.drain(), events, ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return []api.ReadyEvent{}, nil
		}
		return nil, syscallError("kevent", r.kq, err)
	}

	out := make([]api.ReadyEvent, 0, n)
	index := make(map[int]int, n)
	for i := 0; i < n; i++ {
		ev := &events[i]
		fd := int(ev.Ident)
		w, ok := r.watched[fd]
		if !ok {
			continue
		}
		ready := fromKevent(ev)
		if ready == 0 {
			continue
		}
		if j, seen := index[fd]; seen {
			out[j].Ready |= ready
			continue
		}
		index[fd] = len(out)
		out = append(out, api.ReadyEvent{Ready: ready, Data: api.U64(w.data.Raw())})
	}
	return out, nil
}

func fromKevent(ev *unix.Kevent_t) api.Interest {
	var i api.Interest
	flags := int(ev.Flags)
	if flags&unix.EV_ERROR != 0 {
		if ev.Data != 0 {
			i |= api.Errored
		}
		return i
	}
	switch int(ev.Filter) {
	case unix.EVFILT_READ:
		i |= api.Readable
		if flags&unix.EV_EOF != 0 {
			i |= api.ReadHangUp
		}
	case unix.EVFILT_WRITE:
		i |= api.Writable
		if flags&unix.EV_EOF != 0 {
			i |= api.HangUp
		}
	}
	if flags&unix.EV_EOF != 0 && ev.Fflags != 0 {
		i |= api.Errored
	}
	return i
}

// Close releases the kqueue. Pending deferred changes are discarded.
func (r *kqueueReactor) Close() error {
	if r.closed {
		return api.ErrClosed
	}
	r.closed = true
	r.drain()
	if err := unix.Close(r.kq); err != nil {
		return api.SyscallError("close", err)
	}
	r.log.Debug("multiplexer closed", zap.Int("fd", r.kq))
	return nil
}
