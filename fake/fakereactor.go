// Package fake
// Author: momentics <momentics@gmail.com>
//
// In-memory readiness multiplexer for tests that must not depend on the
// host kernel.

package fake

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-sock/api"
)

type watch struct {
	interest api.Interest
	data     api.UserData
	armed    bool
}

// Multiplexer is a fake api.Multiplexer. Readiness is injected with Trigger
// and handed out by Poll in FIFO order. It follows the same registration
// rules as the real backends, including one-shot disarming.
type Multiplexer struct {
	mu      sync.Mutex
	closed  bool
	watched map[int]*watch
	pending *queue.Queue // pendingEvent
	wake    chan struct{}

	Polls int
}

type pendingEvent struct {
	fd    int
	ready api.Interest
}

// NewMultiplexer returns an empty fake multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{
		watched: make(map[int]*watch),
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
	}
}

func (m *Multiplexer) Backend() string { return "fake" }

func (m *Multiplexer) Fd() int { return -1 }

func (m *Multiplexer) Add(fd int, interest api.Interest, data api.UserData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return api.ErrClosed
	}
	if _, ok := m.watched[fd]; ok {
		return api.NewError(api.ErrCodeAlreadyWatched, "add").WithContext("fd", fd)
	}
	m.watched[fd] = &watch{interest: interest, data: data, armed: true}
	return nil
}

func (m *Multiplexer) Update(fd int, interest api.Interest, data api.UserData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return api.ErrClosed
	}
	w, ok := m.watched[fd]
	if !ok {
		return api.NewError(api.ErrCodeNotWatched, "update").WithContext("fd", fd)
	}
	*w = watch{interest: interest, data: data, armed: true}
	return nil
}

func (m *Multiplexer) Remove(fd int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return api.ErrClosed
	}
	if _, ok := m.watched[fd]; !ok {
		return api.NewError(api.ErrCodeNotWatched, "remove").WithContext("fd", fd)
	}
	delete(m.watched, fd)
	return nil
}

// Watched reports the interest registered for fd.
func (m *Multiplexer) Watched(fd int) (api.Interest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.watched[fd]
	if !ok {
		return 0, false
	}
	return w.interest, true
}

// Trigger marks fd ready. Readiness outside the registered interest is
// dropped, except Errored and HangUp which are always reported.
func (m *Multiplexer) Trigger(fd int, ready api.Interest) {
	m.mu.Lock()
	m.pending.Add(pendingEvent{fd: fd, ready: ready})
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Multiplexer) Poll(maxEvents int, timeout time.Duration, _ api.SignalMask) ([]api.ReadyEvent, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, api.ErrClosed
		}
		m.Polls++
		out := m.collect(maxEvents)
		m.mu.Unlock()
		if len(out) > 0 || timeout == 0 {
			return out, nil
		}
		select {
		case <-m.wake:
		case <-deadline:
			return []api.ReadyEvent{}, nil
		}
	}
}

func (m *Multiplexer) collect(maxEvents int) []api.ReadyEvent {
	out := []api.ReadyEvent{}
	for len(out) < maxEvents && m.pending.Length() > 0 {
		p := m.pending.Remove().(pendingEvent)
		w, ok := m.watched[p.fd]
		if !ok || !w.armed {
			continue
		}
		ready := p.ready & (w.interest.Readiness() | api.Errored | api.HangUp)
		if ready == 0 {
			continue
		}
		if w.interest.Has(api.OneShot) {
			w.armed = false
		}
		out = append(out, api.ReadyEvent{Ready: ready, Data: api.U64(w.data.Raw())})
	}
	return out
}

func (m *Multiplexer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return api.ErrClosed
	}
	m.closed = true
	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}
