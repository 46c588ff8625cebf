// File: reactor/dispatcher.go
// Author: momentics <momentics@gmail.com>
//
// Callback dispatch on top of any api.Multiplexer.

package reactor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/control"
	"go.uber.org/zap"
)

// Callback is invoked with the descriptor and the readiness that fired.
type Callback func(fd int, ready api.Interest)

// Metric keys recorded by the Dispatcher.
const (
	MetricPolls          = "reactor.polls"
	MetricEvents         = "reactor.events"
	MetricWatched        = "reactor.watched"
	MetricCallbackPanics = "reactor.callback_panics"
	MetricStaleEvents    = "reactor.stale_events"
)

type registration struct {
	fd int
	cb Callback
}

// Dispatcher maps descriptors to callbacks. Each registration gets a fresh
// U64 token as its UserData, so an event for a descriptor that was removed
// and re-added within one poll batch is never delivered to the new callback.
//
// Register, Modify and Unregister are safe from any goroutine when the
// underlying multiplexer allows it (epoll). PollOnce and Run must be
// called from a single goroutine.
type Dispatcher struct {
	mux       api.Multiplexer
	maxEvents int
	metrics   *control.MetricsRegistry
	log       *zap.Logger

	mu      sync.Mutex
	next    uint64
	byToken map[uint64]registration
	byFD    map[int]uint64
}

// DispatcherOption configures NewDispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxEvents bounds the events fetched per poll.
func WithMaxEvents(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxEvents = n
		}
	}
}

// WithMetrics records poll and callback counters into mr.
func WithMetrics(mr *control.MetricsRegistry) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = mr }
}

// WithDispatcherLogger sets the logger used for callback panics. A nil
// logger keeps the package default.
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher wraps mux. The Dispatcher does not own mux.
func NewDispatcher(mux api.Multiplexer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mux:       mux,
		maxEvents: 128,
		metrics:   control.NewMetricsRegistry(),
		log:       control.Logger(),
		byToken:   make(map[uint64]registration),
		byFD:      make(map[int]uint64),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = control.Logger()
	}
	d.metrics.Set("reactor.backend", mux.Backend())
	return d
}

// Multiplexer returns the wrapped multiplexer.
func (d *Dispatcher) Multiplexer() api.Multiplexer { return d.mux }

// Metrics returns the registry counters are recorded into.
func (d *Dispatcher) Metrics() *control.MetricsRegistry { return d.metrics }

// Register watches fd and routes its events to cb.
func (d *Dispatcher) Register(fd int, interest api.Interest, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("reactor: nil callback for fd %d", fd)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byFD[fd]; ok {
		return alreadyWatched(fd, nil)
	}
	d.next++
	token := d.next
	if err := d.mux.Add(fd, interest, api.U64(token)); err != nil {
		return err
	}
	d.byToken[token] = registration{fd: fd, cb: cb}
	d.byFD[fd] = token
	d.metrics.Set(MetricWatched, len(d.byFD))
	return nil
}

// Modify changes the interest of a registered descriptor, keeping its callback.
func (d *Dispatcher) Modify(fd int, interest api.Interest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	token, ok := d.byFD[fd]
	if !ok {
		return notWatched("modify", fd, nil)
	}
	return d.mux.Update(fd, interest, api.U64(token))
}

// Unregister stops watching fd. Events already fetched for it are dropped.
func (d *Dispatcher) Unregister(fd int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	token, ok := d.byFD[fd]
	if !ok {
		return notWatched("unregister", fd, nil)
	}
	delete(d.byFD, fd)
	delete(d.byToken, token)
	d.metrics.Set(MetricWatched, len(d.byFD))
	return d.mux.Remove(fd)
}

// Len returns the number of registered descriptors.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byFD)
}

// PollOnce waits once and runs the callbacks of ready descriptors on the
// calling goroutine. It returns the number of callbacks run. A panicking
// callback is recovered and logged so that the loop survives it.
func (d *Dispatcher) PollOnce(timeout time.Duration) (int, error) {
	events, err := d.mux.Poll(d.maxEvents, timeout, nil)
	if err != nil {
		return 0, err
	}
	d.metrics.Add(MetricPolls, 1)

	ran := 0
	for _, ev := range events {
		token, _ := ev.Data.AsU64()
		d.mu.Lock()
		reg, ok := d.byToken[token]
		d.mu.Unlock()
		if !ok {
			d.metrics.Add(MetricStaleEvents, 1)
			continue
		}
		d.invoke(reg, ev.Ready)
		ran++
	}
	d.metrics.Add(MetricEvents, int64(ran))
	return ran, nil
}

func (d *Dispatcher) invoke(reg registration, ready api.Interest) {
	defer func() {
		if p := recover(); p != nil {
			d.metrics.Add(MetricCallbackPanics, 1)
			d.log.Error("reactor callback panicked",
				zap.Int("fd", reg.fd), zap.Stringer("ready", ready), zap.Any("panic", p))
		}
	}()
	reg.cb(reg.fd, ready)
}

// Run polls until ctx is done or the multiplexer fails. tick bounds each
// wait so that cancellation is noticed.
func (d *Dispatcher) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := d.PollOnce(tick); err != nil {
			return err
		}
	}
}

// RegisterProbes exposes the dispatcher state through dp.
func (d *Dispatcher) RegisterProbes(dp api.Debug) {
	dp.RegisterProbe("reactor.backend", func() any { return d.mux.Backend() })
	dp.RegisterProbe("reactor.watched", func() any { return d.Len() })
	dp.RegisterProbe("reactor.metrics", func() any { return d.metrics.GetSnapshot() })
}
