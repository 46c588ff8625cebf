// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral construction options and timeout conversion shared by
// the epoll and kqueue backends.

package reactor

import (
	"math"
	"time"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/control"
	"go.uber.org/zap"
)

// OpenFlags configure Open.
type OpenFlags uint

const (
	// CloseOnExec marks the kernel object close-on-exec.
	CloseOnExec OpenFlags = 1 << iota
	// DeferChanges makes the kqueue backend queue registrations and submit
	// them with the next Poll instead of applying them immediately. It has
	// no effect on epoll.
	DeferChanges
)

// Option configures Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used by the multiplexer.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open creates the platform multiplexer.
func Open(flags OpenFlags, opts ...Option) (api.Multiplexer, error) {
	o := options{logger: control.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	m, err := openBackend(flags, o)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("multiplexer opened",
		zap.String("backend", m.Backend()), zap.Int("fd", m.Fd()))
	return m, nil
}

// timeoutMillis converts a Poll timeout for millisecond-granular waits,
// rounding down. Negative durations block.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
