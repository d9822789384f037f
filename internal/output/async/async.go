package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/spfeed/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the record) when
// the buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithLogger sets the logger used for drops and drain timeouts.
// Default: zap.L() at construction time.
func WithLogger(l *zap.Logger) Option {
	return func(a *Async) { a.log = l }
}

// WithDrainTimeout bounds how long Close waits for buffered records.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async decouples record production from consumption via a buffered channel.
// A background goroutine drains it to the wrapped output. Errors from the
// inner output are passed to errFunc rather than propagated to the caller.
type Async struct {
	inner        output.Output
	ch           chan any
	done         chan struct{}
	log          *zap.Logger
	errFunc      func(error)
	bufSize      int
	drainTimeout time.Duration
	dropOnFull   bool
	closeOnce    sync.Once
}

var _ output.Output = (*Async)(nil)

// New wraps an output.Output in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		log:          zap.L(),
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("async")
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.log.Warn("inner output write failed", zap.Error(err)) }
	}
	a.ch = make(chan any, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues v. By default it blocks while the buffer is full, returning
// ctx.Err() if ctx ends first. With WithDropOnFull it returns nil at once
// and the record is lost.
func (a *Async) Write(ctx context.Context, v any) error {
	if a.dropOnFull {
		select {
		case a.ch <- v:
		default:
			a.log.Warn("buffer full, dropping record", zap.Int("capacity", a.bufSize))
		}
		return nil
	}
	select {
	case a.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(a.drainTimeout):
			a.log.Warn("drain timed out", zap.Int("pending", len(a.ch)))
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for v := range a.ch {
		if err := a.inner.Write(context.Background(), v); err != nil {
			a.errFunc(err)
		}
	}
}
