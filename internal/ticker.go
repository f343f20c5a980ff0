package internal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrTaskStarted = errors.New("periodic task already started")

// PeriodicTask calls a function on a fixed interval until it is stopped.
// Stop is idempotent and does not wait for a running call, which is allowed to finish.
// A task runs at most once, create a new one to restart.
type PeriodicTask struct {
	name     string
	interval time.Duration
	fn       func()
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  atomic.Bool
}

func NewPeriodicTask(name string, interval time.Duration, fn func(), logger *slog.Logger) *PeriodicTask {
	if logger == nil {
		logger = discardLogger()
	}

	return &PeriodicTask{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger.With(slog.String("task", name)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the task loop in its own goroutine.
func (pt *PeriodicTask) Start(ctx context.Context) {
	go func() {
		if err := pt.Run(ctx); err != nil {
			pt.logger.Error("not started", slog.Any("error", err))
		}
	}()
}

// Run blocks until Stop is called or the context is cancelled and returns nil then.
// Only the first call runs the loop, later calls return ErrTaskStarted right away.
func (pt *PeriodicTask) Run(ctx context.Context) error {
	if !pt.started.CompareAndSwap(false, true) {
		return ErrTaskStarted
	}
	defer close(pt.done)

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A stop that raced with the tick wins.
			select {
			case <-pt.stop:
				return nil
			default:
			}
			pt.runOnce()
		case <-pt.stop:
			pt.logger.Debug("stopped")
			return nil
		case <-ctx.Done():
			pt.logger.Debug("context done", slog.Any("cause", context.Cause(ctx)))
			return nil
		}
	}
}

// Stop prevents further calls. Calling it more than once is fine.
func (pt *PeriodicTask) Stop() {
	pt.stopOnce.Do(func() {
		close(pt.stop)
	})
}

// Done is closed once the loop has exited.
func (pt *PeriodicTask) Done() <-chan struct{} {
	return pt.done
}

func (pt *PeriodicTask) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			pt.logger.Error("periodic call panicked", slog.Any("panic", r))
		}
	}()

	pt.fn()
}
