package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned when work is submitted to a closed loop
var ErrLoopClosed = errors.New("event loop closed")

// Loop is a real-time Scheduler that serializes every callback and every
// submitted event onto the goroutine running Run
type Loop struct {
	events    chan func()
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewLoop creates a loop with room for buffer queued events
func NewLoop(buffer int, logger *slog.Logger) *Loop {
	if buffer < 1 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Do queues fn to run on the loop goroutine.
// AIDEV-NOTE: Must not be called from inside a loop callback while the buffer is full.
func (l *Loop) Do(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}

	select {
	case l.events <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// After runs fn on the loop goroutine once d has elapsed
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Do(func() {
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
	})
	return t
}

// Run processes events until ctx is cancelled or Close is called
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.events:
			l.execute(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.logger.Info("Exit the event loop.")
			return ctx.Err()
		}
	}
}

// Close stops the loop. Pending timers become no-ops.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Event handler panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

type loopTimer struct {
	timer *time.Timer
	state atomic.Int32
}

func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	t.timer.Stop()
	return true
}
