package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// defaultQueueSize bounds the number of callbacks waiting for the loop.
const defaultQueueSize = 64

// Loop is a Scheduler backed by real timers. Callbacks run on the goroutine
// that calls Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop. Callbacks are queued until Run starts.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), defaultQueueSize),
		done:  make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is done. Callbacks still queued
// at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post implements Scheduler. After Run has returned, Post is a no-op.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	h := &loopHandle{}
	h.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !h.cancelled.Load() {
				fn()
			}
		})
	})
	return h
}

// Every implements Scheduler. Ticks that pile up while the loop is busy are
// coalesced by the underlying ticker.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	h := &loopHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.Post(func() {
					if !h.cancelled.Load() {
						fn()
					}
				})
			}
		}
	}()
	return h
}

type loopHandle struct {
	cancelled atomic.Bool
	timer     *time.Timer
	stop      chan struct{}
	once      sync.Once
}

func (h *loopHandle) Cancel() {
	h.once.Do(func() {
		h.cancelled.Store(true)
		if h.timer != nil {
			h.timer.Stop()
		}
		if h.stop != nil {
			close(h.stop)
		}
	})
}
