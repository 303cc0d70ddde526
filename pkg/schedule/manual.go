package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing runs until the
// test calls Advance or Flush, which execute due work on the caller's
// goroutine in time order. Tasks due at the same instant run in the order
// they were scheduled.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	tasks  []*manualTask
	posted []func()
}

type manualTask struct {
	at        time.Time
	seq       uint64
	every     time.Duration
	fn        func()
	cancelled bool
}

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, fn)
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) Handle {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{at: m.now.Add(d), seq: m.seq, every: every, fn: fn}
	m.tasks = append(m.tasks, t)
	return &manualHandle{m: m, t: t}
}

// Pending returns the number of scheduled timer tasks not yet cancelled or
// finished.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Flush runs posted callbacks, including ones posted while flushing.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()

		fn()
	}
}

// Advance moves the clock forward by d, running posted callbacks and every
// task that falls due on the way.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	m.Flush()
	for {
		fn := m.nextDue(target)
		if fn == nil {
			break
		}
		fn()
		m.Flush()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest task due at or before target and moves the
// clock to its deadline. Repeating tasks are rescheduled.
func (m *Manual) nextDue(target time.Time) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at.Equal(m.tasks[j].at) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at.Before(m.tasks[j].at)
	})
	if len(m.tasks) == 0 || m.tasks[0].at.After(target) {
		return nil
	}

	t := m.tasks[0]
	m.now = t.at
	if t.every > 0 {
		m.seq++
		t.at = t.at.Add(t.every)
		t.seq = m.seq
	} else {
		m.tasks = m.tasks[1:]
		t.cancelled = true
	}
	return t.fn
}

type manualHandle struct {
	m *Manual
	t *manualTask
}

func (h *manualHandle) Cancel() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.t.cancelled = true
}
