package monitor

import (
	"context"
	"time"

	"github.com/entrhq/autostudy/pkg/course"
	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/overlay"
	"github.com/entrhq/autostudy/pkg/page"
	"github.com/entrhq/autostudy/pkg/schedule"
)

// Snapshot is what one refresh observed. It is published to observers
// after every refresh and for ticks skipped on non-matching pages.
type Snapshot struct {
	At  time.Time
	URL string

	// OnTarget is false when the page address did not match; the other
	// fields are then zero.
	OnTarget bool

	View      overlay.View
	Outcome   course.Outcome
	Completed bool
	Guarded   bool
}

// Observer receives snapshots on the scheduler thread. It must not block.
type Observer func(Snapshot)

// Monitor is the periodic driver. Every method except New must run on the
// scheduler's thread, or after the scheduler has stopped.
type Monitor struct {
	adapter page.Adapter
	sched   schedule.Scheduler
	logger  *logging.Logger
	cfg     Config

	state    *course.State
	reader   *course.Reader
	calc     *course.Calculator
	advancer *course.Advancer

	observers []Observer

	ctx     context.Context
	ticker  schedule.Handle
	timers  map[uint64]schedule.Handle
	nextID  uint64
	running bool
	stopped bool
}

// New creates a monitor for adapter. The configuration must be valid.
func New(adapter page.Adapter, sched schedule.Scheduler, logger *logging.Logger, cfg Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	state := &course.State{}
	return &Monitor{
		adapter:  adapter,
		sched:    sched,
		logger:   logger,
		cfg:      cfg,
		state:    state,
		reader:   course.NewReader(adapter, logger.Named("reader"), cfg.Markers),
		calc:     course.NewCalculator(logger.Named("progress")),
		advancer: course.NewAdvancer(adapter, state, logger.Named("advancer")),
		timers:   make(map[uint64]schedule.Handle),
		ctx:      context.Background(),
	}, nil
}

// OnSnapshot registers an observer.
func (m *Monitor) OnSnapshot(fn Observer) {
	m.observers = append(m.observers, fn)
}

// State exposes the carried flags for inspection.
func (m *Monitor) State() *course.State {
	return m.state
}

// Start paints the overlay once and begins ticking. ctx is handed to every
// adapter call; cancelling it does not stop the ticks, Stop does.
func (m *Monitor) Start(ctx context.Context) {
	if m.running || m.stopped {
		return
	}
	m.running = true
	m.ctx = ctx

	m.logger.Infof("course monitor started, checking every %s", m.cfg.Interval)
	if m.onTarget() {
		m.refresh()
	}
	m.ticker = m.sched.Every(m.cfg.Interval, m.Tick)
}

// Stop cancels the tick and every pending deferred task, then removes the
// overlay. ctx bounds the overlay removal. Stop is idempotent.
func (m *Monitor) Stop(ctx context.Context) {
	if m.stopped {
		return
	}
	m.stopped = true
	m.running = false

	if m.ticker != nil {
		m.ticker.Cancel()
	}
	for id, h := range m.timers {
		h.Cancel()
		delete(m.timers, id)
	}

	if err := m.adapter.RemoveOverlay(ctx); err != nil {
		m.logger.Debugf("failed to remove overlay: %v", err)
	}
	m.logger.Infof("course monitor stopped")
}

// Tick performs one check of the page.
func (m *Monitor) Tick() {
	if m.stopped {
		return
	}

	if !m.onTarget() {
		m.logger.Debugf("page %s does not match, skipping check", m.adapter.URL())
		m.publish(Snapshot{At: m.sched.Now(), URL: m.adapter.URL()})
		return
	}

	m.refresh()
	m.logger.Debugf("check at %s", m.sched.Now().Format(time.DateTime))

	m.dismissDialog()

	if m.state.Completed() {
		return
	}
	m.resumePlayback()
}

func (m *Monitor) onTarget() bool {
	return m.cfg.Matcher == nil || m.cfg.Matcher.Match(m.adapter.URL())
}

// refresh reads the page, applies the lesson transition and repaints.
func (m *Monitor) refresh() {
	if m.stopped {
		return
	}

	obs := m.reader.Read(m.ctx)

	var percent int
	outcome := course.OutcomeNone
	if obs.Time.Valid {
		percent = m.calc.Percent(obs.Time.Studied, obs.Time.Total)
		outcome = m.advancer.Advance(m.ctx, obs.Index, percent)
		if outcome == course.OutcomeAdvanced {
			m.after(m.cfg.SettleDelay, m.refresh)
		}
	}

	view := overlay.Compose(obs, percent, m.state.Completed())
	markup, err := overlay.Render(view)
	if err != nil {
		m.logger.Warnf("%v", err)
	} else if err := m.adapter.ShowOverlay(m.ctx, markup); err != nil {
		m.logger.Warnf("failed to update overlay: %v", err)
	}

	m.publish(Snapshot{
		At:        m.sched.Now(),
		URL:       m.adapter.URL(),
		OnTarget:  true,
		View:      view,
		Outcome:   outcome,
		Completed: m.state.Completed(),
		Guarded:   m.state.Guarded(),
	})
}

func (m *Monitor) dismissDialog() {
	closed, err := m.adapter.DismissDialog(m.ctx)
	switch {
	case err != nil:
		m.logger.Warnf("failed to close dialog: %v", err)
	case closed:
		m.logger.Verbosef("dialog detected and closed")
	}
}

func (m *Monitor) publish(s Snapshot) {
	for _, fn := range m.observers {
		fn(s)
	}
}

// after runs fn on the scheduler after d unless the monitor stops first.
// The returned func cancels it.
func (m *Monitor) after(d time.Duration, fn func()) func() {
	m.nextID++
	id := m.nextID
	m.timers[id] = m.sched.After(d, func() {
		delete(m.timers, id)
		if !m.stopped {
			fn()
		}
	})
	return func() {
		if h, ok := m.timers[id]; ok {
			h.Cancel()
			delete(m.timers, id)
		}
	}
}
