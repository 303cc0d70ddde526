package monitor

import (
	"context"

	"github.com/entrhq/autostudy/pkg/course"
)

// resumePlayback requests playback when the player sits paused and no
// request is in flight.
func (m *Monitor) resumePlayback() {
	state, err := m.adapter.PlayerState(m.ctx)
	if err != nil {
		m.logger.Warnf("failed to read player state: %v", err)
		return
	}
	if !state.Present || !state.Paused {
		return
	}

	ticket, ok := m.state.Acquire()
	if !ok {
		m.logger.Debugf("video paused but a play request is in flight")
		return
	}
	m.logger.Verbosef("video paused, requesting playback")

	// the request is abandoned on timeout; its context tells the adapter
	// to stop waiting for it
	playCtx, cancelPlay := context.WithTimeout(m.ctx, m.cfg.PlayTimeout)
	cancelTimeout := m.after(m.cfg.PlayTimeout, func() {
		cancelPlay()
		if m.state.Release(ticket) {
			m.logger.Warnf("play request did not settle within %s, abandoning it", m.cfg.PlayTimeout)
		}
	})

	m.adapter.RequestPlay(playCtx, func(err error) {
		m.sched.Post(func() {
			cancelPlay()
			m.settled(ticket, err, cancelTimeout)
		})
	})
}

// settled handles the outcome of the play request identified by ticket.
func (m *Monitor) settled(ticket course.Ticket, err error, cancelTimeout func()) {
	if m.stopped {
		return
	}
	if !m.state.Owns(ticket) {
		m.logger.Debugf("ignoring settlement of stale play request %d", ticket)
		return
	}
	cancelTimeout()

	if err != nil {
		m.state.Release(ticket)
		m.logger.Warnf("playback failed: %v", err)
		return
	}

	m.logger.Verbosef("video resumed")
	m.after(m.cfg.PlayGrace, func() {
		m.state.Release(ticket)
	})
}
