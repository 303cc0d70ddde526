package course

import (
	"context"

	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/page"
)

// CompleteThreshold is the percentage at which a lesson counts as done.
const CompleteThreshold = 100

// Phase is the position of the monitor in the course.
type Phase int

const (
	// PhaseInProgress means more lessons follow the active one.
	PhaseInProgress Phase = iota
	// PhaseLastLesson means the active lesson is the final entry.
	PhaseLastLesson
	// PhaseAllComplete means every lesson has been finished.
	PhaseAllComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLastLesson:
		return "last_lesson"
	case PhaseAllComplete:
		return "all_complete"
	default:
		return "in_progress"
	}
}

// PhaseOf derives the phase from the sticky flag and the lesson position.
func PhaseOf(state *State, info IndexInfo) Phase {
	switch {
	case state.Completed():
		return PhaseAllComplete
	case info.IsLast:
		return PhaseLastLesson
	default:
		return PhaseInProgress
	}
}

// Outcome is the result of one Advance call.
type Outcome int

const (
	// OutcomeNone means nothing changed.
	OutcomeNone Outcome = iota
	// OutcomeAdvanced means the next lesson entry was activated.
	OutcomeAdvanced
	// OutcomeAllComplete means the last lesson finished and the sticky
	// flag was set.
	OutcomeAllComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeAllComplete:
		return "all_complete"
	default:
		return "none"
	}
}

// Advancer moves the page to the next lesson once the active one is done.
type Advancer struct {
	adapter page.Adapter
	state   *State
	logger  *logging.Logger
}

// NewAdvancer creates an advancer operating on state.
func NewAdvancer(adapter page.Adapter, state *State, logger *logging.Logger) *Advancer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Advancer{adapter: adapter, state: state, logger: logger}
}

// Advance applies the lesson transition for the given progress. On
// OutcomeAdvanced the play guard has been reset; the caller is expected to
// re-read the page after it settles.
func (a *Advancer) Advance(ctx context.Context, info IndexInfo, percent int) Outcome {
	if percent < CompleteThreshold || a.state.Completed() {
		return OutcomeNone
	}

	switch PhaseOf(a.state, info) {
	case PhaseLastLesson:
		a.state.MarkCompleted()
		a.logger.Infof("all %d lessons completed", info.Total)
		return OutcomeAllComplete
	case PhaseAllComplete:
		return OutcomeNone
	}

	if !info.HasActive() {
		a.logger.Debugf("lesson complete but no active entry found, not advancing")
		return OutcomeNone
	}

	next := info.Current + 1
	if err := a.adapter.ActivateEntry(ctx, next); err != nil {
		a.logger.Warnf("failed to switch to lesson %d/%d: %v", next+1, info.Total, err)
		return OutcomeNone
	}

	a.logger.Infof("switched to next lesson: %d/%d", next+1, info.Total)
	a.state.ResetGuard()
	return OutcomeAdvanced
}
