// Package overlay renders the monitor status: as HTML markup for the panel
// injected into the course page, and as a styled line for the terminal.
package overlay

import (
	"github.com/entrhq/autostudy/pkg/course"
)

// Mode selects one of the mutually exclusive panel layouts.
type Mode int

const (
	// ModeLoading is shown while the study clock cannot be read.
	ModeLoading Mode = iota
	// ModeInProgress is the normal lesson display.
	ModeInProgress
	// ModeAllComplete is shown once every lesson is finished.
	ModeAllComplete
)

func (m Mode) String() string {
	switch m {
	case ModeInProgress:
		return "in_progress"
	case ModeAllComplete:
		return "all_complete"
	default:
		return "loading"
	}
}

// View is the complete input of the renderers.
type View struct {
	Mode    Mode
	Course  string
	Studied string
	Total   string
	Percent int

	// Position is the one-based index of the active lesson, Count the
	// number of lessons. Position is 0 when no lesson is active.
	Position int
	Count    int
	IsLast   bool
}

// Compose derives the view for one observation. The sticky completion flag
// wins over everything else; an unreadable clock yields the loading layout.
func Compose(obs course.Observation, percent int, completed bool) View {
	v := View{
		Course:   obs.Course,
		Studied:  obs.Time.Studied,
		Total:    obs.Time.Total,
		Percent:  percent,
		Position: obs.Index.Position(),
		Count:    obs.Index.Total,
		IsLast:   obs.Index.IsLast,
	}

	switch {
	case completed:
		v.Mode = ModeAllComplete
	case !obs.Time.Valid:
		v.Mode = ModeLoading
	default:
		v.Mode = ModeInProgress
	}
	return v
}

// BarWidth is the progress bar fill in percent, limited to 0..100.
func (v View) BarWidth() int {
	switch {
	case v.Percent < 0:
		return 0
	case v.Percent > 100:
		return 100
	default:
		return v.Percent
	}
}

// Switching reports whether the view should announce the move to the next
// lesson.
func (v View) Switching() bool {
	return v.Mode == ModeInProgress && v.Percent >= course.CompleteThreshold && !v.IsLast
}
