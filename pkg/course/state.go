package course

// Ticket identifies one play request holding the guard.
type Ticket uint64

// State is the only data the monitor carries from one tick to the next.
// It is not safe for concurrent use; the monitor touches it from its loop
// goroutine only.
type State struct {
	completed bool
	guarded   bool
	ticket    Ticket
}

// Completed reports whether every lesson has been finished. Once true it
// stays true.
func (s *State) Completed() bool {
	return s.completed
}

// MarkCompleted sets the sticky completion flag. It reports whether this
// call made the transition.
func (s *State) MarkCompleted() bool {
	if s.completed {
		return false
	}
	s.completed = true
	return true
}

// Guarded reports whether a play request is in flight.
func (s *State) Guarded() bool {
	return s.guarded
}

// Acquire sets the guard for a new play request. It returns false when the
// guard is already held.
func (s *State) Acquire() (Ticket, bool) {
	if s.guarded {
		return 0, false
	}
	s.ticket++
	s.guarded = true
	return s.ticket, true
}

// Release clears the guard if t still owns it. Releases from earlier
// requests, or repeated releases of the same one, are ignored; the return
// value tells whether this call cleared the guard.
func (s *State) Release(t Ticket) bool {
	if !s.guarded || t != s.ticket {
		return false
	}
	s.guarded = false
	return true
}

// Owns reports whether t is the ticket currently holding the guard.
func (s *State) Owns(t Ticket) bool {
	return s.guarded && t == s.ticket
}

// ResetGuard clears the guard unconditionally and invalidates every
// outstanding ticket. Used when the page moves to another lesson.
func (s *State) ResetGuard() {
	s.ticket++
	s.guarded = false
}
