// Package schedule runs the monitor's callbacks. A Scheduler executes every
// callback on one logical thread, so code scheduled through it never needs
// locks. Loop is the wall-clock implementation; Manual is a virtual clock
// for tests.
package schedule

import "time"

// Handle cancels a scheduled task. Cancel is idempotent, and a cancelled
// task never runs again, even if it was already due.
type Handle interface {
	Cancel()
}

// Scheduler runs tasks serially.
type Scheduler interface {
	// Every runs fn every d until cancelled. The first run is after d.
	Every(d time.Duration, fn func()) Handle

	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle

	// Post queues fn to run as soon as possible. Safe to call from any
	// goroutine; it is how asynchronous results re-enter the loop.
	Post(fn func())

	// Now returns the scheduler's current time.
	Now() time.Time
}
