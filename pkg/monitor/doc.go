// Package monitor drives a course page unattended.
//
// A Monitor runs one tick per interval on a schedule.Scheduler. Each tick
// re-reads the page, advances to the next lesson when the active one is
// complete, repaints the status overlay, closes interstitial dialogs and
// resumes a paused video. All of it happens on the scheduler's single
// thread; the play request is the only asynchronous step, and its result
// is posted back to that thread.
//
// # Play guard
//
// At most one play request is in flight. The guard is taken before the
// request and released by whichever comes first:
//
//   - the request fails (immediately)
//   - the request succeeds (after Config.PlayGrace)
//   - the request has not settled after Config.PlayTimeout
//
// Later signals for the same request are ignored. A request that times out
// is abandoned: its context is cancelled, so the page adapter stops waiting
// on it, and it no longer counts as in flight. Switching lessons drops the
// guard and invalidates outstanding requests.
package monitor
