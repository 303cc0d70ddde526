// Package course holds the lesson-level logic of the monitor: reading the
// study clock and lesson list from a page, turning clock text into a
// completion percentage, and deciding when to move to the next lesson.
//
// Nothing in this package keeps data across ticks except State, which
// carries the play guard and the sticky all-complete flag.
package course
