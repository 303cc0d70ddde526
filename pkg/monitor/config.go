package monitor

import (
	"fmt"
	"time"
)

// Default timings.
const (
	DefaultInterval    = time.Second
	DefaultSettleDelay = time.Second
	DefaultPlayGrace   = 3 * time.Second
	DefaultPlayTimeout = 10 * time.Second
)

// Matcher decides whether the monitor acts on a page address.
// glob.Glob from github.com/gobwas/glob satisfies it.
type Matcher interface {
	Match(s string) bool
}

// Config tunes a Monitor.
type Config struct {
	// Interval between ticks.
	Interval time.Duration

	// SettleDelay is the wait after switching lessons before the page is
	// read again.
	SettleDelay time.Duration

	// PlayGrace keeps the guard after a successful play request.
	PlayGrace time.Duration

	// PlayTimeout releases the guard of a request that never settled.
	PlayTimeout time.Duration

	// Markers are removed from lesson titles. Nil means the default
	// elective marker.
	Markers []string

	// Matcher limits the monitor to matching page addresses. Nil matches
	// every page.
	Matcher Matcher
}

// DefaultConfig returns the default timings.
func DefaultConfig() Config {
	return Config{
		Interval:    DefaultInterval,
		SettleDelay: DefaultSettleDelay,
		PlayGrace:   DefaultPlayGrace,
		PlayTimeout: DefaultPlayTimeout,
	}
}

// Validate checks the timings.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}
	if c.PlayGrace < 0 {
		return fmt.Errorf("play grace cannot be negative")
	}
	if c.PlayTimeout <= 0 {
		return fmt.Errorf("play timeout must be positive, got %s", c.PlayTimeout)
	}
	return nil
}
