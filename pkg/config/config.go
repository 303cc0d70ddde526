// Package config loads the autostudy run configuration from YAML.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/entrhq/autostudy/pkg/browser"
	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/monitor"
	"github.com/gobwas/glob"
)

// DefaultMatch is the address pattern of the training task pages.
const DefaultMatch = "https://sysaq.sdu.edu.cn/lab-study-front/trainTask/*"

// Config represents the configuration of a monitoring run
type Config struct {
	// URL is the course page opened after launch
	URL string `yaml:"url"`

	// Match is a glob the page address must match for a tick to act.
	// Empty matches every page.
	Match string `yaml:"match"`

	// Browser launch settings
	Browser BrowserConfig `yaml:"browser"`

	// Selectors locating the course page elements
	Selectors browser.Selectors `yaml:"selectors"`

	// Timing of the monitor loop
	Timing TimingConfig `yaml:"timing"`

	// Markers are stripped from lesson titles
	Markers []string `yaml:"markers,omitempty"`

	// TUI replaces the status line with the full-screen dashboard
	TUI bool `yaml:"tui"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// BrowserConfig defines how Chromium is launched
type BrowserConfig struct {
	Headless bool             `yaml:"headless"`
	Channel  string           `yaml:"channel"`
	Viewport browser.Viewport `yaml:"viewport"`
	// Timeout for page operations
	Timeout time.Duration `yaml:"timeout"`
}

// TimingConfig defines the monitor timings
type TimingConfig struct {
	Interval    time.Duration `yaml:"interval"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	PlayGrace   time.Duration `yaml:"play_grace"`
	PlayTimeout time.Duration `yaml:"play_timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity"`
}

// Default returns a configuration suitable for the training site. Only the
// course URL has to be supplied.
func Default() *Config {
	return &Config{
		Match: DefaultMatch,
		Browser: BrowserConfig{
			Viewport: browser.Viewport{
				Width:  browser.DefaultViewportWidth,
				Height: browser.DefaultViewportHeight,
			},
			Timeout: time.Duration(browser.DefaultTimeout) * time.Millisecond,
		},
		Selectors: browser.DefaultSelectors(),
		Timing: TimingConfig{
			Interval:    monitor.DefaultInterval,
			SettleDelay: monitor.DefaultSettleDelay,
			PlayGrace:   monitor.DefaultPlayGrace,
			PlayTimeout: monitor.DefaultPlayTimeout,
		},
		Logging: LoggingConfig{Verbosity: "normal"},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("course url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid course url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid course url %q: scheme must be http or https", c.URL)
	}

	if _, err := c.Matcher(); err != nil {
		return err
	}

	if c.Browser.Viewport.Width < 0 || c.Browser.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}

	if err := c.MonitorConfig().Validate(); err != nil {
		return fmt.Errorf("invalid timing: %w", err)
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if _, err := logging.ParseLevel(c.Logging.Verbosity); err != nil {
		return fmt.Errorf("invalid logging verbosity: %w", err)
	}

	return nil
}

// Level returns the parsed logging verbosity, normal when unset or invalid.
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Verbosity)
	return level
}

// Matcher compiles the address pattern. It returns nil when every page
// should be monitored.
func (c *Config) Matcher() (monitor.Matcher, error) {
	if c.Match == "" {
		return nil, nil
	}
	g, err := glob.Compile(c.Match)
	if err != nil {
		return nil, fmt.Errorf("invalid match pattern %q: %w", c.Match, err)
	}
	return g, nil
}

// MonitorConfig converts the timings and title markers for the monitor.
// The matcher is left unset; callers attach the result of Matcher.
func (c *Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		Interval:    c.Timing.Interval,
		SettleDelay: c.Timing.SettleDelay,
		PlayGrace:   c.Timing.PlayGrace,
		PlayTimeout: c.Timing.PlayTimeout,
		Markers:     c.Markers,
	}
}

// LaunchOptions converts the browser settings for the browser manager.
func (c *Config) LaunchOptions() browser.LaunchOptions {
	opts := browser.LaunchOptions{
		Headless: c.Browser.Headless,
		Channel:  c.Browser.Channel,
		Timeout:  float64(c.Browser.Timeout / time.Millisecond),
	}
	if c.Browser.Viewport.Width > 0 && c.Browser.Viewport.Height > 0 {
		viewport := c.Browser.Viewport
		opts.Viewport = &viewport
	}
	return opts
}
