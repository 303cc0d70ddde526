package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents the browser resources of one monitored page.
type Session struct {
	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the course page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time
}

// LaunchOptions configures a new browser session.
type LaunchOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// Channel selects an installed browser build such as "chrome" or
	// "msedge". Empty uses the bundled Chromium.
	Channel string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Selectors locate the course page elements the monitor works with.
type Selectors struct {
	// Studied holds the elapsed study time of the active lesson.
	Studied string `yaml:"studied"`

	// Total holds the required study time of the active lesson.
	Total string `yaml:"total"`

	// Entry matches every lesson entry in the side panel.
	Entry string `yaml:"entry"`

	// ActiveEntry matches the entry currently selected.
	ActiveEntry string `yaml:"active_entry"`

	// Title matches the title element inside an entry.
	Title string `yaml:"title"`

	// DialogClose matches the close control of the interstitial dialog.
	DialogClose string `yaml:"dialog_close"`

	// Player is the name of the global video player object.
	Player string `yaml:"player"`
}

// DefaultSelectors returns the selectors of the lab safety training site.
func DefaultSelectors() Selectors {
	return Selectors{
		Studied:     ".alredyTime",
		Total:       ".allTime",
		Entry:       ".panelItem",
		ActiveEntry: ".panelItem.activeitem",
		Title:       ".itemTitle",
		DialogClose: ".public_close",
		Player:      "player",
	}
}

// Default values for various operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultWaitUntil      = "load"
)
