// Package browser drives a course page through Playwright.
//
// # Architecture
//
// The package is built around three pieces:
//
//  1. Manager: owns the Playwright driver and the Chromium instance
//  2. Session: one browser context with its page
//  3. Adapter: implements page.Adapter on top of a Session
//
// # Session Lifecycle
//
//  1. Initialize: install (if needed) and start the Playwright driver
//  2. Launch: start Chromium and open a page, headed by default so the user
//     can sign in to the course site
//  3. Navigate: open the course URL
//  4. Shutdown: close the page, context, browser and driver
//
// # Page Access
//
// Text fields and lesson entries are read with selectors; clicks are
// dispatched as DOM click events, which is what the course page's own
// handlers listen for. The video player is reached through a global object
// (window.player by default) with Evaluate.
//
// # Example Usage
//
//	manager := browser.NewManager(logger)
//	if err := manager.Initialize(); err != nil { ... }
//	defer manager.Shutdown()
//
//	session, err := manager.Launch(browser.LaunchOptions{Headless: false})
//	err = session.Navigate(url, browser.NavigateOptions{WaitUntil: "load"})
//	adapter := browser.NewAdapter(session, browser.DefaultSelectors())
package browser
