package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	waitUntil := opts.WaitUntil
	if waitUntil == "" {
		waitUntil = DefaultWaitUntil
	}
	state := playwright.WaitUntilState(waitUntil)
	playwrightOpts.WaitUntil = &state

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the address of the current document.
func (s *Session) URL() string {
	return s.Page.URL()
}

// OnClose registers fn to run when the page is closed, by the user closing
// the window or by Shutdown.
func (s *Session) OnClose(fn func()) {
	s.Page.OnClose(func(playwright.Page) {
		fn()
	})
}

// close releases the page, context and browser.
func (s *Session) close() error {
	var errs []error
	if !s.Page.IsClosed() {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session: %w", errors.Join(errs...))
	}
	return nil
}
