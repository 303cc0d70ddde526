// Package page defines the capability set the monitor needs from a live
// course page. The Playwright implementation lives in pkg/browser; tests use
// the in-memory fake from pkg/page/pagetest.
package page

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an expected page element is absent.
var ErrNotFound = errors.New("element not found")

// Field identifies a single text value read from the page.
type Field string

const (
	// FieldStudied is the elapsed study time of the active lesson ("MM:SS").
	FieldStudied Field = "studied"

	// FieldTotal is the required study time of the active lesson ("MM:SS").
	FieldTotal Field = "total"

	// FieldActiveTitle is the title text of the active lesson entry.
	FieldActiveTitle Field = "active_title"
)

// Entry is one lesson entry in the course side panel.
type Entry struct {
	Title  string
	Active bool
}

// PlayerState describes the global video player object.
type PlayerState struct {
	// Present is false when the page exposes no player handle.
	Present bool

	// Paused mirrors the player's paused property.
	Paused bool
}

// SettleFunc receives the outcome of a play request: nil on success,
// the rejection otherwise. It may be called from any goroutine.
type SettleFunc func(err error)

// Adapter is the page-facing boundary of the monitor.
type Adapter interface {
	// ReadField returns the trimmed text of a field, or ErrNotFound.
	ReadField(ctx context.Context, field Field) (string, error)

	// ListEntries returns the lesson entries in page order.
	ListEntries(ctx context.Context) ([]Entry, error)

	// ActivateEntry performs the equivalent of a user click on entry index.
	ActivateEntry(ctx context.Context, index int) error

	// DismissDialog clicks the interstitial dialog's close control.
	// It reports false when no dialog is showing.
	DismissDialog(ctx context.Context) (bool, error)

	// PlayerState reports whether a player is present and paused.
	PlayerState(ctx context.Context) (PlayerState, error)

	// RequestPlay asks the player to start. It returns immediately;
	// settle is invoked exactly once when the request completes.
	RequestPlay(ctx context.Context, settle SettleFunc)

	// ShowOverlay creates the status panel if needed and sets its markup.
	ShowOverlay(ctx context.Context, markup string) error

	// RemoveOverlay deletes the status panel from the page.
	RemoveOverlay(ctx context.Context) error

	// URL returns the address of the current document.
	URL() string
}
