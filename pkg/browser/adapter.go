package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/overlay"
	"github.com/entrhq/autostudy/pkg/page"
)

// Adapter implements page.Adapter against a Playwright session.
type Adapter struct {
	session   *Session
	selectors Selectors
	logger    *logging.Logger
}

var _ page.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter for session. Empty selectors fall back to
// the defaults.
func NewAdapter(session *Session, selectors Selectors, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{
		session:   session,
		selectors: selectors.withDefaults(),
		logger:    logger,
	}
}

func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if s.Studied == "" {
		s.Studied = d.Studied
	}
	if s.Total == "" {
		s.Total = d.Total
	}
	if s.Entry == "" {
		s.Entry = d.Entry
	}
	if s.ActiveEntry == "" {
		s.ActiveEntry = d.ActiveEntry
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.DialogClose == "" {
		s.DialogClose = d.DialogClose
	}
	if s.Player == "" {
		s.Player = d.Player
	}
	return s
}

// selectorFor maps a page field to its CSS selector.
func (a *Adapter) selectorFor(field page.Field) (string, error) {
	switch field {
	case page.FieldStudied:
		return a.selectors.Studied, nil
	case page.FieldTotal:
		return a.selectors.Total, nil
	case page.FieldActiveTitle:
		return a.selectors.ActiveEntry + " " + a.selectors.Title, nil
	default:
		return "", fmt.Errorf("unknown field %q", field)
	}
}

// ReadField implements page.Adapter.
func (a *Adapter) ReadField(ctx context.Context, field page.Field) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	selector, err := a.selectorFor(field)
	if err != nil {
		return "", err
	}

	element, err := a.session.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", page.ErrNotFound
	}
	defer element.Dispose()

	text, err := element.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ListEntries implements page.Adapter.
func (a *Adapter) ListEntries(ctx context.Context) ([]page.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := a.session.Page.Evaluate(listEntriesScript, []string{
		a.selectors.Entry, a.selectors.ActiveEntry, a.selectors.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return decodeEntries(result)
}

// decodeEntries converts the listEntriesScript result.
func decodeEntries(result interface{}) ([]page.Entry, error) {
	items, ok := result.([]interface{})
	if !ok {
		if result == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected entry list type %T", result)
	}

	entries := make([]page.Entry, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected entry %d type %T", i, item)
		}
		title, _ := fields["title"].(string)
		active, _ := fields["active"].(bool)
		entries = append(entries, page.Entry{Title: title, Active: active})
	}
	return entries, nil
}

// ActivateEntry implements page.Adapter. The click is dispatched as a DOM
// event, the same as calling click() on the element.
func (a *Adapter) ActivateEntry(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	handles, err := a.session.Page.QuerySelectorAll(a.selectors.Entry)
	if err != nil {
		return fmt.Errorf("selector query failed: %w", err)
	}
	defer func() {
		for _, h := range handles {
			_ = h.Dispose()
		}
	}()

	if index < 0 || index >= len(handles) {
		return fmt.Errorf("lesson entry %d of %d: %w", index, len(handles), page.ErrNotFound)
	}
	if err := handles[index].DispatchEvent("click"); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// DismissDialog implements page.Adapter.
func (a *Adapter) DismissDialog(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	button, err := a.session.Page.QuerySelector(a.selectors.DialogClose)
	if err != nil {
		return false, fmt.Errorf("selector query failed: %w", err)
	}
	if button == nil {
		return false, nil
	}
	defer button.Dispose()

	if err := button.DispatchEvent("click"); err != nil {
		return false, fmt.Errorf("click failed: %w", err)
	}
	return true, nil
}

// PlayerState implements page.Adapter.
func (a *Adapter) PlayerState(ctx context.Context) (page.PlayerState, error) {
	if err := ctx.Err(); err != nil {
		return page.PlayerState{}, err
	}

	result, err := a.session.Page.Evaluate(playerStateScript, a.selectors.Player)
	if err != nil {
		return page.PlayerState{}, fmt.Errorf("failed to read player: %w", err)
	}
	return decodePlayerState(result), nil
}

func decodePlayerState(result interface{}) page.PlayerState {
	fields, _ := result.(map[string]interface{})
	present, _ := fields["present"].(bool)
	paused, _ := fields["paused"].(bool)
	return page.PlayerState{Present: present, Paused: paused}
}

// RequestPlay implements page.Adapter. The evaluation runs on its own
// goroutine and is bounded by the deadline of ctx; settle runs once, with
// ctx.Err() if ctx ends first.
func (a *Adapter) RequestPlay(ctx context.Context, settle page.SettleFunc) {
	if err := ctx.Err(); err != nil {
		settle(err)
		return
	}

	result := make(chan error, 1)
	go func() {
		_, err := a.session.Page.Evaluate(playScript, []interface{}{a.selectors.Player, playTimeout(ctx)})
		if err != nil {
			err = fmt.Errorf("play request rejected: %w", err)
		}
		result <- err
	}()

	go func() {
		select {
		case err := <-result:
			settle(err)
		case <-ctx.Done():
			settle(ctx.Err())
		}
	}()
}

// playTimeout returns the time left until the deadline of ctx in
// milliseconds, or 0 without a deadline.
func playTimeout(ctx context.Context) int64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return max(1, time.Until(deadline).Milliseconds())
}

// ShowOverlay implements page.Adapter.
func (a *Adapter) ShowOverlay(ctx context.Context, markup string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := a.session.Page.Evaluate(showOverlayScript, []string{overlay.PanelID, overlay.PanelStyle, markup})
	if err != nil {
		return fmt.Errorf("failed to paint overlay: %w", err)
	}
	if painted, _ := result.(bool); !painted {
		a.logger.Debugf("document body not ready, overlay deferred")
	}
	return nil
}

// RemoveOverlay implements page.Adapter. A closed page has nothing to remove.
func (a *Adapter) RemoveOverlay(ctx context.Context) error {
	if a.session.Page.IsClosed() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := a.session.Page.Evaluate(removeOverlayScript, overlay.PanelID); err != nil {
		return fmt.Errorf("failed to remove overlay: %w", err)
	}
	return nil
}

// URL implements page.Adapter.
func (a *Adapter) URL() string {
	return a.session.URL()
}
