// Package pagetest provides an in-memory page.Adapter for tests.
package pagetest

import (
	"context"
	"sync"

	"github.com/entrhq/autostudy/pkg/page"
)

// Fake is a scriptable page.Adapter; construct it with New.
// Fields are read under the mutex, so tests may mutate them between ticks
// through the setter helpers.
type Fake struct {
	mu sync.Mutex

	fields  map[page.Field]string
	entries []page.Entry
	dialog  bool
	player  page.PlayerState
	url     string

	// fieldErr, when set for a field, is returned by ReadField instead of a value.
	fieldErr map[page.Field]error
	// ActivateErr is returned by ActivateEntry when set.
	ActivateErr error

	// Activated records every ActivateEntry index in call order.
	Activated []int
	// Dismissed counts successful DismissDialog calls.
	Dismissed int
	// PlayRequests counts RequestPlay calls.
	PlayRequests int
	// Overlay holds the last markup passed to ShowOverlay.
	Overlay string
	// OverlayShown is false until ShowOverlay and after RemoveOverlay.
	OverlayShown bool
	// OverlayRemoved counts RemoveOverlay calls.
	OverlayRemoved int

	pending []pendingPlay
}

type pendingPlay struct {
	ctx    context.Context
	settle page.SettleFunc
}

// New returns a Fake positioned on url.
func New(url string) *Fake {
	return &Fake{
		fields:   make(map[page.Field]string),
		fieldErr: make(map[page.Field]error),
		url:      url,
	}
}

// SetTimes sets the studied and total time fields.
func (f *Fake) SetTimes(studied, total string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[page.FieldStudied] = studied
	f.fields[page.FieldTotal] = total
}

// ClearTimes removes both time fields, as on a page still loading.
func (f *Fake) ClearTimes() {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fields, page.FieldStudied)
	delete(f.fields, page.FieldTotal)
}

// SetFieldError makes ReadField fail for field.
func (f *Fake) SetFieldError(field page.Field, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldErr[field] = err
}

// SetLessons replaces the entry list and marks entry active (-1 for none).
func (f *Fake) SetLessons(titles []string, active int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = f.entries[:0]
	for i, title := range titles {
		f.entries = append(f.entries, page.Entry{Title: title, Active: i == active})
	}
	if active >= 0 && active < len(titles) {
		f.fields[page.FieldActiveTitle] = titles[active]
	} else {
		delete(f.fields, page.FieldActiveTitle)
	}
}

// SetDialog shows or hides the interstitial dialog.
func (f *Fake) SetDialog(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialog = visible
}

// SetPlayer sets the player handle state.
func (f *Fake) SetPlayer(state page.PlayerState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.player = state
}

// SetURL moves the fake to another address.
func (f *Fake) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

// Pending returns the number of unsettled play requests.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// InFlight returns the number of unsettled play requests whose context is
// still live. A real adapter stops waiting on a request once its context is
// done.
func (f *Fake) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.pending {
		if p.ctx.Err() == nil {
			n++
		}
	}
	return n
}

// PlayContext returns the context of the i-th unsettled play request.
func (f *Fake) PlayContext(i int) context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[i].ctx
}

// Settle completes the oldest pending play request with err.
// A nil err also marks the player as playing. It reports false when
// nothing is pending.
func (f *Fake) Settle(err error) bool {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return false
	}
	settle := f.pending[0].settle
	f.pending = f.pending[1:]
	if err == nil {
		f.player.Paused = false
	}
	f.mu.Unlock()

	settle(err)
	return true
}

// Snapshot returns a copy of the recorded overlay state.
func (f *Fake) Snapshot() (markup string, shown bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Overlay, f.OverlayShown
}

// ReadField implements page.Adapter.
func (f *Fake) ReadField(_ context.Context, field page.Field) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fieldErr[field]; err != nil {
		return "", err
	}
	value, ok := f.fields[field]
	if !ok {
		return "", page.ErrNotFound
	}
	return value, nil
}

// ListEntries implements page.Adapter.
func (f *Fake) ListEntries(_ context.Context) ([]page.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]page.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

// ActivateEntry implements page.Adapter. A successful activation moves the
// active marker, the way clicking a side panel entry does.
func (f *Fake) ActivateEntry(_ context.Context, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activated = append(f.Activated, index)
	if f.ActivateErr != nil {
		return f.ActivateErr
	}
	if index < 0 || index >= len(f.entries) {
		return page.ErrNotFound
	}
	for i := range f.entries {
		f.entries[i].Active = i == index
	}
	f.fields[page.FieldActiveTitle] = f.entries[index].Title
	return nil
}

// DismissDialog implements page.Adapter.
func (f *Fake) DismissDialog(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dialog {
		return false, nil
	}
	f.dialog = false
	f.Dismissed++
	return true, nil
}

// PlayerState implements page.Adapter.
func (f *Fake) PlayerState(_ context.Context) (page.PlayerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.player, nil
}

// RequestPlay implements page.Adapter. The request stays pending until the
// test calls Settle.
func (f *Fake) RequestPlay(ctx context.Context, settle page.SettleFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlayRequests++
	f.pending = append(f.pending, pendingPlay{ctx: ctx, settle: settle})
}

// ShowOverlay implements page.Adapter.
func (f *Fake) ShowOverlay(_ context.Context, markup string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Overlay = markup
	f.OverlayShown = true
	return nil
}

// RemoveOverlay implements page.Adapter.
func (f *Fake) RemoveOverlay(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OverlayShown = false
	f.OverlayRemoved++
	return nil
}

// URL implements page.Adapter.
func (f *Fake) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}
