package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/entrhq/autostudy/pkg/overlay"
	"github.com/entrhq/autostudy/pkg/page"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntries(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []page.Entry
		wantErr bool
	}{
		{
			name:  "nil result",
			input: nil,
			want:  nil,
		},
		{
			name: "entries",
			input: []interface{}{
				map[string]interface{}{"title": "一", "active": false},
				map[string]interface{}{"title": "二", "active": true},
			},
			want: []page.Entry{{Title: "一"}, {Title: "二", Active: true}},
		},
		{
			name:  "missing keys default to zero",
			input: []interface{}{map[string]interface{}{}},
			want:  []page.Entry{{}},
		},
		{
			name:    "wrong container",
			input:   "nope",
			wantErr: true,
		},
		{
			name:    "wrong item",
			input:   []interface{}{42},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeEntries(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePlayerState(t *testing.T) {
	assert.Equal(t, page.PlayerState{}, decodePlayerState(nil))
	assert.Equal(t, page.PlayerState{Present: true, Paused: true},
		decodePlayerState(map[string]interface{}{"present": true, "paused": true}))
	assert.Equal(t, page.PlayerState{Present: true},
		decodePlayerState(map[string]interface{}{"present": true, "paused": false}))
}

func TestSelectorsWithDefaults(t *testing.T) {
	got := Selectors{Studied: "#elapsed", Player: "videoPlayer"}.withDefaults()

	want := DefaultSelectors()
	want.Studied = "#elapsed"
	want.Player = "videoPlayer"
	assert.Equal(t, want, got)
}

func TestSelectorFor(t *testing.T) {
	a := NewAdapter(nil, DefaultSelectors(), nil)

	sel, err := a.selectorFor(page.FieldActiveTitle)
	require.NoError(t, err)
	assert.Equal(t, ".panelItem.activeitem .itemTitle", sel)

	sel, err = a.selectorFor(page.FieldStudied)
	require.NoError(t, err)
	assert.Equal(t, ".alredyTime", sel)

	_, err = a.selectorFor(page.Field("bogus"))
	assert.Error(t, err)
}

func TestPlayTimeout(t *testing.T) {
	assert.Equal(t, int64(0), playTimeout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	got := playTimeout(ctx)
	assert.Greater(t, got, int64(9000))
	assert.LessOrEqual(t, got, int64(10000))

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	assert.Equal(t, int64(1), playTimeout(expired))
}

func TestRequestPlayCancelledContext(t *testing.T) {
	a := NewAdapter(nil, DefaultSelectors(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	a.RequestPlay(ctx, func(err error) { got = err })
	assert.ErrorIs(t, got, context.Canceled)
}

func TestManagerLaunchRequiresInitialize(t *testing.T) {
	manager := NewManager(nil)

	_, err := manager.Launch(LaunchOptions{Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	assert.NoError(t, manager.Shutdown())
	assert.Nil(t, manager.Session())
}

// coursePage mimics the training page: a side panel of lessons, the study
// clock, an interstitial dialog and a global player object.
const coursePage = `<!doctype html>
<html><body>
<div class="panel">
  <div class="panelItem" onclick="select(0)"><span class="itemTitle">实验室安全概述</span></div>
  <div class="panelItem activeitem" onclick="select(1)"><span class="itemTitle">选学 消防安全</span></div>
  <div class="panelItem" onclick="select(2)"><span class="itemTitle">化学品管理</span></div>
</div>
<span class="alredyTime"> 01:00 </span><span class="allTime">02:00</span>
<div class="dialog"><a class="public_close" onclick="this.parentNode.remove()">x</a></div>
<script>
  function select(i) {
    document.querySelectorAll('.panelItem').forEach((el, j) => el.classList.toggle('activeitem', i === j));
  }
  window.player = { paused: true, play() { this.paused = false; return Promise.resolve(); } };
  window.stuck = { paused: true, play() { return new Promise(() => {}); } };
</script>
</body></html>`

func TestAdapterAgainstBrowser(t *testing.T) {
	if testing.Short() || os.Getenv("AUTOSTUDY_BROWSER_TESTS") == "" {
		t.Skip("set AUTOSTUDY_BROWSER_TESTS=1 to run browser integration tests")
	}

	manager := NewManager(nil)
	require.NoError(t, manager.Initialize())
	defer manager.Shutdown()

	session, err := manager.Launch(LaunchOptions{Headless: true})
	require.NoError(t, err)
	require.NoError(t, session.Page.SetContent(coursePage, playwright.PageSetContentOptions{}))

	ctx := context.Background()
	a := NewAdapter(session, Selectors{}, nil)

	studied, err := a.ReadField(ctx, page.FieldStudied)
	require.NoError(t, err)
	assert.Equal(t, "01:00", studied)

	title, err := a.ReadField(ctx, page.FieldActiveTitle)
	require.NoError(t, err)
	assert.Equal(t, "选学 消防安全", title)

	entries, err := a.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[1].Active)

	require.NoError(t, a.ActivateEntry(ctx, 2))
	entries, err = a.ListEntries(ctx)
	require.NoError(t, err)
	assert.True(t, entries[2].Active)
	assert.ErrorIs(t, a.ActivateEntry(ctx, 3), page.ErrNotFound)

	closed, err := a.DismissDialog(ctx)
	require.NoError(t, err)
	assert.True(t, closed)
	closed, err = a.DismissDialog(ctx)
	require.NoError(t, err)
	assert.False(t, closed)

	state, err := a.PlayerState(ctx)
	require.NoError(t, err)
	assert.Equal(t, page.PlayerState{Present: true, Paused: true}, state)

	done := make(chan error, 1)
	a.RequestPlay(ctx, func(err error) { done <- err })
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("play request never settled")
	}
	state, err = a.PlayerState(ctx)
	require.NoError(t, err)
	assert.False(t, state.Paused)

	stuck := NewAdapter(session, Selectors{Player: "stuck"}, nil)
	playCtx, cancelPlay := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancelPlay()
	stuck.RequestPlay(playCtx, func(err error) { done <- err })
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("stuck play request was not bounded by its deadline")
	}

	require.NoError(t, a.ShowOverlay(ctx, "<b>50%</b>"))
	text, err := a.session.Page.TextContent("#" + overlay.PanelID)
	require.NoError(t, err)
	assert.Equal(t, "50%", text)

	require.NoError(t, a.RemoveOverlay(ctx))
	panel, err := a.session.Page.QuerySelector("#" + overlay.PanelID)
	require.NoError(t, err)
	assert.Nil(t, panel)

	_, err = a.ReadField(ctx, page.Field("bogus"))
	assert.Error(t, err)
}
