package monitor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/autostudy/pkg/course"
	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/overlay"
	"github.com/entrhq/autostudy/pkg/page"
	"github.com/entrhq/autostudy/pkg/page/pagetest"
	"github.com/entrhq/autostudy/pkg/schedule"
	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseURL = "https://sysaq.sdu.edu.cn/lab-study-front/trainTask/42"

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	fake  *pagetest.Fake
	sched *schedule.Manual
	mon   *Monitor
	snaps []Snapshot
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		fake:  pagetest.New(courseURL),
		sched: schedule.NewManual(epoch),
	}
	mon, err := New(h.fake, h.sched, nil, cfg)
	require.NoError(t, err)
	mon.OnSnapshot(func(s Snapshot) { h.snaps = append(h.snaps, s) })
	h.mon = mon
	return h
}

func (h *harness) last() Snapshot {
	return h.snaps[len(h.snaps)-1]
}

func (h *harness) overlay() string {
	markup, _ := h.fake.Snapshot()
	return markup
}

func titles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "安全课程" + string(rune('A'+i))
	}
	return out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = 0

	_, err := New(pagetest.New(courseURL), schedule.NewManual(epoch), nil, cfg)
	assert.Error(t, err)
}

func TestStartRendersHalfway(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("01:00", "02:00")
	h.fake.SetLessons(titles(5), 1)

	h.mon.Start(context.Background())

	markup := h.overlay()
	assert.Contains(t, markup, ">50%<")
	assert.Contains(t, markup, "width: 50%")
	assert.Contains(t, markup, "进行中 (2/5)")
	assert.Contains(t, markup, "安全课程B")

	require.Len(t, h.snaps, 1)
	assert.Equal(t, overlay.ModeInProgress, h.last().View.Mode)
	assert.Equal(t, 50, h.last().View.Percent)
}

func TestMissingTimesShowsLoading(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	h.mon.Start(context.Background())
	h.sched.Advance(time.Second)

	markup := h.overlay()
	assert.Contains(t, markup, "正在获取学习时间信息...")
	assert.Contains(t, markup, "当前课程: "+course.UnknownCourse)
	assert.Equal(t, overlay.ModeLoading, h.last().View.Mode)
	assert.Empty(t, h.fake.Activated)
}

func TestAdvancesToNextLesson(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("01:00", "02:00")
	h.fake.SetLessons(titles(5), 2)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})

	h.mon.Start(context.Background())
	h.sched.Advance(time.Second)
	require.Equal(t, 1, h.fake.PlayRequests)
	require.True(t, h.mon.State().Guarded())

	h.fake.SetTimes("02:00", "02:00")
	h.sched.Advance(time.Second)

	assert.Equal(t, []int{3}, h.fake.Activated)
	assert.Equal(t, course.OutcomeAdvanced, h.last().Outcome)
	assert.False(t, h.mon.State().Completed())
	// the switch dropped the guard, so the same tick could ask the new
	// lesson's player to start
	assert.Equal(t, 2, h.fake.PlayRequests)

	// the first request settling late must not release the new guard
	require.True(t, h.fake.Settle(nil))
	h.sched.Flush()
	assert.True(t, h.mon.State().Guarded())

	// deferred re-read picks up the new lesson
	h.fake.SetTimes("00:00", "03:00")
	before := len(h.snaps)
	h.sched.Advance(time.Second)
	assert.Equal(t, before+2, len(h.snaps), "tick and deferred refresh both repaint")
	assert.Equal(t, 4, h.last().View.Position)
	assert.Contains(t, h.overlay(), "进行中 (4/5)")
	assert.Len(t, h.fake.Activated, 1)
}

func TestDeferredRefreshAfterSwitch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = time.Minute
	h := newHarness(t, cfg)
	h.fake.SetTimes("02:00", "02:00")
	h.fake.SetLessons(titles(3), 0)

	h.mon.Start(context.Background())
	require.Equal(t, []int{1}, h.fake.Activated)
	require.Len(t, h.snaps, 1)

	h.fake.SetTimes("00:05", "02:00")
	h.sched.Advance(999 * time.Millisecond)
	assert.Len(t, h.snaps, 1)

	h.sched.Advance(time.Millisecond)
	require.Len(t, h.snaps, 2)
	assert.Equal(t, 2, h.last().View.Position)
	assert.Equal(t, 4, h.last().View.Percent)
}

func TestLastLessonCompletesAll(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("02:00", "02:00")
	h.fake.SetLessons(titles(5), 4)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})

	h.mon.Start(context.Background())

	assert.Empty(t, h.fake.Activated)
	assert.True(t, h.mon.State().Completed())
	assert.Equal(t, course.OutcomeAllComplete, h.last().Outcome)
	assert.Equal(t, overlay.ModeAllComplete, h.last().View.Mode)
	assert.Contains(t, h.overlay(), "共完成 5 个课程")

	h.fake.SetDialog(true)
	h.sched.Advance(5 * time.Second)

	assert.Equal(t, 0, h.fake.PlayRequests, "no playback once everything is complete")
	assert.Equal(t, 1, h.fake.Dismissed, "dialogs are still closed")
	assert.Empty(t, h.fake.Activated)
}

func TestCompletionIsSticky(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("02:00", "02:00")
	h.fake.SetLessons(titles(2), 1)
	h.mon.Start(context.Background())
	require.True(t, h.mon.State().Completed())

	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.sched.Advance(3 * time.Second)
	assert.True(t, h.mon.State().Completed())
	assert.Equal(t, overlay.ModeAllComplete, h.last().View.Mode)

	h.fake.ClearTimes()
	h.sched.Advance(3 * time.Second)
	assert.True(t, h.mon.State().Completed())
	assert.Equal(t, overlay.ModeAllComplete, h.last().View.Mode)
	assert.Empty(t, h.fake.Activated)
}

func TestDismissesDialog(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	assert.Equal(t, 0, h.fake.Dismissed)

	h.fake.SetDialog(true)
	h.sched.Advance(time.Second)
	assert.Equal(t, 1, h.fake.Dismissed)
}

func TestPlayGuardHoldsUntilGraceElapses(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	require.Equal(t, 1, h.fake.PlayRequests)

	h.sched.Advance(3 * time.Second)
	assert.Equal(t, 1, h.fake.PlayRequests, "no overlapping request while pending")
	assert.True(t, h.mon.State().Guarded())

	require.True(t, h.fake.Settle(nil))
	h.sched.Flush()
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})

	h.sched.Advance(2 * time.Second)
	assert.Equal(t, 1, h.fake.PlayRequests, "guard held during the grace period")
	assert.True(t, h.mon.State().Guarded())

	h.sched.Advance(time.Second)
	assert.Equal(t, 2, h.fake.PlayRequests, "released after the grace period")
}

func TestPlayFailureReleasesImmediately(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	require.True(t, h.fake.Settle(errors.New("NotAllowedError: play() failed")))
	h.sched.Flush()
	assert.False(t, h.mon.State().Guarded())

	h.sched.Advance(time.Second)
	assert.Equal(t, 2, h.fake.PlayRequests, "retried on the next tick")
}

func TestPlayTimeoutReleasesGuard(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	require.Equal(t, 1, h.fake.PlayRequests)

	h.sched.Advance(DefaultPlayTimeout - time.Second)
	assert.Equal(t, 1, h.fake.PlayRequests)

	h.sched.Advance(time.Second)
	assert.Equal(t, 2, h.fake.PlayRequests, "timeout released the stuck guard")

	// the first request settles after its timeout: only the first release counts
	require.True(t, h.fake.Settle(nil))
	h.sched.Flush()
	assert.True(t, h.mon.State().Guarded())
	assert.Equal(t, 1, h.fake.Pending())
}

func TestTimedOutRequestIsAbandoned(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	require.Equal(t, 1, h.fake.PlayRequests)
	first := h.fake.PlayContext(0)
	assert.NoError(t, first.Err())

	// the player never answers
	for i := 0; i < 30; i++ {
		h.sched.Advance(time.Second)
		assert.LessOrEqual(t, h.fake.InFlight(), 1, "tick %d", i)
	}
	assert.ErrorIs(t, first.Err(), context.Canceled, "timed out request is cancelled")
	assert.Greater(t, h.fake.PlayRequests, 1, "a fresh request follows the abandoned one")
}

func TestSettledRequestContextIsReleased(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	ctx := h.fake.PlayContext(0)
	require.True(t, h.fake.Settle(nil))
	h.sched.Flush()

	assert.Error(t, ctx.Err())
	assert.True(t, h.mon.State().Guarded(), "grace period still applies")
}

func TestSettlementCancelsTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlayGrace = 20 * time.Second
	h := newHarness(t, cfg)
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	require.True(t, h.fake.Settle(nil))
	h.sched.Flush()

	h.sched.Advance(DefaultPlayTimeout + time.Second)
	assert.True(t, h.mon.State().Guarded(), "grace period, not the timeout, governs a settled request")
}

func TestGuardNeverOverlaps(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	for i := 0; i < 60; i++ {
		h.sched.Advance(time.Second)
		assert.LessOrEqual(t, h.fake.Pending(), 1, "tick %d", i)
		if i%7 == 3 {
			h.fake.Settle(errors.New("blocked"))
		}
		h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	}
}

func TestNoPlayerNoRequest(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.mon.Start(context.Background())

	h.sched.Advance(3 * time.Second)
	assert.Equal(t, 0, h.fake.PlayRequests)

	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: false})
	h.sched.Advance(3 * time.Second)
	assert.Equal(t, 0, h.fake.PlayRequests)
}

func TestSkipsNonMatchingPages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matcher = glob.MustCompile("https://sysaq.sdu.edu.cn/lab-study-front/trainTask/*")
	h := newHarness(t, cfg)
	h.fake.SetURL("https://sysaq.sdu.edu.cn/login")
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetDialog(true)

	h.mon.Start(context.Background())
	h.sched.Advance(2 * time.Second)

	_, shown := h.fake.Snapshot()
	assert.False(t, shown)
	assert.Equal(t, 0, h.fake.Dismissed)
	require.NotEmpty(t, h.snaps)
	assert.False(t, h.last().OnTarget)

	h.fake.SetURL(courseURL)
	h.sched.Advance(time.Second)
	_, shown = h.fake.Snapshot()
	assert.True(t, shown)
	assert.True(t, h.last().OnTarget)
	assert.Equal(t, 1, h.fake.Dismissed)
}

func TestStopTearsDown(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("02:00", "02:00")
	h.fake.SetLessons(titles(3), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})

	h.mon.Start(context.Background())
	require.Equal(t, []int{1}, h.fake.Activated)
	require.Positive(t, h.sched.Pending())

	h.mon.Stop(context.Background())
	h.mon.Stop(context.Background())

	assert.Equal(t, 0, h.sched.Pending(), "tick and deferred refresh cancelled")
	_, shown := h.fake.Snapshot()
	assert.False(t, shown)
	assert.Equal(t, 1, h.fake.OverlayRemoved)

	count := len(h.snaps)
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, count, len(h.snaps))
	assert.Equal(t, 0, h.fake.PlayRequests)
}

func TestSnapshotReflectsGuard(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.fake.SetTimes("00:10", "02:00")
	h.fake.SetLessons(titles(2), 0)
	h.fake.SetPlayer(page.PlayerState{Present: true, Paused: true})
	h.mon.Start(context.Background())

	h.sched.Advance(time.Second)
	assert.False(t, h.last().Guarded, "snapshot is taken before the play request")

	h.sched.Advance(time.Second)
	assert.True(t, h.last().Guarded)
	assert.True(t, strings.HasPrefix(h.last().URL, "https://sysaq.sdu.edu.cn/"))
}

func TestDialogLoggedAtVerbose(t *testing.T) {
	for _, tt := range []struct {
		level logging.Level
		want  bool
	}{
		{logging.LevelNormal, false},
		{logging.LevelVerbose, true},
	} {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			fake := pagetest.New(courseURL)
			fake.SetTimes("00:10", "02:00")
			fake.SetLessons(titles(2), 0)
			fake.SetDialog(true)
			sched := schedule.NewManual(epoch)

			mon, err := New(fake, sched, logging.NewWriterLogger(&buf, "monitor", tt.level), DefaultConfig())
			require.NoError(t, err)
			mon.Start(context.Background())
			sched.Advance(time.Second)

			assert.Equal(t, 1, fake.Dismissed)
			assert.Equal(t, tt.want, strings.Contains(buf.String(), "dialog detected and closed"))
		})
	}
}
