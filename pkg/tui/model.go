package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/autostudy/pkg/course"
	"github.com/entrhq/autostudy/pkg/monitor"
	"github.com/entrhq/autostudy/pkg/overlay"
)

const (
	maxEvents     = 6
	defaultWidth  = 60
	progressInset = 4
)

// snapshotMsg carries a monitor snapshot into the program.
type snapshotMsg monitor.Snapshot

// event is a notable transition shown under the progress bar.
type event struct {
	at   time.Time
	text string
}

// model is the dashboard state.
type model struct {
	spinner  spinner.Model
	progress progress.Model

	target string
	last   monitor.Snapshot
	seen   bool
	events []event

	width    int
	quitting bool
}

func newModel(target string) model {
	bar := progress.New(progress.WithSolidFill(string(mintGreen)))
	bar.Width = defaultWidth - progressInset
	return model{
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: bar,
		target:   target,
		width:    defaultWidth,
	}
}

// Init starts the spinner.
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles keys, resizes, spinner ticks and snapshots.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, msg.Width-progressInset)
		return m, nil

	case snapshotMsg:
		m.observe(monitor.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// observe records a snapshot and derives events from the transition.
func (m *model) observe(s monitor.Snapshot) {
	prev, hadPrev := m.last, m.seen
	m.last, m.seen = s, true

	switch {
	case hadPrev && prev.OnTarget && !s.OnTarget:
		m.addEvent(s.At, "离开课程页面")
	case hadPrev && !prev.OnTarget && s.OnTarget:
		m.addEvent(s.At, "回到课程页面")
	}

	switch s.Outcome {
	case course.OutcomeAdvanced:
		m.addEvent(s.At, fmt.Sprintf("%s 已完成, 切换到下一课程", s.View.Course))
	case course.OutcomeAllComplete:
		m.addEvent(s.At, "所有课程已完成")
	}
}

func (m *model) addEvent(at time.Time, text string) {
	m.events = append(m.events, event{at: at, text: text})
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// View renders the dashboard.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("autostudy"))
	if m.target != "" {
		b.WriteString(" " + helpStyle.Render(m.target))
	}
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Width(max(20, m.width-2)).Render(m.body()))
	b.WriteString("\n")

	for _, e := range m.events {
		b.WriteString(eventStyle.Render(fmt.Sprintf("%s  %s", e.at.Format(time.TimeOnly), e.text)))
		b.WriteString("\n")
	}
	b.WriteString("\n" + helpStyle.Render("q 退出"))
	return b.String()
}

func (m model) body() string {
	if !m.seen {
		return m.spinner.View() + " 等待页面..."
	}
	if !m.last.OnTarget {
		return m.spinner.View() + " 当前页面不是课程页面: " + m.last.URL
	}

	v := m.last.View
	rows := []string{row("当前课程", v.Course)}

	switch v.Mode {
	case overlay.ModeLoading:
		rows = append(rows, m.spinner.View()+" 正在获取学习时间信息...")
	case overlay.ModeAllComplete:
		rows = append(rows,
			doneStyle.Render("所有课程已完成! 🎉"),
			row("课程数", fmt.Sprintf("%d", v.Count)),
		)
	default:
		rows = append(rows,
			row("状态", fmt.Sprintf("进行中 (%d/%d)", v.Position, v.Count)),
			row("已学时间", v.Studied),
			row("需学时间", v.Total),
			row("完成度", fmt.Sprintf("%d%%", v.Percent)),
			m.progress.ViewAs(float64(v.BarWidth())/100),
		)
		if v.Switching() {
			rows = append(rows, doneStyle.Render("准备切换下一课程..."))
		}
		if m.last.Guarded {
			rows = append(rows, helpStyle.Render("正在请求播放..."))
		}
	}
	return strings.Join(rows, "\n")
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
