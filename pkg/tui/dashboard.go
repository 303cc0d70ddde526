// Package tui provides the full-screen dashboard shown while a course is
// being monitored.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/autostudy/pkg/monitor"
)

// Dashboard runs the bubbletea program and feeds it monitor snapshots.
type Dashboard struct {
	program *tea.Program
	sink    *sink
}

// New creates a dashboard titled with the monitored address.
func New(target string, opts ...tea.ProgramOption) *Dashboard {
	m := newModel(target)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(m, opts...)
	return &Dashboard{
		program: program,
		sink:    newSink(program.Send),
	}
}

// Observer returns a monitor observer that never blocks the monitor loop.
// Snapshots published faster than the program consumes them are coalesced,
// keeping the latest.
func (d *Dashboard) Observer() monitor.Observer {
	return d.sink.publish
}

// Run blocks until the user quits or ctx is cancelled. It reports whether
// the user asked to quit.
func (d *Dashboard) Run(ctx context.Context) (bool, error) {
	go d.sink.forward(ctx)
	go func() {
		<-ctx.Done()
		d.program.Quit()
	}()

	final, err := d.program.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run dashboard: %w", err)
	}
	m, _ := final.(model)
	return m.quitting, nil
}

// sink decouples the monitor loop from the program's message channel.
type sink struct {
	send    func(tea.Msg)
	pending chan monitor.Snapshot
}

func newSink(send func(tea.Msg)) *sink {
	return &sink{send: send, pending: make(chan monitor.Snapshot, 1)}
}

// publish replaces any undelivered snapshot with s.
func (s *sink) publish(snap monitor.Snapshot) {
	for {
		select {
		case s.pending <- snap:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

// forward delivers snapshots to the program until ctx is done.
func (s *sink) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.pending:
			s.send(snapshotMsg(snap))
		}
	}
}
