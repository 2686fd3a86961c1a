// Package ui renders the live team watch view in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mhelleborg/taskforce/internal/health"
	"github.com/mhelleborg/taskforce/internal/orchestrator"
)

// SnapshotFunc produces a fresh team snapshot on every poll.
type SnapshotFunc func() (*orchestrator.TeamSnapshot, error)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// WatchModel is the top-level model for the watch command: a one-second
// tick loop that re-snapshots the team and redraws.
type WatchModel struct {
	team  string
	fetch SnapshotFunc

	snap *orchestrator.TeamSnapshot
	err  string
	spin spinner.Model
	now  time.Time

	width int
}

// NewWatch creates the watch model for a team.
func NewWatch(team string, fetch SnapshotFunc) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	return WatchModel{team: team, fetch: fetch, spin: sp, now: time.Now()}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refresh(), tickCmd())
}

type snapshotMsg struct {
	snap *orchestrator.TeamSnapshot
	err  error
}

func (m WatchModel) refresh() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.fetch()
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(m.refresh(), tickCmd())

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.snap = msg.snap
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func phaseStyle(p health.Phase) lipgloss.Style {
	switch p {
	case health.PhaseCompleted:
		return completedStyle
	case health.PhaseFixing:
		return fixingStyle
	default:
		return headerStyle
	}
}

// ViewContent renders the body without the outer border, so tests can
// assert on plain content.
func (m WatchModel) ViewContent() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("team: " + m.team))
	b.WriteString("\n\n")

	if m.snap == nil {
		b.WriteString(m.spin.View())
		b.WriteString(" waiting for first snapshot...")
		b.WriteString("\n")
	} else {
		snap := m.snap

		b.WriteString("phase: ")
		b.WriteString(phaseStyle(snap.Phase).Render(string(snap.Phase)))
		b.WriteString(fmt.Sprintf("   tasks: %d pending / %d in progress / %d completed / %d failed\n\n",
			snap.Counts.Pending, snap.Counts.InProgress, snap.Counts.Completed, snap.Counts.Failed))

		header := fmt.Sprintf("  %-12s %-12s %-8s %-10s %-8s %-12s", "Worker", "Type", "Pane", "State", "Task", "Heartbeat")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")

		for _, w := range snap.Workers {
			state := aliveStyle.Render("alive")
			switch {
			case !w.Alive:
				state = deadStyle.Render("dead")
			case w.Stalled:
				state = stalledStyle.Render("stalled")
			}
			// Pad to 10 visual characters; %-10s counts the ANSI bytes.
			if vw := lipgloss.Width(state); vw < 10 {
				state += strings.Repeat(" ", 10-vw)
			}

			task := w.CurrentTaskID
			if task == "" {
				task = "-"
			}

			hb := idleStyle.Render("never")
			if w.LastHeartbeat != nil {
				hb = formatAge(m.now.Sub(*w.LastHeartbeat)) + " ago"
			}

			b.WriteString(fmt.Sprintf("  %-12s %-12s %-8s %s%-8s %s\n",
				w.Name, w.AgentType, w.PaneID, state, task, hb))
		}
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  q: quit"))
	return b.String()
}

func (m WatchModel) View() string {
	maxWidth := m.width - 4
	if maxWidth < 40 {
		maxWidth = 80
	}
	return borderStyle.Width(maxWidth).Render(m.ViewContent())
}

func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}
