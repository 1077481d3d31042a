package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/route-agent/internal/agent"
	"github.com/jwebster45206/route-agent/pkg/milestone"
	"github.com/jwebster45206/route-agent/pkg/state"
)

const cyclePeriod = time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")) // green

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

type cycleMsg struct {
	report *agent.CycleReport
	err    error
}

type tickMsg struct{}

// ConsoleUI is the BubbleTea model that runs the monitor.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	loop     *agent.Loop
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	report *agent.CycleReport
	err    error
	copied bool
}

func NewConsoleUI(loop *agent.Loop) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true
	return ConsoleUI{loop: loop, viewport: vp}
}

func (ui ConsoleUI) Init() tea.Cmd {
	return tea.Batch(runCycle(ui.loop), tick())
}

func tick() tea.Cmd {
	return tea.Tick(cyclePeriod, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func runCycle(loop *agent.Loop) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		report, err := loop.Cycle(ctx)
		return cycleMsg{report: report, err: err}
	}
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.viewport.Width = msg.Width - 2
		ui.viewport.Height = msg.Height - 4
		ui.ready = true
		ui.viewport.SetContent(ui.render())
		return ui, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return ui, tea.Quit
		case "c":
			if ui.report != nil {
				if data, err := json.MarshalIndent(ui.report, "", "  "); err == nil {
					_ = clipboard.WriteAll(string(data))
					ui.copied = true
				}
			}
			return ui, nil
		}

	case tickMsg:
		return ui, tea.Batch(runCycle(ui.loop), tick())

	case cycleMsg:
		ui.report = msg.report
		ui.err = msg.err
		ui.copied = false
		ui.viewport.SetContent(ui.render())
		return ui, nil
	}

	var cmd tea.Cmd
	ui.viewport, cmd = ui.viewport.Update(msg)
	return ui, cmd
}

func (ui ConsoleUI) View() string {
	if !ui.ready {
		return "Connecting to emulator..."
	}
	help := dimStyle.Render("q: quit  •  c: copy report JSON")
	if ui.copied {
		help = okStyle.Render("Report copied to clipboard")
	}
	return fmt.Sprintf("%s\n%s\n%s",
		titleStyle.Render(" ROUTE AGENT MONITOR "),
		ui.viewport.View(),
		help)
}

func (ui ConsoleUI) render() string {
	var b strings.Builder

	if ui.err != nil {
		b.WriteString(errorStyle.Render("Cycle error: "+ui.err.Error()) + "\n\n")
	}
	r := ui.report
	if r == nil {
		b.WriteString(dimStyle.Render("Waiting for first snapshot...") + "\n")
		return b.String()
	}

	b.WriteString(sectionStyle.Render("POSITION") + "\n")
	b.WriteString(fmt.Sprintf("%s  (%d,%d) facing %s  seq %d\n",
		milestone.DisplayName(r.MapID), r.Pos.X, r.Pos.Y, r.Facing, r.Seq))
	if r.Stale {
		b.WriteString(warnStyle.Render("stale snapshot (refresh failed)") + "\n")
	}
	if r.Degraded {
		b.WriteString(errorStyle.Render("CONNECTIVITY DEGRADED") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("MILESTONE") + "\n")
	if r.Milestone != nil {
		b.WriteString(r.Milestone.ID + "\n")
		b.WriteString(wordwrap.String(r.Milestone.Description, max(20, ui.viewport.Width-4)) + "\n")
	} else {
		b.WriteString(okStyle.Render("Route complete") + "\n")
	}
	b.WriteString("\n")

	p := r.Progress
	b.WriteString(sectionStyle.Render("PROGRESS") + "\n")
	b.WriteString(fmt.Sprintf("%.1f%%  (%d/%d)  elapsed %s  pace %s\n",
		p.PercentComplete, p.CompletedCount, p.TotalCount,
		p.Elapsed.Round(time.Second), paceLabel(p.Pace)))
	if cp := p.Checkpoint; cp != nil && cp.Notes != "" {
		b.WriteString(dimStyle.Render(wordwrap.String(cp.Notes, max(20, ui.viewport.Width-4))) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("MOVEMENT PREVIEW") + "\n")
	for _, d := range state.Directions {
		step, ok := r.Preview[d]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-5s : %s", d, step.Outcome)
		if step.Reason != "" {
			line += " (" + step.Reason + ")"
		}
		if step.Penalty > 0 {
			line += fmt.Sprintf(" penalty %.1f", step.Penalty)
		}
		if step.Traversable() {
			b.WriteString(okStyle.Render(line) + "\n")
		} else {
			b.WriteString(dimStyle.Render(line) + "\n")
		}
	}
	b.WriteString("\n")

	if r.Target != nil {
		b.WriteString(sectionStyle.Render("PATH") + "\n")
		switch {
		case r.TargetUnreachable:
			b.WriteString(warnStyle.Render(fmt.Sprintf("target (%d,%d) unreachable", r.Target.X, r.Target.Y)) + "\n")
		case len(r.Path) > 0:
			dirs := make([]string, len(r.Path))
			for i, d := range r.Path {
				dirs[i] = string(d)
			}
			b.WriteString(fmt.Sprintf("to (%d,%d): %s\n", r.Target.X, r.Target.Y, strings.Join(dirs, " → ")))
		default:
			b.WriteString(okStyle.Render("at target") + "\n")
		}
	}

	return b.String()
}

func paceLabel(p milestone.Pace) string {
	switch p {
	case milestone.PaceUnder:
		return okStyle.Render("ahead")
	case milestone.PaceOver:
		return errorStyle.Render("behind")
	default:
		return "on pace"
	}
}
