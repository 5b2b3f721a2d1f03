package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"rhythm/internal/cue"
	"rhythm/internal/timer"
	"rhythm/internal/viewmodel"
)

const (
	defaultWidth = 60
	minBarWidth  = 20
	maxBarWidth  = 60
)

var (
	workColor     = lipgloss.Color("203")
	restColor     = lipgloss.Color("42")
	finishedColor = lipgloss.Color("141")

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 4).
			BorderStyle(lipgloss.RoundedBorder())
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	exerciseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))
	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

// Status is the transient state shown below the timer.
type Status struct {
	Width int
	Toast cue.Toast
	Err   error
}

func phaseColor(p timer.Phase) lipgloss.Color {
	switch p {
	case timer.PhaseWork:
		return workColor
	case timer.PhaseRest:
		return restColor
	default:
		return finishedColor
	}
}

// Render draws the timer screen for snap.
func Render(snap timer.Snapshot, status Status) string {
	v := viewmodel.TimerFromSnapshot(snap)
	accent := phaseColor(snap.Phase)

	barWidth := status.Width - 4
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}

	var b strings.Builder
	badge := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(accent).Padding(0, 2)
	b.WriteString(badge.Render(v.PhaseLabel))
	if v.Paused {
		b.WriteString(labelStyle.Render("  PAUSED"))
	}
	b.WriteString("\n")

	clock := clockStyle.BorderForeground(accent)
	if v.Countdown {
		clock = clock.Foreground(accent)
	}
	b.WriteString(clock.Render(v.Clock))
	b.WriteString("\n")

	phaseBar := progress.New(progress.WithSolidFill(string(accent)), progress.WithWidth(barWidth), progress.WithoutPercentage())
	b.WriteString(phaseBar.ViewAs(v.PhaseProgress))
	b.WriteString("\n")

	if v.Exercise != "" && !v.Finished {
		b.WriteString(exerciseStyle.Render(v.Exercise))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("Round %d of %d", v.CurrentRound, v.TotalRounds)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Overall Progress"))
	b.WriteString("\n")
	overall := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	b.WriteString(overall.ViewAs(v.OverallProgress))
	b.WriteString("\n")

	if status.Toast.Title != "" {
		b.WriteString("\n")
		b.WriteString(toastStyle.Render(status.Toast.Title + " " + status.Toast.Message))
		b.WriteString("\n")
	}
	if status.Err != nil {
		b.WriteString(errorStyle.Render(status.Err.Error()))
		b.WriteString("\n")
	}

	action := "start"
	switch {
	case v.Running:
		action = "pause"
	case v.Paused:
		action = "resume"
	}
	help := fmt.Sprintf("space %s • r reset • q quit", action)
	if v.Finished {
		help = "r reset • q quit"
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}
