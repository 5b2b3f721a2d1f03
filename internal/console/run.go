package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"rhythm/internal/cue"
	"rhythm/internal/timer"
	"rhythm/internal/viewmodel"
)

// Run shows the full-screen timer until the user quits or ctx is done.
func Run(ctx context.Context, engine Engine, events <-chan timer.Event) error {
	p := tea.NewProgram(NewModel(engine, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Printer writes one line per timer event.
type Printer struct {
	w     io.Writer
	work  *color.Color
	rest  *color.Color
	done  *color.Color
	faint *color.Color
}

// NewPrinter writes event lines to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:     w,
		work:  color.New(color.FgRed, color.Bold),
		rest:  color.New(color.FgGreen, color.Bold),
		done:  color.New(color.FgMagenta, color.Bold),
		faint: color.New(color.Faint),
	}
}

// Print writes the line for ev. Events without a line are skipped.
func (p *Printer) Print(ev timer.Event) {
	clock := viewmodel.FormatClock(ev.Session.TimeRemaining)
	switch ev.Kind {
	case timer.EventStarted:
		verb := "start"
		if ev.Resumed {
			verb = "resume"
		}
		_, _ = p.faint.Fprintf(p.w, "%s %s round %d/%d\n", clock, verb, ev.Round, ev.TotalRounds)
	case timer.EventPaused:
		_, _ = p.faint.Fprintf(p.w, "%s paused\n", clock)
	case timer.EventReset:
		_, _ = p.faint.Fprintf(p.w, "%s reset\n", clock)
	case timer.EventPhaseEntered:
		c := p.work
		if ev.Phase == timer.PhaseRest {
			c = p.rest
		}
		line := fmt.Sprintf("%s %s round %d/%d", clock, viewmodel.PhaseLabel(ev.Phase), ev.Round, ev.TotalRounds)
		if ev.Phase == timer.PhaseWork && ev.Exercise != "" {
			line += " " + ev.Exercise
		}
		_, _ = c.Fprintln(p.w, line)
	case timer.EventCountdown:
		_, _ = p.faint.Fprintf(p.w, "%d...\n", ev.SecondsLeft)
	case timer.EventWorkoutFinished:
		_, _ = p.done.Fprintf(p.w, "%s %s %d rounds\n", clock, viewmodel.PhaseLabel(timer.PhaseFinished), ev.TotalRounds)
	}
}

// RunPlain starts the workout and prints events as lines until it finishes or
// ctx is done. Cues go through announcer when it is not nil.
func RunPlain(ctx context.Context, engine Engine, events <-chan timer.Event, w io.Writer, announcer *cue.Announcer) error {
	printer := NewPrinter(w)
	if announcer != nil {
		defer announcer.Wait()
	}
	if err := engine.Start(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			printer.Print(ev)
			if announcer != nil {
				announcer.Handle(ctx, ev)
			}
			if ev.Kind == timer.EventWorkoutFinished {
				return nil
			}
		}
	}
}
