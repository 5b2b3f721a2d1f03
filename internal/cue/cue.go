// Package cue turns timer events into tones, speech and toast notifications.
package cue

import (
	"errors"
	"fmt"
	"time"

	"rhythm/internal/timer"
)

// ErrUnavailable is returned by players whose audio or speech backend is missing.
var ErrUnavailable = errors.New("cue playback unavailable")

// DefaultSpeechRate is the speaking speed relative to normal.
const DefaultSpeechRate = 1.2

// Tone is a short sine beep.
type Tone struct {
	Frequency float64
	Duration  time.Duration
}

// DurationMs is the tone length in milliseconds.
func (t Tone) DurationMs() int64 {
	return t.Duration.Milliseconds()
}

var (
	CountdownTone = Tone{Frequency: 1200, Duration: 100 * time.Millisecond}
	RestTone      = Tone{Frequency: 600, Duration: 300 * time.Millisecond}
	WorkTone      = Tone{Frequency: 800, Duration: 300 * time.Millisecond}
	FinishTone    = Tone{Frequency: 1000, Duration: 500 * time.Millisecond}
)

// Cue is what to play for one event. Either part may be empty.
type Cue struct {
	Tone   *Tone
	Speech string
}

// Empty reports whether the cue plays nothing.
func (c Cue) Empty() bool {
	return c.Tone == nil && c.Speech == ""
}

// Announcement is the spoken text for entering round with exercise.
func Announcement(round int, exercise string) string {
	if exercise == "" {
		return fmt.Sprintf("Round %d, work time", round)
	}
	return fmt.Sprintf("Round %d, %s", round, exercise)
}

// Plan returns the cue for ev. The second result is false when ev has none.
func Plan(ev timer.Event) (Cue, bool) {
	switch ev.Kind {
	case timer.EventCountdown:
		return Cue{Tone: tone(CountdownTone)}, true
	case timer.EventPhaseEntered:
		if ev.Phase == timer.PhaseRest {
			return Cue{Tone: tone(RestTone), Speech: "Rest time"}, true
		}
		return Cue{Tone: tone(WorkTone), Speech: Announcement(ev.Round, ev.Exercise)}, true
	case timer.EventWorkoutFinished:
		return Cue{Tone: tone(FinishTone), Speech: "Workout complete"}, true
	case timer.EventStarted:
		if ev.Announces() {
			return Cue{Speech: Announcement(ev.Round, ev.Exercise)}, true
		}
	}
	return Cue{}, false
}

func tone(t Tone) *Tone {
	return &t
}

// Toast is a short on-screen notification.
type Toast struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ToastFor returns the notification shown for ev, if any.
func ToastFor(ev timer.Event) (Toast, bool) {
	switch ev.Kind {
	case timer.EventPhaseEntered:
		if ev.Phase == timer.PhaseRest {
			return Toast{
				Title:   "Work Complete!",
				Message: fmt.Sprintf("Rest for %d seconds", ev.Duration),
			}, true
		}
		msg := fmt.Sprintf("Round %d - Work for %d seconds", ev.Round, ev.Duration)
		if ev.Exercise != "" {
			msg = fmt.Sprintf("Round %d - %s", ev.Round, ev.Exercise)
		}
		return Toast{Title: "Next Round!", Message: msg}, true
	case timer.EventWorkoutFinished:
		return Toast{
			Title:   "Workout Complete!",
			Message: fmt.Sprintf("You completed %d rounds!", ev.TotalRounds),
		}, true
	}
	return Toast{}, false
}
