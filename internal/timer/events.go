package timer

import (
	"fmt"
	"time"
)

// EventKind identifies what happened to the session.
type EventKind int

const (
	// EventStarted is emitted when the clock starts or resumes.
	EventStarted EventKind = iota + 1
	// EventPaused is emitted when a running clock is paused.
	EventPaused
	// EventReset is emitted after a reset or a settings change.
	EventReset
	// EventPhaseEntered is emitted when work or rest begins by transition.
	EventPhaseEntered
	// EventCountdown is emitted when 3, 2 or 1 seconds remain.
	EventCountdown
	// EventWorkoutFinished is emitted once the last rest completes.
	EventWorkoutFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventReset:
		return "reset"
	case EventPhaseEntered:
		return "phase_entered"
	case EventCountdown:
		return "countdown"
	case EventWorkoutFinished:
		return "workout_finished"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// MarshalText renders the kind name for JSON.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a notification from the engine. Fields not relevant to Kind are zero.
type Event struct {
	Kind        EventKind `json:"kind"`
	Phase       Phase     `json:"phase"`
	Round       int       `json:"round"`
	Exercise    string    `json:"exercise,omitempty"`
	Duration    int       `json:"duration,omitempty"`
	SecondsLeft int       `json:"secondsLeft,omitempty"`
	TotalRounds int       `json:"totalRounds,omitempty"`
	// Resumed is set on EventStarted when the clock continues from a pause.
	Resumed bool      `json:"resumed,omitempty"`
	Session Snapshot  `json:"session"`
	At      time.Time `json:"at"`
}

// Announces reports whether a start event should call out the round being begun.
func (e Event) Announces() bool {
	return e.Kind == EventStarted && !e.Resumed && e.Phase == PhaseWork
}
