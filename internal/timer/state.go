package timer

import "fmt"

// Phase is the segment of a round the session is in.
type Phase int

const (
	PhaseWork Phase = iota
	PhaseRest
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWork:
		return "work"
	case PhaseRest:
		return "rest"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase name for JSON and YAML.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// RunState says whether the clock is moving.
type RunState int

const (
	Idle RunState = iota
	Running
	Paused
)

func (r RunState) String() string {
	switch r {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("runstate(%d)", int(r))
	}
}

// MarshalText renders the run state name for JSON and YAML.
func (r RunState) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Session is the live state of one workout.
type Session struct {
	RunState      RunState
	Phase         Phase
	CurrentRound  int
	TimeRemaining int
	ExerciseIndex int
}

// InitialSession is the state before a workout starts, and after a reset.
func InitialSession(cfg Configuration) Session {
	return Session{
		RunState:      Idle,
		Phase:         PhaseWork,
		CurrentRound:  1,
		TimeRemaining: cfg.WorkDuration,
		ExerciseIndex: 0,
	}
}
