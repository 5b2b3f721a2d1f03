package viewmodel

import (
	"fmt"
	"math"

	"rhythm/internal/preset"
	"rhythm/internal/timer"
)

// Page holds data for the main timer page template.
type Page struct {
	Title    string
	Timer    Timer
	Settings Settings
	Presets  Presets
}

// Timer holds data for the timer display fragment.
type Timer struct {
	Phase           string
	PhaseLabel      string
	RunState        string
	Clock           string
	TimeRemaining   int
	CurrentRound    int
	TotalRounds     int
	Exercise        string
	PhaseProgress   float64
	OverallProgress float64
	OverallPercent  int
	Running         bool
	Paused          bool
	Finished        bool
	CanStart        bool
	CanPause        bool
	// Countdown is set during the last three seconds of a running phase.
	Countdown bool
}

// Settings holds data for the configuration and exercise forms.
type Settings struct {
	WorkDuration int
	RestDuration int
	Rounds       int
	Exercises    []Exercise
	Editable     bool
}

// Exercise is one row of the exercise list.
type Exercise struct {
	Index   int
	Name    string
	Current bool
}

// Presets holds data for the preset list.
type Presets struct {
	Items    []PresetItem
	Editable bool
}

// PresetItem is one preset in the list.
type PresetItem struct {
	Name      string
	Summary   string
	Exercises []string
	Builtin   bool
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// PhaseLabel is the banner text for a phase.
func PhaseLabel(p timer.Phase) string {
	switch p {
	case timer.PhaseWork:
		return "WORK"
	case timer.PhaseRest:
		return "REST"
	default:
		return "COMPLETE"
	}
}

// TimerFromSnapshot builds the timer fragment data.
func TimerFromSnapshot(s timer.Snapshot) Timer {
	finished := s.Phase == timer.PhaseFinished
	running := s.RunState == timer.Running
	return Timer{
		Phase:           s.Phase.String(),
		PhaseLabel:      PhaseLabel(s.Phase),
		RunState:        s.RunState.String(),
		Clock:           FormatClock(s.TimeRemaining),
		TimeRemaining:   s.TimeRemaining,
		CurrentRound:    s.CurrentRound,
		TotalRounds:     s.TotalRounds,
		Exercise:        s.Exercise,
		PhaseProgress:   s.PhaseProgress,
		OverallProgress: s.OverallProgress,
		OverallPercent:  int(math.Round(s.OverallProgress * 100)),
		Running:         running,
		Paused:          s.RunState == timer.Paused,
		Finished:        finished,
		CanStart:        !running && !finished,
		CanPause:        running,
		Countdown:       running && s.TimeRemaining > 0 && s.TimeRemaining <= 3,
	}
}

// SettingsFromSnapshot builds the settings form data.
func SettingsFromSnapshot(s timer.Snapshot) Settings {
	exercises := make([]Exercise, 0, len(s.Exercises))
	for i, name := range s.Exercises {
		exercises = append(exercises, Exercise{
			Index:   i,
			Name:    name,
			Current: i == s.ExerciseIndex && s.RunState != timer.Idle,
		})
	}
	return Settings{
		WorkDuration: s.Configuration.WorkDuration,
		RestDuration: s.Configuration.RestDuration,
		Rounds:       s.Configuration.Rounds,
		Exercises:    exercises,
		Editable:     s.RunState == timer.Idle,
	}
}

// PresetsFromList builds the preset list data.
func PresetsFromList(list []preset.Preset, editable bool) Presets {
	items := make([]PresetItem, 0, len(list))
	for _, p := range list {
		items = append(items, PresetItem{
			Name:      p.Name,
			Summary:   p.Summary(),
			Exercises: p.Exercises,
			Builtin:   p.Builtin,
		})
	}
	return Presets{Items: items, Editable: editable}
}
