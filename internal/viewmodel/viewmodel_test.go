package viewmodel

import (
	"testing"

	"rhythm/internal/preset"
	"rhythm/internal/timer"
)

func TestFormatClock(t *testing.T) {
	for in, want := range map[int]string{0: "00:00", 9: "00:09", 75: "01:15", 600: "10:00", -3: "00:00"} {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTimerFromSnapshot(t *testing.T) {
	v := TimerFromSnapshot(timer.Snapshot{
		RunState:        timer.Running,
		Phase:           timer.PhaseRest,
		CurrentRound:    2,
		TotalRounds:     5,
		TimeRemaining:   3,
		OverallProgress: 0.4,
	})
	if v.PhaseLabel != "REST" || v.Clock != "00:03" || !v.Countdown || !v.CanPause || v.CanStart {
		t.Fatalf("view %+v", v)
	}
	if v.OverallPercent != 40 {
		t.Fatalf("percent %d", v.OverallPercent)
	}

	done := TimerFromSnapshot(timer.Snapshot{RunState: timer.Idle, Phase: timer.PhaseFinished})
	if !done.Finished || done.CanStart || done.PhaseLabel != "COMPLETE" {
		t.Fatalf("finished view %+v", done)
	}
}

func TestSettingsFromSnapshot(t *testing.T) {
	s := SettingsFromSnapshot(timer.Snapshot{
		RunState:      timer.Paused,
		ExerciseIndex: 1,
		Exercises:     []string{"A", "B"},
		Configuration: timer.Configuration{WorkDuration: 20, RestDuration: 10, Rounds: 8},
	})
	if s.Editable {
		t.Fatal("paused settings should not be editable")
	}
	if s.WorkDuration != 20 || len(s.Exercises) != 2 || !s.Exercises[1].Current || s.Exercises[0].Current {
		t.Fatalf("settings %+v", s)
	}
}

func TestPresetsFromList(t *testing.T) {
	v := PresetsFromList(preset.Builtins()[:1], true)
	if len(v.Items) != 1 || !v.Items[0].Builtin || v.Items[0].Summary != "20s work, 10s rest, 8 rounds, 4 exercises" {
		t.Fatalf("presets %+v", v)
	}
}
