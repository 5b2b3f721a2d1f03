package settings

import (
	"errors"
	"testing"

	"rhythm/internal/preset"
	"rhythm/internal/timer"
	"rhythm/pkg/realtime"
)

func newStore(t *testing.T) (*Store, *timer.Engine) {
	t.Helper()
	engine := timer.New(timer.DefaultConfiguration(), timer.WithScheduler(realtime.NewManualScheduler()))
	t.Cleanup(engine.Close)
	return New(engine, nil), engine
}

func TestUpdateClamps(t *testing.T) {
	s, engine := newStore(t)
	cfg, err := s.Update(timer.Configuration{WorkDuration: 25, RestDuration: 0, Rounds: -1})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := timer.Configuration{WorkDuration: 25, RestDuration: 1, Rounds: 1}
	if cfg != want || engine.Snapshot().Configuration != want {
		t.Fatalf("configuration %+v, want %+v", cfg, want)
	}
	if engine.Snapshot().TimeRemaining != 25 {
		t.Fatalf("remaining %d", engine.Snapshot().TimeRemaining)
	}
}

func TestEditsRejectedWhileRunning(t *testing.T) {
	s, engine := newStore(t)
	_ = engine.Start()
	if _, err := s.Update(timer.DefaultConfiguration()); !errors.Is(err, timer.ErrIllegalTransition) {
		t.Fatalf("Update: %v", err)
	}
	if _, err := s.AddExercise("Squats"); !errors.Is(err, timer.ErrIllegalTransition) {
		t.Fatalf("AddExercise: %v", err)
	}
	if err := s.ApplyPreset(preset.Builtins()[0]); !errors.Is(err, timer.ErrIllegalTransition) {
		t.Fatalf("ApplyPreset: %v", err)
	}
}

func TestExerciseManagement(t *testing.T) {
	s, _ := newStore(t)
	for _, name := range []string{"Squats", " Lunges ", "Plank"} {
		if _, err := s.AddExercise(name); err != nil {
			t.Fatalf("AddExercise(%q): %v", name, err)
		}
	}
	if _, err := s.AddExercise("Lunges"); !errors.Is(err, timer.ErrDuplicateExercise) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := s.AddExercise("  "); !errors.Is(err, timer.ErrEmptyExercise) {
		t.Fatalf("blank: %v", err)
	}
	list, err := s.RemoveExercise(0)
	if err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	if len(list) != 2 || list[0] != "Lunges" || list[1] != "Plank" {
		t.Fatalf("list %v", list)
	}
	if _, err := s.RemoveExercise(5); !errors.Is(err, timer.ErrExerciseIndex) {
		t.Fatalf("out of range: %v", err)
	}
}

func TestApplyPresetCopies(t *testing.T) {
	s, engine := newStore(t)
	p := preset.Builtins()[2]
	if err := s.ApplyPreset(p); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	p.Exercises[0] = "changed"
	snap := engine.Snapshot()
	if snap.Configuration.WorkDuration != 45 || snap.Exercises[0] != "Deadlifts" {
		t.Fatalf("snapshot %+v", snap)
	}
	if snap.Exercise != "Deadlifts" || snap.ExerciseIndex != 0 {
		t.Fatalf("exercise index not reset: %d %q", snap.ExerciseIndex, snap.Exercise)
	}
}

func TestCapture(t *testing.T) {
	s, _ := newStore(t)
	_, _ = s.AddExercise("Rows")
	p, err := s.Capture(" Saved ")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if p.Name != "Saved" || p.Configuration != timer.DefaultConfiguration() || len(p.Exercises) != 1 {
		t.Fatalf("captured %+v", p)
	}
	if _, err := s.Capture(""); !errors.Is(err, preset.ErrInvalidName) {
		t.Fatalf("blank name: %v", err)
	}
}
