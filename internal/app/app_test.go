package app

import (
	"context"
	"path/filepath"
	"testing"

	"rhythm/internal/appconfig"
	"rhythm/internal/preset"
	"rhythm/internal/timer"
	"rhythm/pkg/realtime"
)

func TestOpenPresetsBackends(t *testing.T) {
	for _, backend := range []string{appconfig.BackendFile, appconfig.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			p, err := OpenPresets(appconfig.PresetsConfig{
				Backend: backend,
				Path:    filepath.Join(t.TempDir(), "presets"),
				UserID:  "alice",
			}, nil)
			if err != nil {
				t.Fatalf("OpenPresets: %v", err)
			}
			defer p.Close()
			if _, err := p.Save(ctx, preset.Preset{Name: "Mine", Configuration: timer.DefaultConfiguration()}, false); err != nil {
				t.Fatalf("Save: %v", err)
			}
			list, err := p.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != len(preset.Builtins())+1 {
				t.Fatalf("list %d entries", len(list))
			}
			if err := p.Watch(ctx, func() {}); err != nil {
				t.Fatalf("Watch: %v", err)
			}
		})
	}
}

func TestOpenPresetsRejectsUnknownBackend(t *testing.T) {
	if _, err := OpenPresets(appconfig.PresetsConfig{Backend: "cloud", Path: "x"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewEngineLoadsWorkout(t *testing.T) {
	engine, err := NewEngine(appconfig.TimerConfig{
		WorkSeconds: 40,
		RestSeconds: 20,
		Rounds:      3,
		Exercises:   []string{"Rows", "Dips"},
	}, nil, timer.WithScheduler(realtime.NewManualScheduler()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()
	snap := engine.Snapshot()
	if snap.Configuration.WorkDuration != 40 || snap.Exercise != "Rows" || len(snap.Exercises) != 2 {
		t.Fatalf("snapshot %+v", snap)
	}
}

func TestNewEngineRejectsBadExercises(t *testing.T) {
	if _, err := NewEngine(appconfig.TimerConfig{Exercises: []string{"A", "A"}}, nil); err == nil {
		t.Fatal("expected duplicate exercise error")
	}
}
