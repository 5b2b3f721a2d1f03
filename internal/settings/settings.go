// Package settings edits the workout setup of a timer engine.
package settings

import (
	"context"
	"sync"

	"pkt.systems/pslog"

	"rhythm/internal/preset"
	"rhythm/internal/timer"
)

// Engine is the part of the timer the settings store drives.
type Engine interface {
	Snapshot() timer.Snapshot
	UpdateConfiguration(cfg timer.Configuration) error
	SetExercises(list []string) error
	Configure(cfg timer.Configuration, list []string) error
}

// Store applies configuration and exercise edits to an engine. Edits are only
// accepted while the engine is idle; otherwise timer.ErrIllegalTransition is returned.
type Store struct {
	mu     sync.Mutex
	engine Engine
	log    pslog.Logger
}

// New returns a store editing engine.
func New(engine Engine, logger pslog.Logger) *Store {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Store{engine: engine, log: logger}
}

// Current returns the configuration and a copy of the exercise list.
func (s *Store) Current() (timer.Configuration, []string) {
	snap := s.engine.Snapshot()
	return snap.Configuration, snap.Exercises
}

// Update clamps cfg and applies it.
func (s *Store) Update(cfg timer.Configuration) (timer.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg = cfg.Normalize()
	if err := s.engine.UpdateConfiguration(cfg); err != nil {
		return timer.Configuration{}, err
	}
	s.log.Info("configuration updated", "work", cfg.WorkDuration, "rest", cfg.RestDuration, "rounds", cfg.Rounds)
	return cfg, nil
}

// AddExercise appends name to the exercise list.
func (s *Store) AddExercise(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := timer.AddExercise(s.engine.Snapshot().Exercises, name)
	if err != nil {
		return nil, err
	}
	if err := s.engine.SetExercises(next); err != nil {
		return nil, err
	}
	s.log.Debug("exercise added", "exercise", next[len(next)-1], "count", len(next))
	return next, nil
}

// RemoveExercise drops the exercise at index.
func (s *Store) RemoveExercise(index int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := timer.RemoveExercise(s.engine.Snapshot().Exercises, index)
	if err != nil {
		return nil, err
	}
	if err := s.engine.SetExercises(next); err != nil {
		return nil, err
	}
	s.log.Debug("exercise removed", "index", index, "count", len(next))
	return next, nil
}

// ApplyPreset loads a copy of p's configuration and exercises.
func (s *Store) ApplyPreset(p preset.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = p.Copy()
	if err := s.engine.Configure(p.Configuration, p.Exercises); err != nil {
		return err
	}
	s.log.Info("preset applied", "preset", p.Name)
	return nil
}

// Capture returns the current setup as a preset called name.
func (s *Store) Capture(name string) (preset.Preset, error) {
	cfg, exercises := s.Current()
	return preset.Preset{
		Name:          name,
		Configuration: cfg,
		Exercises:     exercises,
	}.Normalize()
}
