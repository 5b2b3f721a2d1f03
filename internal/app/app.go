// Package app assembles the timer, presets and cues from configuration.
package app

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"rhythm/internal/appconfig"
	"rhythm/internal/cue"
	"rhythm/internal/preset"
	"rhythm/internal/timer"
)

// Presets is the opened preset storage.
type Presets struct {
	*preset.Catalog
	file *preset.FileRepository
	db   *preset.SQLRepository
	cfg  appconfig.PresetsConfig
}

// OpenPresets opens the configured user preset backend behind the built-in catalog.
func OpenPresets(cfg appconfig.PresetsConfig, logger pslog.Logger) (*Presets, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	p := &Presets{cfg: cfg}
	switch cfg.Backend {
	case appconfig.BackendFile, "":
		repo, err := preset.NewFileRepository(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		p.file = repo
		p.Catalog = preset.NewCatalog(repo)
	case appconfig.BackendSQLite:
		repo, err := preset.OpenSQLite(cfg.Path, cfg.UserID, logger)
		if err != nil {
			return nil, err
		}
		p.db = repo
		p.Catalog = preset.NewCatalog(repo)
	default:
		return nil, fmt.Errorf("unsupported presets backend %q", cfg.Backend)
	}
	logger.Debug("presets opened", "backend", cfg.Backend, "path", cfg.Path)
	return p, nil
}

// Watch reports external changes to the preset file. It does nothing for the
// database backend or when watching is disabled.
func (p *Presets) Watch(ctx context.Context, onChange func()) error {
	if p.file == nil || !p.cfg.Watch {
		return nil
	}
	return p.file.Watch(ctx, onChange)
}

// Close releases the backend.
func (p *Presets) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// NewEngine creates an engine loaded with the configured workout.
func NewEngine(cfg appconfig.TimerConfig, logger pslog.Logger, opts ...timer.Option) (*timer.Engine, error) {
	if logger != nil {
		opts = append([]timer.Option{timer.WithLogger(logger)}, opts...)
	}
	engine := timer.New(cfg.Configuration(), opts...)
	if len(cfg.Exercises) > 0 {
		if err := engine.SetExercises(cfg.Exercises); err != nil {
			engine.Close()
			return nil, fmt.Errorf("timer.exercises: %w", err)
		}
	}
	return engine, nil
}

// NewPlayer returns the local cue player for cfg.
func NewPlayer(cfg appconfig.CuesConfig, logger pslog.Logger) *cue.CommandPlayer {
	return cue.NewCommandPlayer(cfg.CommandConfig(), logger)
}

// CueOptions returns which cue parts are enabled.
func CueOptions(cfg appconfig.CuesConfig) cue.Options {
	return cue.Options{Tones: cfg.Tones, Speech: cfg.Speech}
}
