// Package logx holds logger helpers shared across packages.
package logx

import (
	"pkt.systems/pslog"

	"rhythm/internal/timer"
)

// WithUser annotates the logger with the preset user scope when available.
func WithUser(log pslog.Logger, userID string) pslog.Logger {
	if userID != "" {
		log = log.With("user", userID)
	}
	return log
}

// WithPreset annotates the logger with a preset name when available.
func WithPreset(log pslog.Logger, name string) pslog.Logger {
	if name != "" {
		log = log.With("preset", name)
	}
	return log
}

// WithEvent annotates the logger with the fields of a timer event.
func WithEvent(log pslog.Logger, ev timer.Event) pslog.Logger {
	log = log.With("event", ev.Kind.String(), "phase", ev.Phase.String(), "round", ev.Round)
	if ev.Exercise != "" {
		log = log.With("exercise", ev.Exercise)
	}
	return log
}
