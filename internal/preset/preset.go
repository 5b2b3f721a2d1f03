// Package preset stores named workout setups.
package preset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"rhythm/internal/timer"
)

// MaxNameLength bounds preset names.
const MaxNameLength = 64

var (
	// ErrNotFound is returned when no preset has the requested name.
	ErrNotFound = errors.New("preset not found")
	// ErrConflict is returned when saving would replace a different preset.
	ErrConflict = errors.New("preset name already in use")
	// ErrReadOnly is returned when changing a built-in preset.
	ErrReadOnly = errors.New("preset is read-only")
	// ErrInvalidName is returned for blank or oversized names.
	ErrInvalidName = errors.New("invalid preset name")
)

// Preset is a named configuration and optional exercise list.
type Preset struct {
	Name                string `json:"name" yaml:"name"`
	timer.Configuration `json:",inline" yaml:",inline"`
	Exercises           []string  `json:"exercises,omitempty" yaml:"exercises,omitempty"`
	Builtin             bool      `json:"builtin,omitempty" yaml:"-"`
	CreatedAt           time.Time `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
}

// SaveResult reports what Save did.
type SaveResult int

const (
	Created SaveResult = iota + 1
	Updated
	Unchanged
)

func (r SaveResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Repository persists presets. Names are unique within a repository.
type Repository interface {
	List(ctx context.Context) ([]Preset, error)
	Get(ctx context.Context, name string) (Preset, error)
	// Save stores p. An existing preset with the same name is replaced only
	// when overwrite is set; otherwise a differing one yields ErrConflict.
	Save(ctx context.Context, p Preset, overwrite bool) (SaveResult, error)
	Delete(ctx context.Context, name string) error
}

// NormalizeName trims name and checks its length.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(trimmed) > MaxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return trimmed, nil
}

// Normalize returns a validated copy of p with a trimmed name, clamped
// configuration and trimmed exercises.
func (p Preset) Normalize() (Preset, error) {
	name, err := NormalizeName(p.Name)
	if err != nil {
		return Preset{}, err
	}
	exercises, err := timer.ValidateExercises(p.Exercises)
	if err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", name, err)
	}
	out := p.Copy()
	out.Name = name
	out.Configuration = p.Configuration.Normalize()
	out.Exercises = exercises
	if len(out.Exercises) == 0 {
		out.Exercises = nil
	}
	return out, nil
}

// Copy returns p with its own exercise slice.
func (p Preset) Copy() Preset {
	if p.Exercises != nil {
		p.Exercises = slices.Clone(p.Exercises)
	}
	return p
}

// SameSetup reports whether a and b would configure a workout identically.
func SameSetup(a, b Preset) bool {
	return a.Configuration == b.Configuration && slices.Equal(a.Exercises, b.Exercises)
}

// Summary is a short human description such as "20s work, 10s rest, 8 rounds".
func (p Preset) Summary() string {
	s := fmt.Sprintf("%ds work, %ds rest, %d rounds", p.WorkDuration, p.RestDuration, p.Rounds)
	if n := len(p.Exercises); n > 0 {
		s += fmt.Sprintf(", %d exercises", n)
	}
	return s
}

func copyAll(list []Preset) []Preset {
	out := make([]Preset, len(list))
	for i, p := range list {
		out[i] = p.Copy()
	}
	return out
}
