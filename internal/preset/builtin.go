package preset

import (
	"context"
	"fmt"

	"rhythm/internal/timer"
)

var builtins = []Preset{
	{
		Name:          "Quick HIIT",
		Configuration: timer.Configuration{WorkDuration: 20, RestDuration: 10, Rounds: 8},
		Exercises:     []string{"Jumping Jacks", "Push-ups", "Squats", "Burpees"},
	},
	{
		Name:          "Tabata Classic",
		Configuration: timer.Configuration{WorkDuration: 20, RestDuration: 10, Rounds: 8},
		Exercises:     []string{"High Knees", "Mountain Climbers", "Plank", "Lunges"},
	},
	{
		Name:          "Strength Training",
		Configuration: timer.Configuration{WorkDuration: 45, RestDuration: 15, Rounds: 6},
		Exercises:     []string{"Deadlifts", "Bench Press", "Squats", "Pull-ups", "Rows", "Overhead Press"},
	},
	{
		Name:          "Cardio Burst",
		Configuration: timer.Configuration{WorkDuration: 30, RestDuration: 15, Rounds: 12},
		Exercises:     []string{"Jump Rope", "Running in Place", "Jumping Jacks", "High Knees"},
	},
	{
		Name:          "Beginner Friendly",
		Configuration: timer.Configuration{WorkDuration: 30, RestDuration: 30, Rounds: 5},
		Exercises:     []string{"Walking in Place", "Arm Circles", "Bodyweight Squats", "Wall Push-ups", "Stretching"},
	},
}

// Builtins returns the read-only presets shipped with the application.
func Builtins() []Preset {
	out := copyAll(builtins)
	for i := range out {
		out[i].Builtin = true
	}
	return out
}

// IsBuiltin reports whether name belongs to a shipped preset.
func IsBuiltin(name string) bool {
	_, ok := findBuiltin(name)
	return ok
}

func findBuiltin(name string) (Preset, bool) {
	for _, p := range builtins {
		if p.Name == name {
			out := p.Copy()
			out.Builtin = true
			return out, true
		}
	}
	return Preset{}, false
}

// Catalog lists the built-in presets ahead of a user repository and keeps
// their names reserved.
type Catalog struct {
	user Repository
}

// NewCatalog wraps user. A nil user repository serves built-ins only.
func NewCatalog(user Repository) *Catalog {
	return &Catalog{user: user}
}

// List returns built-ins followed by user presets.
func (c *Catalog) List(ctx context.Context) ([]Preset, error) {
	out := Builtins()
	if c.user == nil {
		return out, nil
	}
	user, err := c.user.List(ctx)
	if err != nil {
		return nil, err
	}
	return append(out, user...), nil
}

// Get finds a built-in or user preset.
func (c *Catalog) Get(ctx context.Context, name string) (Preset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Preset{}, err
	}
	if p, ok := findBuiltin(name); ok {
		return p, nil
	}
	if c.user == nil {
		return Preset{}, fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return c.user.Get(ctx, name)
}

// Save stores a user preset. Built-in names cannot be saved over.
func (c *Catalog) Save(ctx context.Context, p Preset, overwrite bool) (SaveResult, error) {
	name, err := NormalizeName(p.Name)
	if err != nil {
		return 0, err
	}
	if IsBuiltin(name) {
		return 0, fmt.Errorf("save %q: %w", name, ErrReadOnly)
	}
	if c.user == nil {
		return 0, fmt.Errorf("save %q: %w", name, ErrReadOnly)
	}
	return c.user.Save(ctx, p, overwrite)
}

// Delete removes a user preset. Built-ins cannot be deleted.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if IsBuiltin(name) {
		return fmt.Errorf("delete %q: %w", name, ErrReadOnly)
	}
	if c.user == nil {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return c.user.Delete(ctx, name)
}
