package timer

import (
	"fmt"
	"strings"
)

// NormalizeExercise trims name and rejects blanks.
func NormalizeExercise(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyExercise
	}
	return trimmed, nil
}

// ValidateExercises returns a trimmed copy of list, or an error if any entry is
// blank or repeated.
func ValidateExercises(list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for i, raw := range list {
		name, err := NormalizeExercise(raw)
		if err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i+1, err)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("exercise %q: %w", name, ErrDuplicateExercise)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// AddExercise returns a new list with name appended.
func AddExercise(list []string, name string) ([]string, error) {
	trimmed, err := NormalizeExercise(name)
	if err != nil {
		return nil, err
	}
	for _, existing := range list {
		if existing == trimmed {
			return nil, fmt.Errorf("exercise %q: %w", trimmed, ErrDuplicateExercise)
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, trimmed), nil
}

// RemoveExercise returns a new list without the entry at index.
func RemoveExercise(list []string, index int) ([]string, error) {
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("remove %d of %d: %w", index, len(list), ErrExerciseIndex)
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// ExerciseAt returns the exercise at index, or "" for an empty list.
func ExerciseAt(list []string, index int) string {
	if len(list) == 0 || index < 0 {
		return ""
	}
	return list[index%len(list)]
}

func nextExerciseIndex(index int, count int) int {
	if count == 0 {
		return index
	}
	return (index + 1) % count
}

func copyExercises(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return append([]string(nil), list...)
}
