package timer

import "errors"

var (
	// ErrIllegalTransition is returned when a command is not allowed in the current run state.
	ErrIllegalTransition = errors.New("illegal timer transition")
	// ErrEmptyExercise is returned for a blank exercise name.
	ErrEmptyExercise = errors.New("exercise name is empty")
	// ErrDuplicateExercise is returned when a name is already in the list.
	ErrDuplicateExercise = errors.New("exercise already in list")
	// ErrExerciseIndex is returned for an index outside the list.
	ErrExerciseIndex = errors.New("exercise index out of range")
)
