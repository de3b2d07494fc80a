package sequence

import (
	"errors"
	"fmt"
)

// Kind classifies a hard failure raised by the generator or replacement engine.
type Kind string

const (
	KindInvalidParameters       Kind = "INVALID_PARAMETERS"
	KindNoExercisesAvailable    Kind = "NO_EXERCISES_AVAILABLE"
	KindGenerationTimeout       Kind = "GENERATION_TIMEOUT"
	KindValidationFailed        Kind = "VALIDATION_FAILED"
	KindInvalidWorkout          Kind = "INVALID_WORKOUT"
	KindInvalidPosition         Kind = "INVALID_POSITION"
	KindInvalidIndex            Kind = "INVALID_INDEX"
	KindInvalidExercise         Kind = "INVALID_EXERCISE"
	KindMuscleGroupMismatch     Kind = "MUSCLE_GROUP_MISMATCH"
	KindConstraintViolation     Kind = "CONSTRAINT_VIOLATION"
	KindWorkoutValidationFailed Kind = "WORKOUT_VALIDATION_FAILED"
	KindDatabaseError           Kind = "DATABASE_ERROR"
)

// Error is a structured hard failure: a kind, a message and diagnostic details.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a structured error of the given kind.
func NewError(kind Kind, details map[string]any, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Details: details}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of a structured error anywhere in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
