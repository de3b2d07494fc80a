package sequence

import (
	"fmt"

	"github.com/claude/circuitry/internal/models"
)

// Workout length bounds. Generation enforces [MinLength, MaxLength]; the
// validator only warns outside [MinLength, WarnMaxLength].
const (
	MinLength     = 5
	MaxLength     = 20
	WarnMaxLength = 25
)

// Issue codes emitted by the validator.
const (
	CodeConsecutiveMuscleGroup = "CONSECUTIVE_MUSCLE_GROUP"
	CodeMissingID              = "MISSING_ID"
	CodeMissingName            = "MISSING_NAME"
	CodeMissingMuscleGroup     = "MISSING_MUSCLE_GROUP"
	CodeInvalidPosition        = "INVALID_POSITION"
	CodeConflictPrevious       = "CONFLICT_PREVIOUS"
	CodeConflictNext           = "CONFLICT_NEXT"
	CodeEmptyWorkout           = "EMPTY_WORKOUT"
	CodeShortWorkout           = "SHORT_WORKOUT"
	CodeLongWorkout            = "LONG_WORKOUT"
)

// Issue is one validation finding. Index is the offending position, or -1.
type Issue struct {
	Code     string `json:"code"`
	Index    int    `json:"index"`
	Message  string `json:"message"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
}

// ValidationResult is always returned, never raised. Warnings do not affect Valid.
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *ValidationResult) addError(i Issue) {
	r.Errors = append(r.Errors, i)
	r.Valid = false
}

// FirstError returns the first error issue, or nil.
func (r ValidationResult) FirstError() *Issue {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// CanFollow reports whether candidate may be placed directly after prev.
// A nil prev means the workout is empty.
func CanFollow(prev *models.Exercise, candidate models.Exercise) bool {
	if prev == nil {
		return true
	}
	return prev.MuscleGroup != candidate.MuscleGroup
}

// ValidateWorkout checks structure and the adjacency constraint across w.
func ValidateWorkout(w models.Workout) ValidationResult {
	res := ValidationResult{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}

	if len(w) == 0 {
		res.Warnings = append(res.Warnings, Issue{Code: CodeEmptyWorkout, Index: -1, Message: "workout is empty"})
		return res
	}

	for i, ex := range w {
		if ex.ID == "" {
			res.addError(Issue{Code: CodeMissingID, Index: i, Message: fmt.Sprintf("exercise at position %d has no id", i)})
		}
		if ex.Name == "" {
			res.addError(Issue{Code: CodeMissingName, Index: i, Message: fmt.Sprintf("exercise at position %d has no name", i)})
		}
		if ex.MuscleGroup == "" {
			res.addError(Issue{Code: CodeMissingMuscleGroup, Index: i, Message: fmt.Sprintf("exercise at position %d has no muscle group", i)})
		}
	}

	for i := 1; i < len(w); i++ {
		prev, cur := w[i-1], w[i]
		if prev.MuscleGroup == "" || cur.MuscleGroup == "" {
			continue
		}
		if prev.MuscleGroup == cur.MuscleGroup {
			res.addError(Issue{
				Code:     CodeConsecutiveMuscleGroup,
				Index:    i,
				Message:  fmt.Sprintf("positions %d and %d both target %s", i-1, i, cur.MuscleGroup),
				Previous: prev.Name,
				Current:  cur.Name,
			})
		}
	}

	if len(w) < MinLength {
		res.Warnings = append(res.Warnings, Issue{
			Code: CodeShortWorkout, Index: -1,
			Message: fmt.Sprintf("workout has %d exercises, fewer than %d", len(w), MinLength),
		})
	}
	if len(w) > WarnMaxLength {
		res.Warnings = append(res.Warnings, Issue{
			Code: CodeLongWorkout, Index: -1,
			Message: fmt.Sprintf("workout has %d exercises, more than %d", len(w), WarnMaxLength),
		})
	}
	return res
}

// ValidOptions returns the members of pool that may follow the last element of current.
func ValidOptions(current models.Workout, pool []models.Exercise) []models.Exercise {
	if len(current) == 0 {
		out := make([]models.Exercise, len(pool))
		copy(out, pool)
		return out
	}
	last := &current[len(current)-1]
	var out []models.Exercise
	for _, ex := range pool {
		if CanFollow(last, ex) {
			out = append(out, ex)
		}
	}
	return out
}

// ValidateInsertion checks candidate against both neighbors of an insertion
// at position: the element before it and the element currently at position,
// which would become the next one. position may equal len(w).
func ValidateInsertion(w models.Workout, position int, candidate models.Exercise) ValidationResult {
	if position < 0 || position > len(w) {
		res := ValidationResult{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
		res.addError(Issue{
			Code: CodeInvalidPosition, Index: position,
			Message: fmt.Sprintf("position %d out of range [0, %d]", position, len(w)),
		})
		return res
	}
	var prev, next *models.Exercise
	if position > 0 {
		prev = &w[position-1]
	}
	if position < len(w) {
		next = &w[position]
	}
	return checkNeighbors(position, prev, next, candidate)
}

// ValidateReplacement checks candidate against the neighbors of the slot it
// would replace: position-1 and position+1. The current occupant is ignored.
func ValidateReplacement(w models.Workout, position int, candidate models.Exercise) ValidationResult {
	if position < 0 || position >= len(w) {
		res := ValidationResult{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
		res.addError(Issue{
			Code: CodeInvalidPosition, Index: position,
			Message: fmt.Sprintf("position %d out of range [0, %d)", position, len(w)),
		})
		return res
	}
	var prev, next *models.Exercise
	if position > 0 {
		prev = &w[position-1]
	}
	if position < len(w)-1 {
		next = &w[position+1]
	}
	return checkNeighbors(position, prev, next, candidate)
}

func checkNeighbors(position int, prev, next *models.Exercise, candidate models.Exercise) ValidationResult {
	res := ValidationResult{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
	if !CanFollow(prev, candidate) {
		res.addError(Issue{
			Code:     CodeConflictPrevious,
			Index:    position,
			Message:  fmt.Sprintf("%q would follow %q, both target %s", candidate.Name, prev.Name, candidate.MuscleGroup),
			Previous: prev.Name,
			Current:  candidate.Name,
		})
	}
	if next != nil && next.MuscleGroup == candidate.MuscleGroup {
		res.addError(Issue{
			Code:     CodeConflictNext,
			Index:    position,
			Message:  fmt.Sprintf("%q would precede %q, both target %s", candidate.Name, next.Name, candidate.MuscleGroup),
			Previous: candidate.Name,
			Current:  next.Name,
		})
	}
	return res
}
