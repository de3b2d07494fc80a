package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

// ReplaceOptions tunes a single replacement.
type ReplaceOptions struct {
	// TrackHistory records the replacement for undo/redo.
	TrackHistory bool `json:"track_history"`
	// ValidateConstraints runs the neighbor check and the full re-validation.
	ValidateConstraints bool `json:"validate_constraints"`
}

// DefaultReplaceOptions tracks history and validates constraints.
func DefaultReplaceOptions() ReplaceOptions {
	return ReplaceOptions{TrackHistory: true, ValidateConstraints: true}
}

// ReplacementResult describes a replacement that did not raise.
type ReplacementResult struct {
	Success     bool             `json:"success"`
	Replaced    bool             `json:"replaced"`
	Message     string           `json:"message"`
	Position    int              `json:"position"`
	OldExercise *models.Exercise `json:"old_exercise,omitempty"`
	NewExercise *models.Exercise `json:"new_exercise,omitempty"`
}

// HistoryResult is returned by Undo and Redo. Failures here are soft.
type HistoryResult struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message"`
	RestoredExercise *models.Exercise `json:"restored_exercise,omitempty"`
	Position         *int             `json:"position,omitempty"`
}

// ReplacementEngine swaps single exercises in a workout and owns the undo
// history for it. One engine per workout session; callers serialize access.
type ReplacementEngine struct {
	catalog catalog.Catalog
	history *History
	log     *slog.Logger
	now     func() time.Time
}

// NewReplacementEngine creates an engine with its own history of the given capacity.
func NewReplacementEngine(c catalog.Catalog, historyCapacity int, log *slog.Logger) *ReplacementEngine {
	if log == nil {
		log = slog.Default()
	}
	return &ReplacementEngine{
		catalog: c,
		history: NewHistory(historyCapacity),
		log:     log,
		now:     time.Now,
	}
}

// History exposes the engine's history for inspection.
func (e *ReplacementEngine) History() *History { return e.history }

// ReplacementOptions lists catalog exercises that could take the place of
// w[position]: same muscle group, different id, optionally restricted to
// enabledGroups, and legal next to both neighbors.
func (e *ReplacementEngine) ReplacementOptions(ctx context.Context, w models.Workout, position int, enabledGroups ...models.MuscleGroup) ([]models.Exercise, error) {
	if position < 0 || position >= len(w) {
		return nil, NewError(KindInvalidPosition,
			map[string]any{"position": position, "length": len(w)},
			"position %d out of range [0, %d)", position, len(w))
	}
	current := w[position]

	if len(enabledGroups) > 0 && !slices.Contains(enabledGroups, current.MuscleGroup) {
		return []models.Exercise{}, nil
	}

	candidates, err := e.catalog.ExercisesByMuscleGroup(ctx, current.MuscleGroup)
	if err != nil {
		return nil, wrapError(KindDatabaseError, err, "querying exercises for %s", current.MuscleGroup)
	}

	out := []models.Exercise{}
	for _, ex := range candidates {
		if ex.ID == current.ID {
			continue
		}
		if ValidateReplacement(w, position, ex).Valid {
			out = append(out, ex)
		}
	}
	return out, nil
}

// Replace substitutes newExercise at position, in place. Hard failures are
// returned as *Error and leave w untouched; choosing the exercise already
// in place is a soft no-op.
func (e *ReplacementEngine) Replace(w *models.Workout, position int, newExercise models.Exercise, opts ReplaceOptions) (*ReplacementResult, error) {
	if w == nil || len(*w) == 0 {
		return nil, NewError(KindInvalidWorkout, nil, "workout is empty")
	}
	seq := *w
	if position < 0 || position >= len(seq) {
		return nil, NewError(KindInvalidPosition,
			map[string]any{"position": position, "length": len(seq)},
			"position %d out of range [0, %d)", position, len(seq))
	}
	if newExercise.ID == "" || newExercise.MuscleGroup == "" {
		return nil, NewError(KindInvalidExercise,
			map[string]any{"id": newExercise.ID, "muscle_group": newExercise.MuscleGroup},
			"replacement exercise needs an id and a muscle group")
	}

	old := seq[position]
	if newExercise.ID == old.ID {
		return &ReplacementResult{
			Success:  false,
			Replaced: false,
			Message:  "same exercise selected, nothing replaced",
			Position: position,
		}, nil
	}

	if newExercise.MuscleGroup != old.MuscleGroup {
		return nil, NewError(KindMuscleGroupMismatch,
			map[string]any{"position": position, "expected": old.MuscleGroup, "got": newExercise.MuscleGroup},
			"replacement must target %s, %q targets %s", old.MuscleGroup, newExercise.Name, newExercise.MuscleGroup)
	}

	if opts.ValidateConstraints {
		if res := ValidateReplacement(seq, position, newExercise); !res.Valid {
			return nil, NewError(KindConstraintViolation,
				map[string]any{"position": position, "conflicts": res.Errors},
				"%s", res.Errors[0].Message)
		}
	}

	seq[position] = newExercise

	if opts.ValidateConstraints {
		if res := ValidateWorkout(seq); !res.Valid {
			seq[position] = old
			e.log.Error("replacement rolled back", "position", position, "errors", len(res.Errors))
			return nil, NewError(KindWorkoutValidationFailed,
				map[string]any{"position": position, "errors": res.Errors},
				"workout invalid after replacement, change rolled back")
		}
	}

	if opts.TrackHistory {
		e.history.Push(models.ReplacementRecord{
			Position:    position,
			OldExercise: old,
			NewExercise: newExercise,
			Timestamp:   e.now(),
		})
	}

	e.log.Debug("exercise replaced", "position", position, "old", old.ID, "new", newExercise.ID)
	return &ReplacementResult{
		Success:     true,
		Replaced:    true,
		Message:     fmt.Sprintf("replaced %s with %s", old.Name, newExercise.Name),
		Position:    position,
		OldExercise: &old,
		NewExercise: &newExercise,
	}, nil
}

// Undo reverts the most recent undoable replacement in w.
func (e *ReplacementEngine) Undo(w *models.Workout) HistoryResult {
	rec, ok := e.history.peekUndo()
	if !ok {
		return HistoryResult{Message: "nothing to undo"}
	}
	if w == nil || rec.Position >= len(*w) {
		return HistoryResult{Message: fmt.Sprintf("position %d no longer exists in workout", rec.Position)}
	}
	(*w)[rec.Position] = rec.OldExercise
	e.history.stepBack()

	restored, pos := rec.OldExercise, rec.Position
	return HistoryResult{
		Success:          true,
		Message:          fmt.Sprintf("restored %s at position %d", restored.Name, pos),
		RestoredExercise: &restored,
		Position:         &pos,
	}
}

// Redo reapplies the most recently undone replacement in w.
func (e *ReplacementEngine) Redo(w *models.Workout) HistoryResult {
	rec, ok := e.history.peekRedo()
	if !ok {
		return HistoryResult{Message: "nothing to redo"}
	}
	if w == nil || rec.Position >= len(*w) {
		return HistoryResult{Message: fmt.Sprintf("position %d no longer exists in workout", rec.Position)}
	}
	(*w)[rec.Position] = rec.NewExercise
	e.history.stepForward()

	restored, pos := rec.NewExercise, rec.Position
	return HistoryResult{
		Success:          true,
		Message:          fmt.Sprintf("restored %s at position %d", restored.Name, pos),
		RestoredExercise: &restored,
		Position:         &pos,
	}
}

// ClearHistory drops every record.
func (e *ReplacementEngine) ClearHistory() { e.history.Clear() }

// HistoryStatus reports undo/redo availability and occupancy.
func (e *ReplacementEngine) HistoryStatus() HistoryStatus { return e.history.Status() }
