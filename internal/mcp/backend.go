package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
)

// Backend abstracts where workouts live for MCP tools. Local (in-process
// session store) and HTTPClient (remote via REST API) satisfy this interface.
type Backend interface {
	Exercises(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error)
	MuscleGroupCounts(ctx context.Context) ([]catalog.GroupCount, error)
	Generate(ctx context.Context, p GenerateParams) (*session.Snapshot, error)
	Workout(ctx context.Context, id uuid.UUID) (*session.Snapshot, error)
	Options(ctx context.Context, id uuid.UUID, position int, groups []models.MuscleGroup) ([]models.Exercise, error)
	Replace(ctx context.Context, id uuid.UUID, position int, exerciseID string, opts sequence.ReplaceOptions) (*session.ReplaceOutcome, error)
	Undo(ctx context.Context, id uuid.UUID) (*session.StepOutcome, error)
	Redo(ctx context.Context, id uuid.UUID) (*session.StepOutcome, error)
}

// GenerateParams requests a new workout. Nil tuning fields use the backend's defaults.
type GenerateParams struct {
	Length           int                  `json:"length"`
	Groups           []models.MuscleGroup `json:"groups,omitempty"`
	EvenDistribution *bool                `json:"even_distribution,omitempty"`
	MaxRetries       *int                 `json:"max_retries,omitempty"`
	UniqueExercises  *bool                `json:"unique_exercises,omitempty"`
}

// Local serves MCP tools from an in-process session store.
type Local struct {
	store    *session.Store
	defaults sequence.GenerateOptions
}

// Compile-time check: *Local satisfies Backend.
var _ Backend = (*Local)(nil)

// NewLocal wraps store. defaults fill in omitted generation options.
func NewLocal(store *session.Store, defaults sequence.GenerateOptions) *Local {
	return &Local{store: store, defaults: defaults}
}

func (l *Local) Exercises(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	if group == "" {
		return l.store.Catalog().AllExercises(ctx)
	}
	return l.store.Catalog().ExercisesByMuscleGroup(ctx, group)
}

func (l *Local) MuscleGroupCounts(ctx context.Context) ([]catalog.GroupCount, error) {
	counts, err := l.store.Catalog().ExerciseCounts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.SortedCounts(counts), nil
}

func (l *Local) Generate(ctx context.Context, p GenerateParams) (*session.Snapshot, error) {
	opts := l.defaults
	if p.EvenDistribution != nil {
		opts.EvenDistribution = *p.EvenDistribution
	}
	if p.MaxRetries != nil {
		opts.MaxRetries = *p.MaxRetries
	}
	if p.UniqueExercises != nil {
		opts.UniqueExercises = *p.UniqueExercises
	}
	return l.store.Create(ctx, p.Length, p.Groups, opts)
}

func (l *Local) Workout(_ context.Context, id uuid.UUID) (*session.Snapshot, error) {
	return l.store.Get(id)
}

func (l *Local) Options(ctx context.Context, id uuid.UUID, position int, groups []models.MuscleGroup) ([]models.Exercise, error) {
	return l.store.Options(ctx, id, position, groups)
}

func (l *Local) Replace(ctx context.Context, id uuid.UUID, position int, exerciseID string, opts sequence.ReplaceOptions) (*session.ReplaceOutcome, error) {
	return l.store.Replace(ctx, id, position, exerciseID, opts)
}

func (l *Local) Undo(_ context.Context, id uuid.UUID) (*session.StepOutcome, error) {
	return l.store.Undo(id)
}

func (l *Local) Redo(_ context.Context, id uuid.UUID) (*session.StepOutcome, error) {
	return l.store.Redo(id)
}
