package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/claude/circuitry/internal/models"
)

// Catalog is the read-only source of exercises. *storage.DB, *storage.SQLite
// and *Memory all satisfy it.
type Catalog interface {
	AllExercises(ctx context.Context) ([]models.Exercise, error)
	ExercisesByMuscleGroup(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error)
	MuscleGroups(ctx context.Context) ([]models.MuscleGroup, error)
	ExerciseCounts(ctx context.Context) (map[models.MuscleGroup]int, error)
}

// Compile-time check: *Memory satisfies Catalog.
var _ Catalog = (*Memory)(nil)

// Memory is an immutable in-memory catalog. Reads return copies.
type Memory struct {
	exercises []models.Exercise
	byGroup   map[models.MuscleGroup][]models.Exercise
}

// NewMemory builds a catalog from exercises, rejecting duplicate ids and
// unknown muscle groups.
func NewMemory(exercises []models.Exercise) (*Memory, error) {
	m := &Memory{byGroup: make(map[models.MuscleGroup][]models.Exercise)}
	seen := make(map[string]bool, len(exercises))
	for i, ex := range exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %d: id is required", i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("exercise %q: duplicate id", ex.ID)
		}
		if ex.Name == "" {
			return nil, fmt.Errorf("exercise %q: name is required", ex.ID)
		}
		if !ex.MuscleGroup.Valid() {
			return nil, fmt.Errorf("exercise %q: unknown muscle group %q", ex.ID, ex.MuscleGroup)
		}
		seen[ex.ID] = true
		m.exercises = append(m.exercises, ex)
		m.byGroup[ex.MuscleGroup] = append(m.byGroup[ex.MuscleGroup], ex)
	}
	return m, nil
}

// AllExercises returns every exercise in insertion order.
func (m *Memory) AllExercises(_ context.Context) ([]models.Exercise, error) {
	out := make([]models.Exercise, len(m.exercises))
	copy(out, m.exercises)
	return out, nil
}

// ExercisesByMuscleGroup returns the exercises tagged with group.
func (m *Memory) ExercisesByMuscleGroup(_ context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	src := m.byGroup[group]
	out := make([]models.Exercise, len(src))
	copy(out, src)
	return out, nil
}

// MuscleGroups returns the groups that have at least one exercise, in canonical order.
func (m *Memory) MuscleGroups(_ context.Context) ([]models.MuscleGroup, error) {
	var groups []models.MuscleGroup
	for _, g := range models.AllMuscleGroups() {
		if len(m.byGroup[g]) > 0 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// ExerciseCounts returns the number of exercises per populated group.
func (m *Memory) ExerciseCounts(_ context.Context) (map[models.MuscleGroup]int, error) {
	counts := make(map[models.MuscleGroup]int, len(m.byGroup))
	for g, exs := range m.byGroup {
		counts[g] = len(exs)
	}
	return counts, nil
}

// GroupCount is a single row of ExerciseCounts in a stable order, for JSON output.
type GroupCount struct {
	MuscleGroup models.MuscleGroup `json:"muscle_group"`
	Count       int                `json:"count"`
}

// SortedCounts flattens a count map into canonical muscle-group order.
func SortedCounts(counts map[models.MuscleGroup]int) []GroupCount {
	order := make(map[models.MuscleGroup]int)
	for i, g := range models.AllMuscleGroups() {
		order[g] = i
	}
	out := make([]GroupCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GroupCount{MuscleGroup: g, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return order[out[i].MuscleGroup] < order[out[j].MuscleGroup]
	})
	return out
}

// FindByID looks up a single exercise by id. Returns false if absent.
func FindByID(ctx context.Context, c Catalog, id string) (models.Exercise, bool, error) {
	all, err := c.AllExercises(ctx)
	if err != nil {
		return models.Exercise{}, false, err
	}
	for _, ex := range all {
		if ex.ID == id {
			return ex, true, nil
		}
	}
	return models.Exercise{}, false, nil
}
