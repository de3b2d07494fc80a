package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

// Compile-time check: *DB satisfies catalog.Catalog.
var _ catalog.Catalog = (*DB)(nil)

const exerciseColumns = `id, name, muscle_group, equipment, difficulty`

// UpsertExercises batch-inserts exercises, updating existing rows by id. Returns rows affected.
func (db *DB) UpsertExercises(ctx context.Context, exs []models.Exercise) (int64, error) {
	if len(exs) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (` + exerciseColumns + `) VALUES `
	args := make([]any, 0, len(exs)*5)
	valueStrings := make([]string, 0, len(exs))

	for i, e := range exs {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, e.ID, e.Name, string(e.MuscleGroup), e.Equipment, e.Difficulty)
	}

	query += strings.Join(valueStrings, ",") + ` ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, muscle_group = EXCLUDED.muscle_group,
		equipment = EXCLUDED.equipment, difficulty = EXCLUDED.difficulty, updated_at = now()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AllExercises returns every exercise ordered by muscle group then name.
func (db *DB) AllExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY muscle_group, name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// ExercisesByMuscleGroup returns the exercises tagged with group.
func (db *DB) ExercisesByMuscleGroup(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE muscle_group = $1 ORDER BY name`,
		string(group))
	if err != nil {
		return nil, fmt.Errorf("querying exercises for %s: %w", group, err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// MuscleGroups returns the groups that have at least one exercise, in canonical order.
func (db *DB) MuscleGroups(ctx context.Context) ([]models.MuscleGroup, error) {
	counts, err := db.ExerciseCounts(ctx)
	if err != nil {
		return nil, err
	}
	return populatedGroups(counts), nil
}

// ExerciseCounts returns the number of exercises per muscle group.
func (db *DB) ExerciseCounts(ctx context.Context) (map[models.MuscleGroup]int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT muscle_group, COUNT(*) FROM exercises GROUP BY muscle_group`)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}
	defer rows.Close()

	return scanCounts(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanExercises(rows rowScanner) ([]models.Exercise, error) {
	result := []models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		var group string
		if err := rows.Scan(&e.ID, &e.Name, &group, &e.Equipment, &e.Difficulty); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.MuscleGroup = models.MuscleGroup(group)
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanCounts(rows rowScanner) (map[models.MuscleGroup]int, error) {
	counts := make(map[models.MuscleGroup]int)
	for rows.Next() {
		var group string
		var n int
		if err := rows.Scan(&group, &n); err != nil {
			return nil, fmt.Errorf("scanning exercise count: %w", err)
		}
		counts[models.MuscleGroup(group)] = n
	}
	return counts, rows.Err()
}

func populatedGroups(counts map[models.MuscleGroup]int) []models.MuscleGroup {
	order := make(map[models.MuscleGroup]int)
	for i, g := range models.AllMuscleGroups() {
		order[g] = i
	}
	groups := make([]models.MuscleGroup, 0, len(counts))
	for g, n := range counts {
		if n > 0 {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return order[groups[i]] < order[groups[j]] })
	return groups
}
