package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

// Compile-time check: *SQLite satisfies catalog.Catalog.
var _ catalog.Catalog = (*SQLite)(nil)

// SQLite serves the exercise catalog from a local SQLite file, for the CLI
// and for running the server without PostgreSQL.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite catalog at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exercises (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		muscle_group TEXT NOT NULL,
		equipment    TEXT NOT NULL DEFAULT '',
		difficulty   TEXT NOT NULL DEFAULT '',
		updated_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exercises table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// UpsertExercises inserts or replaces exercises by id in one transaction.
func (s *SQLite) UpsertExercises(ctx context.Context, exs []models.Exercise) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO exercises (`+exerciseColumns+`) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for _, e := range exs {
		res, err := stmt.ExecContext(ctx, e.ID, e.Name, string(e.MuscleGroup), e.Equipment, e.Difficulty)
		if err != nil {
			return 0, fmt.Errorf("upserting exercise %s: %w", e.ID, err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing upsert: %w", err)
	}
	return n, nil
}

// AllExercises returns every exercise ordered by muscle group then name.
func (s *SQLite) AllExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY muscle_group, name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// ExercisesByMuscleGroup returns the exercises tagged with group.
func (s *SQLite) ExercisesByMuscleGroup(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE muscle_group = ? ORDER BY name`,
		string(group))
	if err != nil {
		return nil, fmt.Errorf("querying exercises for %s: %w", group, err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// MuscleGroups returns the groups that have at least one exercise, in canonical order.
func (s *SQLite) MuscleGroups(ctx context.Context) ([]models.MuscleGroup, error) {
	counts, err := s.ExerciseCounts(ctx)
	if err != nil {
		return nil, err
	}
	return populatedGroups(counts), nil
}

// ExerciseCounts returns the number of exercises per muscle group.
func (s *SQLite) ExerciseCounts(ctx context.Context) (map[models.MuscleGroup]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT muscle_group, COUNT(*) FROM exercises GROUP BY muscle_group`)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}
	defer rows.Close()

	return scanCounts(rows)
}

// Close closes the catalog database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
