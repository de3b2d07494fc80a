package storage

import (
	"context"
	"fmt"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

// Store is a persistent catalog that can be seeded. Satisfied by *DB and *SQLite.
type Store interface {
	catalog.Catalog
	UpsertExercises(ctx context.Context, exs []models.Exercise) (int64, error)
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
)

// Seed loads exs into s. Unless force is set, a catalog that already holds
// exercises is left alone. Returns the number of rows written.
func Seed(ctx context.Context, s Store, exs []models.Exercise, force bool) (int64, error) {
	if !force {
		counts, err := s.ExerciseCounts(ctx)
		if err != nil {
			return 0, fmt.Errorf("checking catalog: %w", err)
		}
		for _, n := range counts {
			if n > 0 {
				return 0, nil
			}
		}
	}
	n, err := s.UpsertExercises(ctx, exs)
	if err != nil {
		return 0, fmt.Errorf("seeding catalog: %w", err)
	}
	return n, nil
}
