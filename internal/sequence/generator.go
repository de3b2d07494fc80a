package sequence

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

// DefaultMaxRetries bounds the number of whole generation attempts.
const DefaultMaxRetries = 100

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// EvenDistribution samples roughly equally from each group before searching.
	EvenDistribution bool `json:"even_distribution" yaml:"even_distribution"`
	// MaxRetries is the attempt budget. Values <= 0 use DefaultMaxRetries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	// UniqueExercises forbids using the same exercise twice in one workout.
	// Without it, unused exercises are still preferred.
	UniqueExercises bool `json:"unique_exercises" yaml:"unique_exercises"`
}

// DefaultGenerateOptions returns even distribution on, 100 retries, repeats allowed.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{EvenDistribution: true, MaxRetries: DefaultMaxRetries}
}

// Generator builds workouts from a catalog under the adjacency constraint.
// It holds no per-call state and is safe for concurrent use when its
// RandSource is.
type Generator struct {
	catalog catalog.Catalog
	rng     RandSource
	log     *slog.Logger
}

// NewGenerator creates a Generator. A nil rng uses NewRand(0).
func NewGenerator(c catalog.Catalog, rng RandSource, log *slog.Logger) *Generator {
	if rng == nil {
		rng = NewRand(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{catalog: c, rng: rng, log: log}
}

// Catalog returns the catalog the generator draws from.
func (g *Generator) Catalog() catalog.Catalog {
	return g.catalog
}

// Generate produces a workout of exactly length exercises drawn from
// enabledGroups. It never returns a partial workout: every failure is a *Error.
func (g *Generator) Generate(ctx context.Context, length int, enabledGroups []models.MuscleGroup, opts GenerateOptions) (*models.GenerationResult, error) {
	start := time.Now()
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}

	groups, err := checkParameters(length, enabledGroups)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[models.MuscleGroup][]models.Exercise, len(groups))
	var pool []models.Exercise
	for _, grp := range groups {
		exs, err := g.catalog.ExercisesByMuscleGroup(ctx, grp)
		if err != nil {
			return nil, wrapError(KindDatabaseError, err, "querying exercises for %s", grp)
		}
		if len(exs) > 0 {
			byGroup[grp] = exs
			pool = append(pool, exs...)
		}
	}

	if len(pool) == 0 {
		return nil, NewError(KindNoExercisesAvailable,
			map[string]any{"enabled_groups": groups},
			"no exercises available for the enabled muscle groups")
	}
	if length > 1 && len(byGroup) < 2 {
		return nil, NewError(KindInvalidParameters,
			map[string]any{"enabled_groups": groups, "populated_groups": len(byGroup)},
			"at least 2 muscle groups with exercises are required for a workout of %d", length)
	}

	if opts.EvenDistribution && len(pool) > length {
		pool = g.distribute(groups, byGroup, length)
	} else {
		g.shuffle(pool)
	}

	// Uniqueness is impossible with fewer exercises than slots.
	unique := opts.UniqueExercises && len(pool) >= length
	if opts.UniqueExercises && !unique {
		g.log.Info("unique exercises relaxed, pool smaller than length", "pool_size", len(pool), "length", length)
	}

	g.log.Debug("generation started",
		"length", length, "groups", groups, "pool_size", len(pool),
		"even_distribution", opts.EvenDistribution, "unique", unique)

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		// Past half the budget, reshuffle to escape an unlucky ordering.
		if consumed := attempt - 1; consumed*2 > opts.MaxRetries {
			g.shuffle(pool)
		}

		w, ok := g.attempt(length, pool, unique)
		if !ok {
			continue
		}

		if res := ValidateWorkout(w); !res.Valid {
			return nil, NewError(KindValidationFailed,
				map[string]any{"errors": res.Errors, "attempt": attempt},
				"generated workout failed validation")
		}

		meta := models.GenerationMetadata{
			Elapsed:          time.Since(start),
			Attempts:         attempt,
			MuscleGroupsUsed: w.MuscleGroups(),
			PoolSize:         len(pool),
			RequestedLength:  length,
			EnabledGroups:    groups,
			EvenDistribution: opts.EvenDistribution,
			UniqueExercises:  unique,
		}
		g.log.Info("workout generated", "length", length, "attempts", attempt, "elapsed", meta.Elapsed.String())
		return &models.GenerationResult{Success: true, Workout: w, Metadata: meta}, nil
	}

	g.log.Warn("generation exhausted retries", "length", length, "groups", groups, "max_retries", opts.MaxRetries)
	return nil, NewError(KindGenerationTimeout,
		map[string]any{
			"attempts":       opts.MaxRetries,
			"length":         length,
			"enabled_groups": groups,
			"pool_size":      len(pool),
			"unique":         unique,
		},
		"no valid workout found after %d attempts", opts.MaxRetries)
}

// checkParameters validates length and groups and returns the deduplicated group list.
func checkParameters(length int, enabledGroups []models.MuscleGroup) ([]models.MuscleGroup, error) {
	if length < MinLength || length > MaxLength {
		return nil, NewError(KindInvalidParameters,
			map[string]any{"length": length, "min": MinLength, "max": MaxLength},
			"length %d out of range [%d, %d]", length, MinLength, MaxLength)
	}
	if len(enabledGroups) == 0 {
		return nil, NewError(KindInvalidParameters, nil, "at least one muscle group must be enabled")
	}

	seen := make(map[models.MuscleGroup]bool, len(enabledGroups))
	groups := make([]models.MuscleGroup, 0, len(enabledGroups))
	for _, grp := range enabledGroups {
		if !grp.Valid() {
			return nil, NewError(KindInvalidParameters,
				map[string]any{"muscle_group": grp},
				"unknown muscle group %q", grp)
		}
		if !seen[grp] {
			seen[grp] = true
			groups = append(groups, grp)
		}
	}

	if len(groups) == 1 && length > 1 {
		return nil, NewError(KindInvalidParameters,
			map[string]any{"length": length, "enabled_groups": groups},
			"a workout of %d exercises needs more than one muscle group", length)
	}
	return groups, nil
}

// distribute takes a shuffled slice of ceil(length/groupCount) exercises from
// each populated group and shuffles the union.
func (g *Generator) distribute(groups []models.MuscleGroup, byGroup map[models.MuscleGroup][]models.Exercise, length int) []models.Exercise {
	perGroup := (length + len(byGroup) - 1) / len(byGroup)
	var pool []models.Exercise
	for _, grp := range groups {
		exs := byGroup[grp]
		if len(exs) == 0 {
			continue
		}
		shuffled := make([]models.Exercise, len(exs))
		copy(shuffled, exs)
		g.shuffle(shuffled)
		pool = append(pool, shuffled[:min(perGroup, len(shuffled))]...)
	}
	g.shuffle(pool)
	return pool
}

// attempt makes one pass at filling every slot. It reports false on a dead end,
// in which case the whole attempt is discarded.
func (g *Generator) attempt(length int, pool []models.Exercise, unique bool) (models.Workout, bool) {
	w := make(models.Workout, 0, length)
	used := make(map[string]bool, length)

	for len(w) < length {
		options := ValidOptions(w, pool)
		fresh := unused(options, used)
		switch {
		case len(fresh) > 0:
			options = fresh
		case unique:
			return nil, false
		}
		if len(options) == 0 {
			return nil, false
		}
		pick := options[g.rng.IntN(len(options))]
		w = append(w, pick)
		used[pick.ID] = true
	}
	return w, true
}

func unused(options []models.Exercise, used map[string]bool) []models.Exercise {
	var out []models.Exercise
	for _, ex := range options {
		if !used[ex.ID] {
			out = append(out, ex)
		}
	}
	return out
}

func (g *Generator) shuffle(exs []models.Exercise) {
	g.rng.Shuffle(len(exs), func(i, j int) { exs[i], exs[j] = exs[j], exs[i] })
}
