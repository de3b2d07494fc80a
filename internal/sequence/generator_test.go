package sequence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// failingCatalog returns err from every query.
type failingCatalog struct{ err error }

func (f failingCatalog) AllExercises(context.Context) ([]models.Exercise, error) { return nil, f.err }
func (f failingCatalog) ExercisesByMuscleGroup(context.Context, models.MuscleGroup) ([]models.Exercise, error) {
	return nil, f.err
}
func (f failingCatalog) MuscleGroups(context.Context) ([]models.MuscleGroup, error) { return nil, f.err }
func (f failingCatalog) ExerciseCounts(context.Context) (map[models.MuscleGroup]int, error) {
	return nil, f.err
}

func buildCatalog(t *testing.T, perGroup map[models.MuscleGroup]int) *catalog.Memory {
	t.Helper()
	var exs []models.Exercise
	for _, g := range models.AllMuscleGroups() {
		for i := 0; i < perGroup[g]; i++ {
			id := fmt.Sprintf("%s-%d", g, i)
			exs = append(exs, models.Exercise{ID: id, Name: id, MuscleGroup: g})
		}
	}
	m, err := catalog.NewMemory(exs)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return m
}

func defaultGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	m, err := catalog.NewMemory(catalog.Default())
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return NewGenerator(m, NewRand(seed), discardLog)
}

func assertAdjacency(t *testing.T, w models.Workout) {
	t.Helper()
	for i := 1; i < len(w); i++ {
		if w[i].MuscleGroup == w[i-1].MuscleGroup {
			t.Fatalf("positions %d and %d both %s: %v", i-1, i, w[i].MuscleGroup, w)
		}
	}
}

// TestGenerateThreeGroups generates 10 exercises from chest/back/legs with two
// exercises each, which forces repeats and must still honor adjacency.
func TestGenerateThreeGroups(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 2, models.Back: 2, models.Legs: 2})
	g := NewGenerator(c, NewRand(7), discardLog)

	res, err := g.Generate(context.Background(), 10,
		[]models.MuscleGroup{models.Chest, models.Back, models.Legs}, DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("Success = false, want true")
	}
	if len(res.Workout) != 10 {
		t.Fatalf("len = %d, want 10", len(res.Workout))
	}
	assertAdjacency(t, res.Workout)
	for _, e := range res.Workout {
		if e.MuscleGroup != models.Chest && e.MuscleGroup != models.Back && e.MuscleGroup != models.Legs {
			t.Errorf("exercise %q from disabled group %s", e.ID, e.MuscleGroup)
		}
	}
	if res.Metadata.Attempts < 1 {
		t.Errorf("Attempts = %d, want >= 1", res.Metadata.Attempts)
	}
	if res.Metadata.PoolSize != 6 {
		t.Errorf("PoolSize = %d, want 6", res.Metadata.PoolSize)
	}
}

// TestGenerateParameterErrors verifies every precondition is rejected before any search.
func TestGenerateParameterErrors(t *testing.T) {
	g := defaultGenerator(t, 1)
	tests := []struct {
		name   string
		length int
		groups []models.MuscleGroup
		want   Kind
	}{
		{"too short", 4, []models.MuscleGroup{models.Chest, models.Back}, KindInvalidParameters},
		{"too long", 21, []models.MuscleGroup{models.Chest, models.Back}, KindInvalidParameters},
		{"no groups", 10, nil, KindInvalidParameters},
		{"single group", 10, []models.MuscleGroup{models.Chest}, KindInvalidParameters},
		{"duplicate single group", 10, []models.MuscleGroup{models.Chest, models.Chest}, KindInvalidParameters},
		{"unknown group", 10, []models.MuscleGroup{models.Chest, "calves"}, KindInvalidParameters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), tt.length, tt.groups, DefaultGenerateOptions())
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

// TestGenerateNoExercises verifies an empty filtered pool is NO_EXERCISES_AVAILABLE.
func TestGenerateNoExercises(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 3})
	g := NewGenerator(c, NewRand(1), discardLog)
	_, err := g.Generate(context.Background(), 5, []models.MuscleGroup{models.Legs, models.Core}, DefaultGenerateOptions())
	if KindOf(err) != KindNoExercisesAvailable {
		t.Errorf("kind = %q, want %q", KindOf(err), KindNoExercisesAvailable)
	}
}

// TestGenerateOnlyOnePopulatedGroup verifies two enabled groups with only one
// populated in the catalog is rejected as INVALID_PARAMETERS.
func TestGenerateOnlyOnePopulatedGroup(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 5})
	g := NewGenerator(c, NewRand(1), discardLog)
	_, err := g.Generate(context.Background(), 5, []models.MuscleGroup{models.Chest, models.Back}, DefaultGenerateOptions())
	if KindOf(err) != KindInvalidParameters {
		t.Errorf("kind = %q, want %q", KindOf(err), KindInvalidParameters)
	}
}

// TestGenerateDatabaseError verifies catalog failures surface as DATABASE_ERROR with the cause attached.
func TestGenerateDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	g := NewGenerator(failingCatalog{err: cause}, NewRand(1), discardLog)
	_, err := g.Generate(context.Background(), 5, []models.MuscleGroup{models.Chest, models.Back}, DefaultGenerateOptions())
	if KindOf(err) != KindDatabaseError {
		t.Errorf("kind = %q, want %q", KindOf(err), KindDatabaseError)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

// TestGenerateTimeout verifies an unsatisfiable unique request exhausts the
// retry budget: five chest and one back cannot alternate across five slots
// without reusing the back exercise.
func TestGenerateTimeout(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 5, models.Back: 1})
	g := NewGenerator(c, NewRand(3), discardLog)
	opts := GenerateOptions{EvenDistribution: false, MaxRetries: 10, UniqueExercises: true}

	_, err := g.Generate(context.Background(), 5, []models.MuscleGroup{models.Chest, models.Back}, opts)
	if KindOf(err) != KindGenerationTimeout {
		t.Fatalf("kind = %q, want %q (err %v)", KindOf(err), KindGenerationTimeout, err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Details["attempts"] != 10 {
		t.Errorf("details.attempts = %v, want 10", e.Details["attempts"])
	}
}

// TestGenerateUniqueExercises verifies no id repeats when uniqueness is requested and feasible.
func TestGenerateUniqueExercises(t *testing.T) {
	g := defaultGenerator(t, 11)
	opts := DefaultGenerateOptions()
	opts.UniqueExercises = true

	res, err := g.Generate(context.Background(), 20, models.AllMuscleGroups(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for _, e := range res.Workout {
		if seen[e.ID] {
			t.Errorf("exercise %q repeated", e.ID)
		}
		seen[e.ID] = true
	}
	if !res.Metadata.UniqueExercises {
		t.Error("metadata.unique_exercises = false, want true")
	}
	assertAdjacency(t, res.Workout)
}

// TestGenerateUniqueRelaxedForSmallPool verifies a pool smaller than the
// workout still generates, with metadata showing repeats were allowed.
func TestGenerateUniqueRelaxedForSmallPool(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 2, models.Back: 2})
	g := NewGenerator(c, NewRand(5), discardLog)
	opts := GenerateOptions{MaxRetries: 10, UniqueExercises: true}

	res, err := g.Generate(context.Background(), 6, []models.MuscleGroup{models.Chest, models.Back}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.UniqueExercises {
		t.Error("metadata.unique_exercises = true, want false for a 4-exercise pool")
	}
	assertAdjacency(t, res.Workout)
}

// TestGenerateEvenDistribution verifies the balanced pool is capped at
// ceil(length/groups) per group.
func TestGenerateEvenDistribution(t *testing.T) {
	c := buildCatalog(t, map[models.MuscleGroup]int{models.Chest: 10, models.Back: 10, models.Legs: 10})
	g := NewGenerator(c, NewRand(5), discardLog)

	res, err := g.Generate(context.Background(), 6,
		[]models.MuscleGroup{models.Chest, models.Back, models.Legs}, DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.PoolSize != 6 {
		t.Errorf("PoolSize = %d, want 6", res.Metadata.PoolSize)
	}

	opts := DefaultGenerateOptions()
	opts.EvenDistribution = false
	res, err = g.Generate(context.Background(), 6,
		[]models.MuscleGroup{models.Chest, models.Back, models.Legs}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.PoolSize != 30 {
		t.Errorf("PoolSize without distribution = %d, want 30", res.Metadata.PoolSize)
	}
}

// TestGenerateDeterministicWithSeed verifies an injected seeded source makes generation reproducible.
func TestGenerateDeterministicWithSeed(t *testing.T) {
	groups := []models.MuscleGroup{models.Chest, models.Back, models.Legs, models.Core}
	a, err := defaultGenerator(t, 42).Generate(context.Background(), 12, groups, DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := defaultGenerator(t, 42).Generate(context.Background(), 12, groups, DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a.Workout {
		if a.Workout[i].ID != b.Workout[i].ID {
			t.Fatalf("position %d: %q vs %q", i, a.Workout[i].ID, b.Workout[i].ID)
		}
	}
}

// TestGenerateDoesNotMutateCatalog verifies workouts hold copies of catalog entries.
func TestGenerateDoesNotMutateCatalog(t *testing.T) {
	g := defaultGenerator(t, 9)
	res, err := g.Generate(context.Background(), 5, []models.MuscleGroup{models.Chest, models.Back}, DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := res.Workout[0].ID
	res.Workout[0].Name = "mutated"
	found, ok, _ := catalog.FindByID(context.Background(), g.Catalog(), id)
	if !ok || found.Name == "mutated" {
		t.Error("catalog entry changed through generated workout")
	}
}

// Property: every successful generation honors adjacency and the requested length,
// and single-group requests are always rejected.
func TestGenerate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	all := models.AllMuscleGroups()

	properties.Property("adjacent exercises never share a muscle group", prop.ForAll(
		func(length, groupCount int, seed uint64) bool {
			g := defaultGenerator(t, seed)
			res, err := g.Generate(context.Background(), length, all[:groupCount], DefaultGenerateOptions())
			if err != nil {
				return false
			}
			for i := 1; i < len(res.Workout); i++ {
				if res.Workout[i].MuscleGroup == res.Workout[i-1].MuscleGroup {
					return false
				}
			}
			return true
		},
		gen.IntRange(MinLength, MaxLength),
		gen.IntRange(2, len(all)),
		gen.UInt64(),
	))

	properties.Property("workout length matches the request", prop.ForAll(
		func(length int, seed uint64) bool {
			g := defaultGenerator(t, seed)
			res, err := g.Generate(context.Background(), length, all, DefaultGenerateOptions())
			return err == nil && len(res.Workout) == length
		},
		gen.IntRange(MinLength, MaxLength),
		gen.UInt64(),
	))

	properties.Property("single group is rejected", prop.ForAll(
		func(length, groupIdx int) bool {
			g := defaultGenerator(t, 1)
			_, err := g.Generate(context.Background(), length, all[groupIdx:groupIdx+1], DefaultGenerateOptions())
			return KindOf(err) == KindInvalidParameters
		},
		gen.IntRange(MinLength, MaxLength),
		gen.IntRange(0, len(all)-1),
	))

	properties.TestingRun(t)
}
