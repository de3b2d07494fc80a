package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/claude/circuitry/internal/models"
)

// SeedFile is the on-disk format for catalog seed data:
//
//	exercises:
//	  - id: bench-press
//	    name: Bench Press
//	    muscle_group: chest
//	    equipment: barbell
//	    difficulty: intermediate
type SeedFile struct {
	Exercises []models.Exercise `yaml:"exercises"`
}

// LoadFile reads a YAML seed file and returns its exercises after validation.
func LoadFile(path string) ([]models.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data. Muscle group names are normalized.
func ParseSeed(data []byte) ([]models.Exercise, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	for i := range f.Exercises {
		g, err := models.ParseMuscleGroup(string(f.Exercises[i].MuscleGroup))
		if err != nil {
			return nil, fmt.Errorf("exercise %q: %w", f.Exercises[i].ID, err)
		}
		f.Exercises[i].MuscleGroup = g
	}
	// Reuse NewMemory's checks for ids and names.
	if _, err := NewMemory(f.Exercises); err != nil {
		return nil, err
	}
	return f.Exercises, nil
}

// Default returns the built-in exercise set used when no seed file is configured.
func Default() []models.Exercise {
	out := make([]models.Exercise, len(defaultExercises))
	copy(out, defaultExercises)
	return out
}

var defaultExercises = []models.Exercise{
	{ID: "push-up", Name: "Push-Up", MuscleGroup: models.Chest, Equipment: "bodyweight", Difficulty: "beginner"},
	{ID: "bench-press", Name: "Bench Press", MuscleGroup: models.Chest, Equipment: "barbell", Difficulty: "intermediate"},
	{ID: "incline-db-press", Name: "Incline Dumbbell Press", MuscleGroup: models.Chest, Equipment: "dumbbell", Difficulty: "intermediate"},
	{ID: "chest-fly", Name: "Cable Chest Fly", MuscleGroup: models.Chest, Equipment: "cable", Difficulty: "beginner"},
	{ID: "dips", Name: "Chest Dips", MuscleGroup: models.Chest, Equipment: "bodyweight", Difficulty: "advanced"},

	{ID: "pull-up", Name: "Pull-Up", MuscleGroup: models.Back, Equipment: "bodyweight", Difficulty: "intermediate"},
	{ID: "bent-over-row", Name: "Bent-Over Row", MuscleGroup: models.Back, Equipment: "barbell", Difficulty: "intermediate"},
	{ID: "lat-pulldown", Name: "Lat Pulldown", MuscleGroup: models.Back, Equipment: "cable", Difficulty: "beginner"},
	{ID: "single-arm-row", Name: "Single-Arm Dumbbell Row", MuscleGroup: models.Back, Equipment: "dumbbell", Difficulty: "beginner"},
	{ID: "deadlift", Name: "Deadlift", MuscleGroup: models.Back, Equipment: "barbell", Difficulty: "advanced"},

	{ID: "squat", Name: "Back Squat", MuscleGroup: models.Legs, Equipment: "barbell", Difficulty: "intermediate"},
	{ID: "lunge", Name: "Walking Lunge", MuscleGroup: models.Legs, Equipment: "dumbbell", Difficulty: "beginner"},
	{ID: "leg-press", Name: "Leg Press", MuscleGroup: models.Legs, Equipment: "machine", Difficulty: "beginner"},
	{ID: "rdl", Name: "Romanian Deadlift", MuscleGroup: models.Legs, Equipment: "barbell", Difficulty: "intermediate"},
	{ID: "bulgarian-split-squat", Name: "Bulgarian Split Squat", MuscleGroup: models.Legs, Equipment: "dumbbell", Difficulty: "advanced"},

	{ID: "overhead-press", Name: "Overhead Press", MuscleGroup: models.Shoulders, Equipment: "barbell", Difficulty: "intermediate"},
	{ID: "lateral-raise", Name: "Lateral Raise", MuscleGroup: models.Shoulders, Equipment: "dumbbell", Difficulty: "beginner"},
	{ID: "face-pull", Name: "Face Pull", MuscleGroup: models.Shoulders, Equipment: "cable", Difficulty: "beginner"},
	{ID: "arnold-press", Name: "Arnold Press", MuscleGroup: models.Shoulders, Equipment: "dumbbell", Difficulty: "intermediate"},

	{ID: "bicep-curl", Name: "Bicep Curl", MuscleGroup: models.Arms, Equipment: "dumbbell", Difficulty: "beginner"},
	{ID: "tricep-pushdown", Name: "Tricep Pushdown", MuscleGroup: models.Arms, Equipment: "cable", Difficulty: "beginner"},
	{ID: "hammer-curl", Name: "Hammer Curl", MuscleGroup: models.Arms, Equipment: "dumbbell", Difficulty: "beginner"},
	{ID: "skull-crusher", Name: "Skull Crusher", MuscleGroup: models.Arms, Equipment: "ez bar", Difficulty: "intermediate"},

	{ID: "plank", Name: "Plank", MuscleGroup: models.Core, Equipment: "bodyweight", Difficulty: "beginner"},
	{ID: "hanging-leg-raise", Name: "Hanging Leg Raise", MuscleGroup: models.Core, Equipment: "bodyweight", Difficulty: "advanced"},
	{ID: "russian-twist", Name: "Russian Twist", MuscleGroup: models.Core, Equipment: "bodyweight", Difficulty: "beginner"},
	{ID: "ab-wheel", Name: "Ab Wheel Rollout", MuscleGroup: models.Core, Equipment: "ab wheel", Difficulty: "intermediate"},
}
