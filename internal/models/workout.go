package models

import "time"

// Workout is an ordered sequence of exercise snapshots.
type Workout []Exercise

// Clone returns a copy that shares no backing array with w.
func (w Workout) Clone() Workout {
	if w == nil {
		return nil
	}
	out := make(Workout, len(w))
	copy(out, w)
	return out
}

// MuscleGroups returns the distinct groups in w in order of first appearance.
func (w Workout) MuscleGroups() []MuscleGroup {
	seen := make(map[MuscleGroup]bool, len(allMuscleGroups))
	var groups []MuscleGroup
	for _, ex := range w {
		if !seen[ex.MuscleGroup] {
			seen[ex.MuscleGroup] = true
			groups = append(groups, ex.MuscleGroup)
		}
	}
	return groups
}

// GenerationMetadata describes how a workout was produced.
type GenerationMetadata struct {
	Elapsed          time.Duration `json:"elapsed_ns"`
	Attempts         int           `json:"attempts"`
	MuscleGroupsUsed []MuscleGroup `json:"muscle_groups_used"`
	PoolSize         int           `json:"pool_size"`
	RequestedLength  int           `json:"requested_length"`
	EnabledGroups    []MuscleGroup `json:"enabled_groups"`
	EvenDistribution bool          `json:"even_distribution"`
	// UniqueExercises reports whether repeats were forbidden. It is false when
	// uniqueness was requested but the pool had fewer exercises than slots.
	UniqueExercises  bool          `json:"unique_exercises"`
}

// GenerationResult is returned by a successful generation call.
type GenerationResult struct {
	Success  bool               `json:"success"`
	Workout  Workout            `json:"workout"`
	Metadata GenerationMetadata `json:"metadata"`
}

// ReplacementRecord is one entry in the replacement history.
type ReplacementRecord struct {
	Position    int       `json:"position"`
	OldExercise Exercise  `json:"old_exercise"`
	NewExercise Exercise  `json:"new_exercise"`
	Timestamp   time.Time `json:"timestamp"`
}
