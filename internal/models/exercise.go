package models

import (
	"fmt"
	"strings"
)

// MuscleGroup is the closed set of tags the adjacency constraint is built on.
type MuscleGroup string

const (
	Chest     MuscleGroup = "chest"
	Back      MuscleGroup = "back"
	Legs      MuscleGroup = "legs"
	Shoulders MuscleGroup = "shoulders"
	Arms      MuscleGroup = "arms"
	Core      MuscleGroup = "core"
)

var allMuscleGroups = []MuscleGroup{Chest, Back, Legs, Shoulders, Arms, Core}

// AllMuscleGroups returns every muscle group in canonical order.
func AllMuscleGroups() []MuscleGroup {
	out := make([]MuscleGroup, len(allMuscleGroups))
	copy(out, allMuscleGroups)
	return out
}

// Valid reports whether g is one of the known muscle groups.
func (g MuscleGroup) Valid() bool {
	for _, known := range allMuscleGroups {
		if g == known {
			return true
		}
	}
	return false
}

// ParseMuscleGroup converts a case-insensitive name into a MuscleGroup.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	g := MuscleGroup(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown muscle group %q", s)
	}
	return g, nil
}

// ParseMuscleGroups parses a list of names, e.g. from a comma-separated query parameter.
func ParseMuscleGroups(names []string) ([]MuscleGroup, error) {
	groups := make([]MuscleGroup, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		g, err := ParseMuscleGroup(n)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Exercise is a catalog entry. Workouts hold copies, never references into the catalog.
type Exercise struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	MuscleGroup MuscleGroup `json:"muscle_group" yaml:"muscle_group"`
	Equipment   string      `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Difficulty  string      `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}
