package models

import "testing"

// TestParseMuscleGroup verifies case-insensitive parsing and rejection of unknown names.
func TestParseMuscleGroup(t *testing.T) {
	tests := []struct {
		in      string
		want    MuscleGroup
		wantErr bool
	}{
		{"chest", Chest, false},
		{"  Back ", Back, false},
		{"LEGS", Legs, false},
		{"core", Core, false},
		{"glutes", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMuscleGroup(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMuscleGroup(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMuscleGroup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestParseMuscleGroupsSkipsBlanks verifies that empty entries from a split query string are ignored.
func TestParseMuscleGroupsSkipsBlanks(t *testing.T) {
	groups, err := ParseMuscleGroups([]string{"chest", "", " ", "arms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 || groups[0] != Chest || groups[1] != Arms {
		t.Errorf("groups = %v, want [chest arms]", groups)
	}
}

// TestAllMuscleGroupsIsCopy verifies callers cannot mutate the canonical set.
func TestAllMuscleGroupsIsCopy(t *testing.T) {
	groups := AllMuscleGroups()
	if len(groups) != 6 {
		t.Fatalf("len = %d, want 6", len(groups))
	}
	groups[0] = "mutated"
	if AllMuscleGroups()[0] != Chest {
		t.Error("AllMuscleGroups returned shared slice")
	}
}

// TestWorkoutCloneAndGroups verifies Clone isolation and first-appearance group ordering.
func TestWorkoutCloneAndGroups(t *testing.T) {
	w := Workout{
		{ID: "a", MuscleGroup: Back},
		{ID: "b", MuscleGroup: Chest},
		{ID: "c", MuscleGroup: Back},
	}
	c := w.Clone()
	c[0].ID = "z"
	if w[0].ID != "a" {
		t.Error("Clone shares backing array")
	}
	groups := w.MuscleGroups()
	if len(groups) != 2 || groups[0] != Back || groups[1] != Chest {
		t.Errorf("MuscleGroups = %v, want [back chest]", groups)
	}
	if Workout(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
