package mcp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/claude/circuitry/internal/models"
	api "github.com/claude/circuitry/internal/server"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
)

// newAPIServer runs the real REST API over an in-memory store.
func newAPIServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	srv := api.New(newStore(t), sequence.DefaultGenerateOptions(), apiKey, discardLog)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

// TestHTTPClientRoundTrip verifies the remote backend drives a full generate/replace/undo/redo cycle.
func TestHTTPClientRoundTrip(t *testing.T) {
	ts := newAPIServer(t, "secret")
	c := NewHTTPClient(ts.URL+"/", "secret")
	ctx := context.Background()

	snap, err := c.Generate(ctx, GenerateParams{Length: 6})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(snap.Workout) != 6 {
		t.Fatalf("workout length = %d, want 6", len(snap.Workout))
	}

	got, err := c.Workout(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Workout: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("ID = %s, want %s", got.ID, snap.ID)
	}

	opts, err := c.Options(ctx, snap.ID, 1, nil)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) == 0 {
		t.Fatal("no options")
	}

	out, err := c.Replace(ctx, snap.ID, 1, opts[0].ID, sequence.DefaultReplaceOptions())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !out.Result.Replaced || out.Workout.Workout[1].ID != opts[0].ID {
		t.Errorf("replace = %+v", out.Result)
	}

	undo, err := c.Undo(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undo.Workout.Workout[1].ID != snap.Workout[1].ID {
		t.Errorf("after undo workout[1] = %q, want %q", undo.Workout.Workout[1].ID, snap.Workout[1].ID)
	}

	redo, err := c.Redo(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if !redo.Result.Success {
		t.Errorf("redo = %+v", redo.Result)
	}
}

// TestHTTPClientCatalog verifies exercises and muscle group counts are fetched with filters.
func TestHTTPClientCatalog(t *testing.T) {
	c := NewHTTPClient(newAPIServer(t, "").URL, "")
	ctx := context.Background()

	legs, err := c.Exercises(ctx, models.Legs)
	if err != nil {
		t.Fatalf("Exercises: %v", err)
	}
	for _, e := range legs {
		if e.MuscleGroup != models.Legs {
			t.Errorf("exercise %q group = %q, want legs", e.ID, e.MuscleGroup)
		}
	}

	counts, err := c.MuscleGroupCounts(ctx)
	if err != nil {
		t.Fatalf("MuscleGroupCounts: %v", err)
	}
	if len(counts) != len(models.AllMuscleGroups()) {
		t.Errorf("counts = %v", counts)
	}
}

// TestHTTPClientErrors verifies server errors come back as the same typed errors as local calls.
func TestHTTPClientErrors(t *testing.T) {
	c := NewHTTPClient(newAPIServer(t, "").URL, "")
	ctx := context.Background()

	if _, err := c.Workout(ctx, uuid.New()); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("unknown workout err = %v, want ErrNotFound", err)
	}

	_, err := c.Generate(ctx, GenerateParams{Length: 2})
	if sequence.KindOf(err) != sequence.KindInvalidParameters {
		t.Errorf("short workout err = %v, want INVALID_PARAMETERS", err)
	}

	snap, err := c.Generate(ctx, GenerateParams{Length: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, err = c.Replace(ctx, snap.ID, 9, "push-up", sequence.DefaultReplaceOptions())
	if sequence.KindOf(err) != sequence.KindInvalidPosition {
		t.Errorf("out-of-range replace err = %v, want INVALID_POSITION", err)
	}
}

// TestHTTPClientAPIKey verifies mutating calls fail without the server's key.
func TestHTTPClientAPIKey(t *testing.T) {
	ts := newAPIServer(t, "secret")
	_, err := NewHTTPClient(ts.URL, "wrong").Generate(context.Background(), GenerateParams{Length: 5})
	if err == nil {
		t.Fatal("expected error with wrong API key")
	}
	if sequence.KindOf(err) != "" {
		t.Errorf("auth failure should not carry a sequence kind, got %q", sequence.KindOf(err))
	}
}

// TestHTTPClientNonJSONError verifies plain-text failures are reported with their status.
func TestHTTPClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "").MuscleGroupCounts(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}
