// Package session keeps generated workouts in memory so they can be edited,
// undone and redone across requests. Each session owns its replacement
// history; nothing survives a restart.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
)

// ErrNotFound is returned for an unknown workout ID.
var ErrNotFound = errors.New("workout not found")

// Snapshot is a copy of a session's state, safe to hand to callers.
type Snapshot struct {
	ID            uuid.UUID                 `json:"id"`
	Workout       models.Workout            `json:"workout"`
	EnabledGroups []models.MuscleGroup      `json:"enabled_groups"`
	Metadata      models.GenerationMetadata `json:"metadata"`
	History       sequence.HistoryStatus    `json:"history"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// ReplaceOutcome pairs a replacement result with the workout after it.
type ReplaceOutcome struct {
	Result  *sequence.ReplacementResult `json:"result"`
	Workout *Snapshot                   `json:"workout"`
}

// StepOutcome pairs an undo or redo result with the workout after it.
type StepOutcome struct {
	Result  sequence.HistoryResult `json:"result"`
	Workout *Snapshot              `json:"workout"`
}

// HistoryView is a session's replacement log with its cursor state.
type HistoryView struct {
	Status  sequence.HistoryStatus     `json:"status"`
	Records []models.ReplacementRecord `json:"records"`
}

type session struct {
	mu        sync.Mutex
	id        uuid.UUID
	workout   models.Workout
	groups    []models.MuscleGroup
	metadata  models.GenerationMetadata
	engine    *sequence.ReplacementEngine
	createdAt time.Time
	updatedAt time.Time
}

func (s *session) snapshot() *Snapshot {
	meta := s.metadata
	meta.EnabledGroups = append([]models.MuscleGroup(nil), meta.EnabledGroups...)
	meta.MuscleGroupsUsed = append([]models.MuscleGroup(nil), meta.MuscleGroupsUsed...)
	return &Snapshot{
		ID:            s.id,
		Workout:       s.workout.Clone(),
		EnabledGroups: append([]models.MuscleGroup(nil), s.groups...),
		Metadata:      meta,
		History:       s.engine.HistoryStatus(),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// Store holds workout sessions keyed by ID. Safe for concurrent use; calls
// on the same session are serialized.
type Store struct {
	mu              sync.RWMutex
	sessions        map[uuid.UUID]*session
	gen             *sequence.Generator
	historyCapacity int
	log             *slog.Logger
	now             func() time.Time
}

// NewStore creates an empty store. Sessions generate from gen and keep up to
// historyCapacity replacements each.
func NewStore(gen *sequence.Generator, historyCapacity int, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		sessions:        make(map[uuid.UUID]*session),
		gen:             gen,
		historyCapacity: historyCapacity,
		log:             log,
		now:             time.Now,
	}
}

// Catalog returns the catalog sessions draw exercises from.
func (s *Store) Catalog() catalog.Catalog { return s.gen.Catalog() }

// Create generates a workout and stores it as a new session. No groups
// means every muscle group.
func (s *Store) Create(ctx context.Context, length int, groups []models.MuscleGroup, opts sequence.GenerateOptions) (*Snapshot, error) {
	if len(groups) == 0 {
		groups = models.AllMuscleGroups()
	}
	res, err := s.gen.Generate(ctx, length, groups, opts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &session{
		id:        uuid.New(),
		workout:   res.Workout,
		groups:    append([]models.MuscleGroup(nil), res.Metadata.EnabledGroups...),
		metadata:  res.Metadata,
		engine:    sequence.NewReplacementEngine(s.gen.Catalog(), s.historyCapacity, s.log),
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.Info("workout session created", "id", sess.id, "length", len(sess.workout))
	return sess.snapshot(), nil
}

func (s *Store) lookup(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(id uuid.UUID) (*Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// List returns snapshots of all sessions, oldest first.
func (s *Store) List() []*Snapshot {
	s.mu.RLock()
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	out := make([]*Snapshot, 0, len(all))
	for _, sess := range all {
		sess.mu.Lock()
		out = append(out, sess.snapshot())
		sess.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete removes the session.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	s.log.Info("workout session deleted", "id", id)
	return nil
}

// Options lists exercises that could replace the one at position.
// Empty groups means the session's enabled groups.
func (s *Store) Options(ctx context.Context, id uuid.UUID, position int, groups []models.MuscleGroup) ([]models.Exercise, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(groups) == 0 {
		groups = sess.groups
	}
	return sess.engine.ReplacementOptions(ctx, sess.workout, position, groups...)
}

// Replace swaps the exercise at position for the catalog exercise exerciseID.
func (s *Store) Replace(ctx context.Context, id uuid.UUID, position int, exerciseID string, opts sequence.ReplaceOptions) (*ReplaceOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	ex, ok, err := catalog.FindByID(ctx, s.gen.Catalog(), exerciseID)
	if err != nil {
		return nil, &sequence.Error{
			Kind:    sequence.KindDatabaseError,
			Message: "looking up replacement exercise",
			Err:     err,
		}
	}
	if !ok {
		return nil, sequence.NewError(sequence.KindInvalidExercise,
			map[string]any{"exercise_id": exerciseID},
			"exercise %q is not in the catalog", exerciseID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	res, err := sess.engine.Replace(&sess.workout, position, ex, opts)
	if err != nil {
		return nil, err
	}
	if res.Replaced {
		sess.updatedAt = s.now()
	}
	return &ReplaceOutcome{Result: res, Workout: sess.snapshot()}, nil
}

// Undo reverts the session's most recent replacement.
func (s *Store) Undo(id uuid.UUID) (*StepOutcome, error) {
	return s.step(id, (*sequence.ReplacementEngine).Undo)
}

// Redo reapplies the session's most recently undone replacement.
func (s *Store) Redo(id uuid.UUID) (*StepOutcome, error) {
	return s.step(id, (*sequence.ReplacementEngine).Redo)
}

func (s *Store) step(id uuid.UUID, fn func(*sequence.ReplacementEngine, *models.Workout) sequence.HistoryResult) (*StepOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	res := fn(sess.engine, &sess.workout)
	if res.Success {
		sess.updatedAt = s.now()
	}
	return &StepOutcome{Result: res, Workout: sess.snapshot()}, nil
}

// History returns the session's replacement log.
func (s *Store) History(id uuid.UUID) (*HistoryView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &HistoryView{
		Status:  sess.engine.HistoryStatus(),
		Records: sess.engine.History().Records(),
	}, nil
}

// ClearHistory empties the session's replacement log. The workout is unchanged.
func (s *Store) ClearHistory(id uuid.UUID) (*Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.ClearHistory()
	return sess.snapshot(), nil
}

// Validate re-checks the session's current workout.
func (s *Store) Validate(id uuid.UUID) (sequence.ValidationResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return sequence.ValidationResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sequence.ValidateWorkout(sess.workout), nil
}
