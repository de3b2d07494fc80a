package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	var (
		exs []models.Exercise
		err error
	)
	if g := r.URL.Query().Get("group"); g != "" {
		group, perr := models.ParseMuscleGroup(g)
		if perr != nil {
			badRequest(w, perr.Error())
			return
		}
		exs, err = s.catalog.ExercisesByMuscleGroup(r.Context(), group)
	} else {
		exs, err = s.catalog.AllExercises(r.Context())
	}
	if err != nil {
		s.log.Error("catalog query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: string(sequence.KindDatabaseError)})
		return
	}
	writeJSON(w, http.StatusOK, exs)
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	counts, err := s.catalog.ExerciseCounts(r.Context())
	if err != nil {
		s.log.Error("catalog count failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: string(sequence.KindDatabaseError)})
		return
	}
	writeJSON(w, http.StatusOK, catalog.SortedCounts(counts))
}

// GenerateRequest is the body of POST /api/v1/workouts. Omitted tuning
// fields use the server defaults.
type GenerateRequest struct {
	Length           int      `json:"length"`
	Groups           []string `json:"groups,omitempty"`
	EvenDistribution *bool    `json:"even_distribution,omitempty"`
	MaxRetries       *int     `json:"max_retries,omitempty"`
	UniqueExercises  *bool    `json:"unique_exercises,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	groups, err := models.ParseMuscleGroups(req.Groups)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	opts := s.defaults
	if req.EvenDistribution != nil {
		opts.EvenDistribution = *req.EvenDistribution
	}
	if req.MaxRetries != nil {
		opts.MaxRetries = *req.MaxRetries
	}
	if req.UniqueExercises != nil {
		opts.UniqueExercises = *req.UniqueExercises
	}

	snap, err := s.store.Create(r.Context(), req.Length, groups, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	snap, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateRequest is the body of POST /api/v1/workouts/validate.
type ValidateRequest struct {
	Exercises []models.Exercise `json:"exercises"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sequence.ValidateWorkout(req.Exercises))
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		badRequest(w, "position parameter required")
		return
	}
	var groups []models.MuscleGroup
	if g := r.URL.Query().Get("groups"); g != "" {
		groups, err = models.ParseMuscleGroups(strings.Split(g, ","))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	opts, err := s.store.Options(r.Context(), id, position, groups)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ReplaceRequest is the body of POST /api/v1/workouts/{id}/replace.
// History tracking and constraint validation default to on.
type ReplaceRequest struct {
	Position            *int   `json:"position"`
	ExerciseID          string `json:"exercise_id"`
	TrackHistory        *bool  `json:"track_history,omitempty"`
	ValidateConstraints *bool  `json:"validate_constraints,omitempty"`
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Position == nil {
		badRequest(w, "position is required")
		return
	}
	if req.ExerciseID == "" {
		badRequest(w, "exercise_id is required")
		return
	}

	opts := sequence.DefaultReplaceOptions()
	if req.TrackHistory != nil {
		opts.TrackHistory = *req.TrackHistory
	}
	if req.ValidateConstraints != nil {
		opts.ValidateConstraints = *req.ValidateConstraints
	}

	out, err := s.store.Replace(r.Context(), id, *req.Position, req.ExerciseID, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	out, err := s.store.Undo(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	out, err := s.store.Redo(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	view, err := s.store.History(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	snap, err := s.store.ClearHistory(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func workoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid workout ID")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
