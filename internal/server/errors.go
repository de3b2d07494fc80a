package server

import (
	"errors"
	"net/http"

	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
)

// kindNotFound is reported for unknown workout IDs; it is not a sequence kind.
const kindNotFound = "NOT_FOUND"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// statusForKind maps a structured error kind to an HTTP status.
func statusForKind(k sequence.Kind) int {
	switch k {
	case sequence.KindInvalidParameters,
		sequence.KindInvalidWorkout,
		sequence.KindInvalidPosition,
		sequence.KindInvalidIndex,
		sequence.KindInvalidExercise,
		sequence.KindMuscleGroupMismatch:
		return http.StatusBadRequest
	case sequence.KindConstraintViolation:
		return http.StatusConflict
	case sequence.KindNoExercisesAvailable:
		return http.StatusUnprocessableEntity
	case sequence.KindGenerationTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: kindNotFound})
		return
	}

	var se *sequence.Error
	if errors.As(err, &se) {
		status := statusForKind(se.Kind)
		if status >= http.StatusInternalServerError {
			s.log.Error("request failed", "kind", se.Kind, "error", err)
		}
		writeJSON(w, status, errorBody{Error: se.Message, Kind: string(se.Kind), Details: se.Details})
		return
	}

	s.log.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: string(sequence.KindInvalidParameters)})
}
