package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
)

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a circuit workout where no two consecutive exercises share a muscle group. Returns the workout id, the exercises and generation metadata."),
	mcp.WithNumber("length", mcp.Required(), mcp.Description("Number of exercises (5-20)")),
	mcp.WithArray("groups", mcp.WithStringItems(), mcp.Description("Muscle groups to draw from (chest, back, legs, shoulders, arms, core). Defaults to all.")),
	mcp.WithBoolean("even_distribution", mcp.Description("Balance the exercise pool across the enabled groups")),
	mcp.WithNumber("max_retries", mcp.Description("Restart budget before giving up. Defaults to 100.")),
	mcp.WithBoolean("unique_exercises", mcp.Description("Never repeat an exercise when the pool is large enough")),
)

var toolValidateWorkout = mcp.NewTool("validate_workout",
	mcp.WithDescription("Check a workout against the consecutive muscle group rule. Pass either workout_id or an exercises list."),
	mcp.WithString("workout_id", mcp.Description("Id of a generated workout")),
	mcp.WithArray("exercises", mcp.Description("Exercises in order, each with id, name and muscle_group"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":           map[string]any{"type": "string"},
				"name":         map[string]any{"type": "string"},
				"muscle_group": map[string]any{"type": "string"},
			},
		})),
)

var toolGetReplacementOptions = mcp.NewTool("get_replacement_options",
	mcp.WithDescription("List catalog exercises that could replace the exercise at a position without breaking the workout."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithNumber("position", mcp.Required(), mcp.Description("Zero-based position")),
	mcp.WithArray("groups", mcp.WithStringItems(), mcp.Description("Restrict to these muscle groups. Defaults to the workout's enabled groups.")),
)

var toolReplaceExercise = mcp.NewTool("replace_exercise",
	mcp.WithDescription("Replace the exercise at a position with another exercise of the same muscle group."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithNumber("position", mcp.Required(), mcp.Description("Zero-based position")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Catalog id of the new exercise")),
	mcp.WithBoolean("track_history", mcp.Description("Record for undo/redo. Defaults to true.")),
)

var toolUndoReplacement = mcp.NewTool("undo_replacement",
	mcp.WithDescription("Undo the most recent replacement in a workout."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
)

var toolRedoReplacement = mcp.NewTool("redo_replacement",
	mcp.WithDescription("Redo the most recently undone replacement in a workout."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises, optionally for one muscle group."),
	mcp.WithString("group", mcp.Description("Muscle group filter"), mcp.Enum("chest", "back", "legs", "shoulders", "arms", "core")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	length, err := req.RequireInt("length")
	if err != nil {
		return mcp.NewToolResultError("length parameter is required"), nil
	}
	groups, err := models.ParseMuscleGroups(req.GetStringSlice("groups", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := GenerateParams{Length: length, Groups: groups}
	args := req.GetArguments()
	if v, ok := args["even_distribution"].(bool); ok {
		p.EvenDistribution = &v
	}
	if v, ok := args["unique_exercises"].(bool); ok {
		p.UniqueExercises = &v
	}
	if _, ok := args["max_retries"]; ok {
		n := req.GetInt("max_retries", sequence.DefaultMaxRetries)
		p.MaxRetries = &n
	}

	snap, err := h.b.Generate(ctx, p)
	if err != nil {
		return h.toolError("generate_workout", err), nil
	}
	return jsonResult(snap)
}

func (h *handlers) validateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var w models.Workout
	if idStr := req.GetString("workout_id", ""); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return mcp.NewToolResultError("invalid workout_id"), nil
		}
		snap, err := h.b.Workout(ctx, id)
		if err != nil {
			return h.toolError("validate_workout", err), nil
		}
		w = snap.Workout
	} else {
		raw, ok := req.GetArguments()["exercises"]
		if !ok {
			return mcp.NewToolResultError("workout_id or exercises is required"), nil
		}
		// Arguments arrive as generic JSON; round-trip into the typed workout.
		data, err := json.Marshal(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid exercises: " + err.Error()), nil
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return mcp.NewToolResultError("invalid exercises: " + err.Error()), nil
		}
	}
	return jsonResult(sequence.ValidateWorkout(w))
}

func (h *handlers) getReplacementOptions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireWorkoutID(req)
	if errResult != nil {
		return errResult, nil
	}
	position, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError("position parameter is required"), nil
	}
	groups, err := models.ParseMuscleGroups(req.GetStringSlice("groups", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := h.b.Options(ctx, id, position, groups)
	if err != nil {
		return h.toolError("get_replacement_options", err), nil
	}
	return jsonResult(opts)
}

func (h *handlers) replaceExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireWorkoutID(req)
	if errResult != nil {
		return errResult, nil
	}
	position, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError("position parameter is required"), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	opts := sequence.DefaultReplaceOptions()
	opts.TrackHistory = req.GetBool("track_history", true)

	out, err := h.b.Replace(ctx, id, position, exerciseID, opts)
	if err != nil {
		return h.toolError("replace_exercise", err), nil
	}
	return jsonResult(out)
}

func (h *handlers) undoReplacement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireWorkoutID(req)
	if errResult != nil {
		return errResult, nil
	}
	out, err := h.b.Undo(ctx, id)
	if err != nil {
		return h.toolError("undo_replacement", err), nil
	}
	return jsonResult(out)
}

func (h *handlers) redoReplacement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireWorkoutID(req)
	if errResult != nil {
		return errResult, nil
	}
	out, err := h.b.Redo(ctx, id)
	if err != nil {
		return h.toolError("redo_replacement", err), nil
	}
	return jsonResult(out)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group models.MuscleGroup
	if g := req.GetString("group", ""); g != "" {
		parsed, err := models.ParseMuscleGroup(g)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		group = parsed
	}
	exs, err := h.b.Exercises(ctx, group)
	if err != nil {
		return h.toolError("list_exercises", err), nil
	}
	return jsonResult(exs)
}

func requireWorkoutID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("workout_id parameter is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid workout_id")
	}
	return id, nil
}

// toolError reports err to the model. Structured errors keep their kind
// prefix so the caller can tell a constraint conflict from a bad argument.
func (h *handlers) toolError(tool string, err error) *mcp.CallToolResult {
	if k := sequence.KindOf(err); k == "" || k == sequence.KindDatabaseError {
		h.log.Error("mcp "+tool, "error", err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
