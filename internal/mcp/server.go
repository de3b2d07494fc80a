package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(b Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Circuitry", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Circuitry builds circuit workouts in which no two consecutive exercises train the same muscle group. Generate a workout, then swap single exercises for same-group alternatives with undo/redo. Workouts are identified by the id returned from generate_workout."),
	)

	h := &handlers{b: b, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolValidateWorkout, Handler: h.validateWorkout},
		server.ServerTool{Tool: toolGetReplacementOptions, Handler: h.getReplacementOptions},
		server.ServerTool{Tool: toolReplaceExercise, Handler: h.replaceExercise},
		server.ServerTool{Tool: toolUndoReplacement, Handler: h.undoReplacement},
		server.ServerTool{Tool: toolRedoReplacement, Handler: h.redoReplacement},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resMuscleGroups, Handler: h.muscleGroups},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	b   Backend
	log *slog.Logger
}
