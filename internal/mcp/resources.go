package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Resource definitions ---

var resMuscleGroups = mcp.NewResource(
	"circuitry://muscle_groups",
	"Muscle Groups",
	mcp.WithResourceDescription("Muscle groups with the number of catalog exercises in each"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"circuitry://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise available for generation and replacement"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) muscleGroups(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	counts, err := h.b.MuscleGroupCounts(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, counts)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exs, err := h.b.Exercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, exs)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
