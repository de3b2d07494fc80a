package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
)

// HTTPClient implements Backend by calling the Circuitry REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// workouts live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Backend.
var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// is sent on mutating requests when set.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError mirrors the server's error body.
type apiError struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// decodeAPIError turns an error body back into session.ErrNotFound or a
// *sequence.Error so remote callers see the same errors as local ones.
func decodeAPIError(path string, status int, data []byte) error {
	var ae apiError
	if err := json.Unmarshal(data, &ae); err != nil || ae.Error == "" {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, data)
	}
	switch {
	case status == http.StatusNotFound && ae.Kind == "NOT_FOUND":
		return fmt.Errorf("httpclient: %s: %w", path, session.ErrNotFound)
	case ae.Kind != "":
		return &sequence.Error{Kind: sequence.Kind(ae.Kind), Message: ae.Error, Details: ae.Details}
	default:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, ae.Error)
	}
}

func workoutPath(id uuid.UUID, suffix string) string {
	return "/api/v1/workouts/" + id.String() + suffix
}

func (c *HTTPClient) Exercises(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	params := url.Values{}
	if group != "" {
		params.Set("group", string(group))
	}
	var exs []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil, &exs); err != nil {
		return nil, err
	}
	return exs, nil
}

func (c *HTTPClient) MuscleGroupCounts(ctx context.Context) ([]catalog.GroupCount, error) {
	var counts []catalog.GroupCount
	if err := c.do(ctx, http.MethodGet, "/api/v1/muscle-groups", nil, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *HTTPClient) Generate(ctx context.Context, p GenerateParams) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, p, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) Workout(ctx context.Context, id uuid.UUID) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := c.do(ctx, http.MethodGet, workoutPath(id, ""), nil, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) Options(ctx context.Context, id uuid.UUID, position int, groups []models.MuscleGroup) ([]models.Exercise, error) {
	params := url.Values{}
	params.Set("position", strconv.Itoa(position))
	if len(groups) > 0 {
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = string(g)
		}
		params.Set("groups", strings.Join(names, ","))
	}
	var exs []models.Exercise
	if err := c.do(ctx, http.MethodGet, workoutPath(id, "/options"), params, nil, &exs); err != nil {
		return nil, err
	}
	return exs, nil
}

func (c *HTTPClient) Replace(ctx context.Context, id uuid.UUID, position int, exerciseID string, opts sequence.ReplaceOptions) (*session.ReplaceOutcome, error) {
	body := map[string]any{
		"position":             position,
		"exercise_id":          exerciseID,
		"track_history":        opts.TrackHistory,
		"validate_constraints": opts.ValidateConstraints,
	}
	var out session.ReplaceOutcome
	if err := c.do(ctx, http.MethodPost, workoutPath(id, "/replace"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Undo(ctx context.Context, id uuid.UUID) (*session.StepOutcome, error) {
	var out session.StepOutcome
	if err := c.do(ctx, http.MethodPost, workoutPath(id, "/undo"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Redo(ctx context.Context, id uuid.UUID) (*session.StepOutcome, error) {
	var out session.StepOutcome
	if err := c.do(ctx, http.MethodPost, workoutPath(id, "/redo"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
