package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/builtbymaxim/pulselift/internal/storage"
)

// HTTPClient implements DataSource by calling the PulseLift REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// exerciseParams encodes an exercise identity the way the REST API
// expects it: exercise_id for UUID refs, exercise for name refs.
func exerciseParams(v url.Values, ref models.ExerciseRef) {
	if ref.ID != nil {
		v.Set("exercise_id", ref.ID.String())
	} else {
		v.Set("exercise", ref.Name)
	}
}

func (c *HTTPClient) GetPersonalRecords(ctx context.Context, _ int, exercise *models.ExerciseRef) ([]models.PersonalRecord, error) {
	params := url.Values{}
	if exercise != nil {
		exerciseParams(params, *exercise)
	}

	body, err := c.get(ctx, "/api/v1/records", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Records []models.PersonalRecord `json:"records"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return resp.Records, nil
}

func (c *HTTPClient) GetSuggestions(ctx context.Context, _ int, exerciseNames []string) (map[string]models.Suggestion, error) {
	params := url.Values{}
	params.Set("exercises", strings.Join(exerciseNames, ","))

	body, err := c.get(ctx, "/api/v1/suggestions", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Suggestions map[string]models.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode suggestions: %w", err)
	}
	return resp.Suggestions, nil
}

func (c *HTTPClient) GetExerciseSessions(ctx context.Context, _ int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error) {
	params := url.Values{}
	exerciseParams(params, exercise)
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	body, err := c.get(ctx, "/api/v1/sessions", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Sessions []models.SessionSummary `json:"sessions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return resp.Sessions, nil
}

func (c *HTTPClient) GetVolumeStats(ctx context.Context, _ int, start, end time.Time) (*storage.VolumeStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	body, err := c.get(ctx, "/api/v1/training/volume", params)
	if err != nil {
		return nil, err
	}

	var stats storage.VolumeStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, category, equipment, search string) ([]models.Exercise, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if equipment != "" {
		params.Set("equipment", equipment)
	}
	if search != "" {
		params.Set("search", search)
	}

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Exercises []models.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return resp.Exercises, nil
}
