package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// exerciseRefFromRequest reads the exercise identity from tool arguments.
// Returns nil when neither exercise nor exercise_id is present.
func exerciseRefFromRequest(req mcp.CallToolRequest) (*models.ExerciseRef, error) {
	if idStr := req.GetString("exercise_id", ""); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		ref := models.RefByID(id)
		return &ref, nil
	}
	if name := req.GetString("exercise", ""); name != "" {
		ref := models.RefByName(name)
		return &ref, nil
	}
	return nil, nil
}

// --- Tool definitions ---

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Retrieve current personal records (1RM estimate, rep maxes, max reps, max session volume). Each record carries the previous value where one was beaten."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (e.g. 'Bench Press'). Omit for all exercises.")),
	mcp.WithString("exercise_id", mcp.Description("Filter by exercise UUID from the exercise library. Takes precedence over name.")),
)

var toolGetSuggestions = mcp.NewTool("get_weight_suggestions",
	mcp.WithDescription("Get next-session weight suggestions for one or more exercises. Each suggestion includes the recommended weight, the last session's weight/reps/RPE, and a rationale (increase, maintain, deload, or no_history)."),
	mcp.WithString("exercises", mcp.Required(), mcp.Description("Comma-separated exercise names (e.g. 'Bench Press, Squat')")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Per-session history for one exercise: best weight, best reps, total volume, estimated 1RM, and max RPE per session, most recent first."),
	mcp.WithString("exercise", mcp.Description("Exercise name")),
	mcp.WithString("exercise_id", mcp.Description("Exercise UUID. Takes precedence over name.")),
	mcp.WithNumber("limit", mcp.Description("Number of sessions to return. Defaults to 10.")),
)

var toolGetTrainingVolume = mcp.NewTool("get_training_volume",
	mcp.WithDescription("Aggregate training volume over a time range: total tonnage, set and session counts, plus a per-exercise breakdown."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("Browse the exercise library with category, equipment, and classification (body region, input type) per exercise."),
	mcp.WithString("category", mcp.Description("Filter by category (e.g. 'legs', 'chest', 'back')")),
	mcp.WithString("equipment", mcp.Description("Filter by equipment (e.g. 'barbell', 'dumbbell', 'bodyweight')")),
	mcp.WithString("search", mcp.Description("Partial name match (e.g. 'press')")),
)

// --- Tool handlers ---

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := exerciseRefFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	records, err := h.ds.GetPersonalRecords(ctx, uid, ref)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSuggestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercises")
	if err != nil {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}

	var names []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) == 0 {
		return mcp.NewToolResultError("exercises parameter is empty"), nil
	}

	uid := UserIDFromContext(ctx)
	suggestions, err := h.ds.GetSuggestions(ctx, uid, names)
	if err != nil {
		h.log.Error("mcp get_weight_suggestions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(suggestions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := exerciseRefFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
	}
	if ref == nil {
		return mcp.NewToolResultError("exercise or exercise_id parameter is required"), nil
	}

	limit := req.GetInt("limit", 10)
	if limit < 1 || limit > 200 {
		return mcp.NewToolResultError("limit must be between 1 and 200"), nil
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.ds.GetExerciseSessions(ctx, uid, *ref, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	stats, err := h.ds.GetVolumeStats(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx,
		req.GetString("category", ""),
		req.GetString("equipment", ""),
		req.GetString("search", ""),
	)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recordsSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	records, err := h.ds.GetPersonalRecords(ctx, uid, nil)
	if err != nil {
		return nil, err
	}

	// Group by exercise for a compact overview.
	grouped := map[string][]models.PersonalRecord{}
	for _, r := range records {
		key := r.Exercise.Display()
		grouped[key] = append(grouped[key], r)
	}

	data, err := json.Marshal(map[string]any{
		"exercises":    grouped,
		"record_count": len(records),
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
