package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/builtbymaxim/pulselift/internal/storage"
	"github.com/google/uuid"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGetPersonalRecords verifies the HTTP client sends the name filter
// and unwraps the records envelope.
func TestGetPersonalRecords(t *testing.T) {
	prev := 100.0
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "Bench Press" {
				t.Errorf("exercise=%q, want Bench Press", got)
			}
			writeTestJSON(t, w, map[string]any{
				"records": []models.PersonalRecord{
					{RecordType: models.RecordOneRM, Value: 105, PreviousValue: &prev},
				},
				"count": 1,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	ref := models.RefByName("Bench Press")
	records, err := client.GetPersonalRecords(context.Background(), 1, &ref)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Value != 105 {
		t.Errorf("value = %v, want 105", records[0].Value)
	}
	if records[0].PreviousValue == nil || *records[0].PreviousValue != 100 {
		t.Errorf("previous_value = %v, want 100", records[0].PreviousValue)
	}
}

// TestGetPersonalRecordsByID verifies UUID refs go out as exercise_id.
func TestGetPersonalRecordsByID(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise_id"); got != id.String() {
				t.Errorf("exercise_id=%q, want %s", got, id)
			}
			if got := r.URL.Query().Get("exercise"); got != "" {
				t.Errorf("exercise=%q, want empty", got)
			}
			writeTestJSON(t, w, map[string]any{"records": []models.PersonalRecord{}, "count": 0})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	ref := models.RefByID(id)
	if _, err := client.GetPersonalRecords(context.Background(), 1, &ref); err != nil {
		t.Fatal(err)
	}
}

// TestGetSuggestions verifies names are joined into the exercises param and
// the suggestions map is unwrapped.
func TestGetSuggestions(t *testing.T) {
	weight := 102.5
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/suggestions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercises"); got != "Bench Press,Squat" {
				t.Errorf("exercises=%q, want Bench Press,Squat", got)
			}
			writeTestJSON(t, w, map[string]any{
				"suggestions": map[string]models.Suggestion{
					"Bench Press": {SuggestedWeightKg: &weight, Rationale: models.RationaleIncrease},
					"Squat":       {Rationale: models.RationaleNoHistory},
				},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	suggestions, err := client.GetSuggestions(context.Background(), 1, []string{"Bench Press", "Squat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	bench := suggestions["Bench Press"]
	if bench.SuggestedWeightKg == nil || *bench.SuggestedWeightKg != 102.5 {
		t.Errorf("suggested weight = %v, want 102.5", bench.SuggestedWeightKg)
	}
	if suggestions["Squat"].Rationale != models.RationaleNoHistory {
		t.Errorf("squat rationale = %q, want no_history", suggestions["Squat"].Rationale)
	}
}

// TestGetExerciseSessions verifies the limit param and sessions envelope.
func TestGetExerciseSessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "squat" {
				t.Errorf("exercise=%q, want squat", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, map[string]any{
				"sessions": []models.SessionSummary{
					{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), BestWeightKg: 140, TotalVolumeKg: 2100},
				},
				"count": 1,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	sessions, err := client.GetExerciseSessions(context.Background(), 1, models.RefByName("squat"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].BestWeightKg != 140 {
		t.Errorf("best weight = %v, want 140", sessions[0].BestWeightKg)
	}
}

// TestGetVolumeStats verifies time params and direct struct decoding.
func TestGetVolumeStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/training/volume": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			writeTestJSON(t, w, storage.VolumeStats{TonnageKg: 12500, WorkingSets: 84})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	stats, err := client.GetVolumeStats(context.Background(), 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TonnageKg != 12500 {
		t.Errorf("tonnage = %v, want 12500", stats.TonnageKg)
	}
	if stats.WorkingSets != 84 {
		t.Errorf("working sets = %d, want 84", stats.WorkingSets)
	}
}

// TestErrorStatus verifies non-200 responses surface as errors with the body.
func TestErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.GetPersonalRecords(context.Background(), 1, nil); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
