package ingest

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// fakeStore records inserted rows and reports them all inserted.
type fakeStore struct {
	rows []models.LoggedSetRow
}

func (f *fakeStore) InsertLoggedSets(_ context.Context, rows []models.LoggedSetRow) (int64, error) {
	f.rows = append(f.rows, rows...)
	return int64(len(rows)), nil
}

// fakeResolver returns defaults for everything and counts calls.
type fakeResolver struct {
	calls int
}

func (f *fakeResolver) ResolveAll(_ context.Context, refs []models.ExerciseRef) (map[string]models.Classification, error) {
	f.calls++
	out := make(map[string]models.Classification, len(refs))
	for _, ref := range refs {
		out[ref.Key()] = models.DefaultClassification
	}
	return out, nil
}

// fakeDetector returns canned improvements.
type fakeDetector struct {
	improvements []models.RecordImprovement
	gotSets      []models.LoggedSetRow
	gotClasses   map[string]models.Classification
}

func (f *fakeDetector) Detect(_ context.Context, _ int, sets []models.LoggedSetRow, classes map[string]models.Classification, _ time.Time) ([]models.RecordImprovement, error) {
	f.gotSets = sets
	f.gotClasses = classes
	return f.improvements, nil
}

func validEntry(name string, setNumber int, weight float64, reps int) models.SetEntry {
	return models.SetEntry{
		ExerciseName: name,
		SetNumber:    setNumber,
		WeightKg:     weight,
		Reps:         reps,
	}
}

func TestIngestPartialBatchFailure(t *testing.T) {
	store := &fakeStore{}
	detector := &fakeDetector{}
	p := NewProvider(store, &fakeResolver{}, detector, slog.Default())

	bad := validEntry("Bench Press", 2, 100, -3) // negative reps
	batch := &models.SetBatch{Sets: []models.SetEntry{
		validEntry("Bench Press", 1, 100, 5),
		bad,
		validEntry("Bench Press", 3, 95, 8),
	}}

	result, err := p.Ingest(context.Background(), 1, batch)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.SetsReceived != 3 {
		t.Errorf("received = %d, want 3", result.SetsReceived)
	}
	if result.SetsInserted != 2 {
		t.Errorf("inserted = %d, want 2", result.SetsInserted)
	}
	if result.SetsRejected != 1 {
		t.Errorf("rejected = %d, want 1", result.SetsRejected)
	}
	if len(store.rows) != 2 {
		t.Errorf("persisted rows = %d, want 2", len(store.rows))
	}

	if result.Outcomes[1].Status != StatusRejected {
		t.Errorf("outcome[1] = %q, want rejected", result.Outcomes[1].Status)
	}
	if result.Outcomes[1].Error == "" {
		t.Error("rejected outcome carries no error message")
	}
	if result.Outcomes[0].Status != StatusSaved || result.Outcomes[2].Status != StatusSaved {
		t.Errorf("valid outcomes = %q/%q, want saved/saved",
			result.Outcomes[0].Status, result.Outcomes[2].Status)
	}
}

func TestIngestValidationRules(t *testing.T) {
	tests := []struct {
		name  string
		entry models.SetEntry
	}{
		{"negative weight", validEntry("Bench Press", 1, -10, 5)},
		{"zero reps", validEntry("Bench Press", 1, 100, 0)},
		{"missing exercise identity", models.SetEntry{SetNumber: 1, WeightKg: 100, Reps: 5}},
		{"rpe out of range", func() models.SetEntry {
			e := validEntry("Bench Press", 1, 100, 5)
			rpe := 11.0
			e.RPE = &rpe
			return e
		}()},
	}

	for _, tt := range tests {
		p := NewProvider(&fakeStore{}, &fakeResolver{}, &fakeDetector{}, slog.Default())
		result, err := p.Ingest(context.Background(), 1, &models.SetBatch{Sets: []models.SetEntry{tt.entry}})
		if err != nil {
			t.Fatalf("%s: Ingest: %v", tt.name, err)
		}
		if result.SetsRejected != 1 {
			t.Errorf("%s: rejected = %d, want 1", tt.name, result.SetsRejected)
		}
	}
}

func TestIngestClassifiesOncePerBatch(t *testing.T) {
	resolver := &fakeResolver{}
	p := NewProvider(&fakeStore{}, resolver, &fakeDetector{}, slog.Default())

	batch := &models.SetBatch{Sets: []models.SetEntry{
		validEntry("Bench Press", 1, 100, 5),
		validEntry("Bench Press", 2, 100, 5),
		validEntry("Back Squat", 1, 140, 5),
		validEntry("Back Squat", 2, 140, 5),
	}}
	if _, err := p.Ingest(context.Background(), 1, batch); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1 per batch", resolver.calls)
	}
}

func TestIngestEmptyAndWarmupOnlyBatches(t *testing.T) {
	p := NewProvider(&fakeStore{}, &fakeResolver{}, &fakeDetector{}, slog.Default())

	result, err := p.Ingest(context.Background(), 1, &models.SetBatch{})
	if err != nil {
		t.Fatalf("Ingest of empty batch: %v", err)
	}
	if result.SetsInserted != 0 || result.SetsRejected != 0 {
		t.Errorf("empty batch: inserted=%d rejected=%d, want 0/0", result.SetsInserted, result.SetsRejected)
	}

	warmup := validEntry("Bench Press", 1, 60, 10)
	warmup.IsWarmup = true
	result, err = p.Ingest(context.Background(), 1, &models.SetBatch{Sets: []models.SetEntry{warmup}})
	if err != nil {
		t.Fatalf("Ingest of warmup-only batch: %v", err)
	}
	if result.SetsInserted != 1 {
		t.Errorf("warmup set inserted = %d, want 1 (stored, just not record-eligible)", result.SetsInserted)
	}
	if len(result.Records) != 0 {
		t.Errorf("warmup-only batch records = %d, want 0", len(result.Records))
	}
}

func TestIngestMarksRecordSets(t *testing.T) {
	prev := 110.0
	detector := &fakeDetector{improvements: []models.RecordImprovement{{
		Exercise:      models.RefByName("Bench Press"),
		RecordType:    models.RecordFiveRM,
		Value:         100,
		PreviousValue: &prev,
	}}}
	p := NewProvider(&fakeStore{}, &fakeResolver{}, detector, slog.Default())

	result, err := p.Ingest(context.Background(), 1, &models.SetBatch{Sets: []models.SetEntry{
		validEntry("Bench Press", 1, 90, 5),
		validEntry("Bench Press", 2, 100, 6),
	}}) // set #2: 6 reps at 100kg is the 5RM source
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if result.Sets[0].IsRecordSet {
		t.Error("set #1 marked as record set")
	}
	if !result.Sets[1].IsRecordSet {
		t.Error("set #2 not marked as record set")
	}
}
