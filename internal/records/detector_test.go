package records

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// memStore implements Store with the same strict-improvement semantics as
// the personal_records upsert.
type memStore struct {
	records map[string]*models.PersonalRecord
	writes  int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*models.PersonalRecord)}
}

func (m *memStore) UpsertIfGreater(_ context.Context, userID int, ex models.ExerciseRef, rt models.RecordType, value float64, at time.Time) (*models.RecordImprovement, error) {
	key := ex.Key() + "/" + string(rt)
	cur, ok := m.records[key]
	if ok && value <= cur.Value {
		return nil, nil
	}

	m.writes++
	rec := &models.PersonalRecord{
		UserID:     userID,
		Exercise:   ex,
		RecordType: rt,
		Value:      value,
		AchievedAt: at,
	}
	if ok {
		prev := cur.Value
		rec.PreviousValue = &prev
	}
	m.records[key] = rec

	return &models.RecordImprovement{
		Exercise:      ex,
		RecordType:    rt,
		Value:         value,
		PreviousValue: rec.PreviousValue,
		AchievedAt:    at,
	}, nil
}

func weightAndReps() map[string]models.Classification {
	return map[string]models.Classification{
		"bench press": {BodyRegion: models.RegionUpper, InputType: models.InputWeightAndReps},
	}
}

func benchSet(weight float64, reps int, warmup bool) models.LoggedSetRow {
	return models.LoggedSetRow{
		Exercise: models.RefByName("Bench Press"),
		WeightKg: weight,
		Reps:     reps,
		IsWarmup: warmup,
	}
}

func TestEstimatedOneRM(t *testing.T) {
	if got := EstimatedOneRM(100, 1); got != 100 {
		t.Errorf("EstimatedOneRM(100, 1) = %g, want 100", got)
	}
	if got := EstimatedOneRM(100, 5); math.Abs(got-116.6667) > 0.001 {
		t.Errorf("EstimatedOneRM(100, 5) = %g, want ~116.667", got)
	}
	if got := EstimatedOneRM(80, 10); math.Abs(got-80*(1+10.0/30)) > 1e-9 {
		t.Errorf("EstimatedOneRM(80, 10) = %g, want %g", got, 80*(1+10.0/30))
	}
}

func TestCandidatesRepThresholds(t *testing.T) {
	// 6 reps at 120kg qualifies for the 5RM and 3RM even though no set was
	// performed at exactly those rep counts.
	sets := []models.LoggedSetRow{benchSet(120, 6, false)}
	c := Candidates(sets, models.InputWeightAndReps)

	if c[models.RecordFiveRM] != 120 {
		t.Errorf("5rm candidate = %g, want 120", c[models.RecordFiveRM])
	}
	if c[models.RecordThreeRM] != 120 {
		t.Errorf("3rm candidate = %g, want 120", c[models.RecordThreeRM])
	}
	if _, ok := c[models.RecordTenRM]; ok {
		t.Errorf("10rm candidate present for a 6-rep set")
	}
	if c[models.RecordMaxVolume] != 720 {
		t.Errorf("max_volume candidate = %g, want 720", c[models.RecordMaxVolume])
	}
}

func TestCandidatesMaxRepsOnlyForRepsOnly(t *testing.T) {
	sets := []models.LoggedSetRow{benchSet(100, 8, false)}

	if c := Candidates(sets, models.InputWeightAndReps); len(c) != 0 {
		if _, ok := c[models.RecordMaxReps]; ok {
			t.Errorf("max_reps candidate computed for a weight-and-reps exercise")
		}
	}

	c := Candidates(sets, models.InputRepsOnly)
	if c[models.RecordMaxReps] != 8 {
		t.Errorf("max_reps candidate = %g, want 8", c[models.RecordMaxReps])
	}
}

func TestCandidatesSkipTimedExercises(t *testing.T) {
	sets := []models.LoggedSetRow{benchSet(0, 60, false)}
	if c := Candidates(sets, models.InputTimeOnly); len(c) != 0 {
		t.Errorf("candidates for time_only exercise = %v, want none", c)
	}
}

func TestDetectFirstBatchCreatesRecords(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())
	now := time.Now()

	improved, err := d.Detect(context.Background(), 1,
		[]models.LoggedSetRow{benchSet(100, 5, false)}, weightAndReps(), now)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	// 1rm, 3rm, 5rm, max_volume; no 10rm (5 reps), no max_reps (weighted).
	if len(improved) != 4 {
		t.Fatalf("improvements = %d, want 4: %+v", len(improved), improved)
	}
	for _, imp := range improved {
		if imp.PreviousValue != nil {
			t.Errorf("%s: previous value = %g on first write, want absent", imp.RecordType, *imp.PreviousValue)
		}
		if !imp.AchievedAt.Equal(now) {
			t.Errorf("%s: achieved_at = %v, want %v", imp.RecordType, imp.AchievedAt, now)
		}
	}
}

func TestDetectStrictImprovementOnly(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())
	ctx := context.Background()

	first, err := d.Detect(ctx, 1, []models.LoggedSetRow{benchSet(100, 5, false)}, weightAndReps(), time.Now())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("first batch produced no records")
	}
	writesAfterFirst := store.writes

	// Equal performance: ties are not new records.
	again, err := d.Detect(ctx, 1, []models.LoggedSetRow{benchSet(100, 5, false)}, weightAndReps(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("equal batch improvements = %d, want 0", len(again))
	}
	if store.writes != writesAfterFirst {
		t.Errorf("store writes = %d, want %d (no writes on tie)", store.writes, writesAfterFirst)
	}
}

func TestDetectIdempotentRetry(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())
	ctx := context.Background()
	now := time.Now()
	batch := []models.LoggedSetRow{benchSet(100, 5, false), benchSet(95, 8, false)}

	if _, err := d.Detect(ctx, 1, batch, weightAndReps(), now); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	snapshot := make(map[string]models.PersonalRecord)
	for k, v := range store.records {
		snapshot[k] = *v
	}

	// Client retry after a dropped response: identical batch, later clock.
	if _, err := d.Detect(ctx, 1, batch, weightAndReps(), now.Add(time.Minute)); err != nil {
		t.Fatalf("Detect retry: %v", err)
	}

	if len(store.records) != len(snapshot) {
		t.Fatalf("record count changed on retry: %d -> %d", len(snapshot), len(store.records))
	}
	for k, want := range snapshot {
		got := *store.records[k]
		if got.Value != want.Value {
			t.Errorf("%s: value = %g after retry, want %g", k, got.Value, want.Value)
		}
		if (got.PreviousValue == nil) != (want.PreviousValue == nil) {
			t.Errorf("%s: previous_value corrupted by retry", k)
		}
		if !got.AchievedAt.Equal(want.AchievedAt) {
			t.Errorf("%s: achieved_at moved on retry", k)
		}
	}
}

func TestDetectImprovementKeepsPrevious(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())
	ctx := context.Background()

	if _, err := d.Detect(ctx, 1, []models.LoggedSetRow{benchSet(100, 1, false)}, weightAndReps(), time.Now()); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	improved, err := d.Detect(ctx, 1, []models.LoggedSetRow{benchSet(105, 1, false)}, weightAndReps(), time.Now())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	var oneRM *models.RecordImprovement
	for i := range improved {
		if improved[i].RecordType == models.RecordOneRM {
			oneRM = &improved[i]
		}
	}
	if oneRM == nil {
		t.Fatal("no 1rm improvement reported")
	}
	if oneRM.Value != 105 {
		t.Errorf("1rm value = %g, want 105", oneRM.Value)
	}
	if oneRM.PreviousValue == nil || *oneRM.PreviousValue != 100 {
		t.Errorf("1rm previous = %v, want 100", oneRM.PreviousValue)
	}
}

func TestDetectIgnoresWarmupsAndEmptyBatches(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())
	ctx := context.Background()

	improved, err := d.Detect(ctx, 1, []models.LoggedSetRow{
		benchSet(60, 10, true),
		benchSet(80, 5, true),
	}, weightAndReps(), time.Now())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(improved) != 0 {
		t.Errorf("warmup-only batch improvements = %d, want 0", len(improved))
	}

	improved, err = d.Detect(ctx, 1, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("Detect on empty batch: %v", err)
	}
	if len(improved) != 0 {
		t.Errorf("empty batch improvements = %d, want 0", len(improved))
	}
}

func TestDetectSessionVolumeAggregates(t *testing.T) {
	store := newMemStore()
	d := NewDetector(store, slog.Default())

	// Three working sets: volume is the session total, one data point.
	improved, err := d.Detect(context.Background(), 1, []models.LoggedSetRow{
		benchSet(100, 5, false),
		benchSet(100, 5, false),
		benchSet(90, 8, false),
	}, weightAndReps(), time.Now())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	for _, imp := range improved {
		if imp.RecordType == models.RecordMaxVolume {
			want := 100.0*5 + 100*5 + 90*8
			if imp.Value != want {
				t.Errorf("max_volume = %g, want %g", imp.Value, want)
			}
			return
		}
	}
	t.Error("no max_volume improvement reported")
}
