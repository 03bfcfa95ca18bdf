// Package records implements personal-record detection over batches of
// newly logged sets.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// Store is the record persistence the detector writes through.
// *storage.DB satisfies it.
type Store interface {
	// UpsertIfGreater atomically writes value as the new record iff it
	// strictly exceeds the stored one (or no record exists yet), preserving
	// the superseded value. Returns nil when nothing improved. Safe under
	// concurrent retries of the same batch.
	UpsertIfGreater(ctx context.Context, userID int, exercise models.ExerciseRef, recordType models.RecordType, value float64, achievedAt time.Time) (*models.RecordImprovement, error)
}

// Detector turns set batches into record upserts.
type Detector struct {
	store Store
	log   *slog.Logger
}

// NewDetector creates a Detector writing through the given store.
func NewDetector(store Store, log *slog.Logger) *Detector {
	return &Detector{store: store, log: log}
}

// EstimatedOneRM applies the Epley formula: weight × (1 + reps/30).
// A single-rep set is its own one-rep max.
func EstimatedOneRM(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// Candidates computes the candidate record values one exercise's non-warmup
// sets produce. The whole batch counts as one session for max_volume.
func Candidates(sets []models.LoggedSetRow, input models.InputType) map[models.RecordType]float64 {
	out := make(map[models.RecordType]float64)
	if len(sets) == 0 {
		return out
	}

	// Timed and cardio exercises carry no weight/rep records.
	if input == models.InputTimeOnly || input == models.InputDistanceAndTime {
		return out
	}

	var totalVolume float64
	for _, s := range sets {
		totalVolume += s.Volume()

		if est := EstimatedOneRM(s.WeightKg, s.Reps); est > out[models.RecordOneRM] {
			out[models.RecordOneRM] = est
		}
		for rt, minReps := range models.RepMaxThresholds {
			// "At least N reps at this weight or more": a heavier set with
			// more reps than the threshold still qualifies.
			if s.Reps >= minReps && s.WeightKg > out[rt] {
				out[rt] = s.WeightKg
			}
		}
		if input == models.InputRepsOnly && float64(s.Reps) > out[models.RecordMaxReps] {
			out[models.RecordMaxReps] = float64(s.Reps)
		}
	}
	if totalVolume > 0 {
		out[models.RecordMaxVolume] = totalVolume
	}

	// Zero-weight candidates would persist meaningless records on first
	// contact (e.g. bodyweight sets logged at 0 kg).
	for rt, v := range out {
		if v <= 0 {
			delete(out, rt)
		}
	}
	return out
}

// Detect evaluates a batch of newly logged sets against stored records and
// upserts every strict improvement. classifications must hold an entry per
// distinct exercise key in the batch (resolved once, upfront); missing keys
// fall back to the default classification.
func (d *Detector) Detect(ctx context.Context, userID int, sets []models.LoggedSetRow, classifications map[string]models.Classification, now time.Time) ([]models.RecordImprovement, error) {
	byExercise := make(map[string][]models.LoggedSetRow)
	refs := make(map[string]models.ExerciseRef)
	for _, s := range sets {
		if s.IsWarmup {
			continue
		}
		key := s.Exercise.Key()
		byExercise[key] = append(byExercise[key], s)
		refs[key] = s.Exercise
	}

	keys := make([]string, 0, len(byExercise))
	for key := range byExercise {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var improved []models.RecordImprovement
	for _, key := range keys {
		cls, ok := classifications[key]
		if !ok {
			cls = models.DefaultClassification
		}

		candidates := Candidates(byExercise[key], cls.InputType)
		for _, rt := range recordOrder {
			value, ok := candidates[rt]
			if !ok {
				continue
			}
			imp, err := d.store.UpsertIfGreater(ctx, userID, refs[key], rt, value, now)
			if err != nil {
				return improved, fmt.Errorf("upserting %s record for %s: %w", rt, refs[key].Display(), err)
			}
			if imp != nil {
				d.log.Info("personal record",
					"exercise", refs[key].Display(),
					"type", rt,
					"value", imp.Value,
					"previous", imp.PreviousValue,
				)
				improved = append(improved, *imp)
			}
		}
	}
	return improved, nil
}

// recordOrder fixes upsert and response ordering for determinism.
var recordOrder = []models.RecordType{
	models.RecordOneRM,
	models.RecordThreeRM,
	models.RecordFiveRM,
	models.RecordTenRM,
	models.RecordMaxReps,
	models.RecordMaxVolume,
}
