package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/builtbymaxim/pulselift/internal/records"
	"github.com/google/uuid"
)

// SetStore persists logged sets. *storage.DB satisfies it.
type SetStore interface {
	InsertLoggedSets(ctx context.Context, rows []models.LoggedSetRow) (int64, error)
}

// Resolver batch-resolves exercise classifications. *exercises.Classifier
// satisfies it.
type Resolver interface {
	ResolveAll(ctx context.Context, refs []models.ExerciseRef) (map[string]models.Classification, error)
}

// RecordDetector evaluates a persisted batch for record improvements.
// *records.Detector satisfies it.
type RecordDetector interface {
	Detect(ctx context.Context, userID int, sets []models.LoggedSetRow, classifications map[string]models.Classification, now time.Time) ([]models.RecordImprovement, error)
}

// Provider processes set batches from one completed workout session.
type Provider struct {
	store      SetStore
	classifier Resolver
	detector   RecordDetector
	log        *slog.Logger
}

// NewProvider creates a set-batch ingest provider.
func NewProvider(store SetStore, classifier Resolver, detector RecordDetector, log *slog.Logger) *Provider {
	return &Provider{store: store, classifier: classifier, detector: detector, log: log}
}

// Ingest validates, persists, and record-checks one batch for one user.
// Invalid entries are rejected individually; the rest of the batch still
// processes. A batch with zero valid sets is not an error.
func (p *Provider) Ingest(ctx context.Context, userID int, batch *models.SetBatch) (*Result, error) {
	sessionID := uuid.New()
	if batch.SessionID != nil {
		sessionID = *batch.SessionID
	}

	result := &Result{
		SessionID:    sessionID,
		SetsReceived: len(batch.Sets),
		Outcomes:     make([]SetOutcome, 0, len(batch.Sets)),
	}

	now := time.Now().UTC()
	var rows []models.LoggedSetRow
	for i, entry := range batch.Sets {
		if err := entry.Validate(); err != nil {
			result.SetsRejected++
			result.Outcomes = append(result.Outcomes, SetOutcome{
				Index:  i,
				Status: StatusRejected,
				Error:  err.Error(),
			})
			continue
		}

		performedAt := now
		if entry.PerformedAt != nil {
			performedAt = *entry.PerformedAt
		}
		rows = append(rows, models.LoggedSetRow{
			ID:          uuid.New(),
			UserID:      userID,
			SessionID:   sessionID,
			Exercise:    entry.Ref(),
			SetNumber:   entry.SetNumber,
			WeightKg:    entry.WeightKg,
			Reps:        entry.Reps,
			RPE:         entry.RPE,
			IsWarmup:    entry.IsWarmup,
			TargetReps:  entry.TargetReps,
			PerformedAt: performedAt,
		})
		result.Outcomes = append(result.Outcomes, SetOutcome{Index: i, Status: StatusSaved})
	}

	// One classification pass for every distinct exercise the batch touches.
	refs := make([]models.ExerciseRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, r.Exercise)
	}
	classifications, err := p.classifier.ResolveAll(ctx, refs)
	if err != nil {
		// An unreachable library never blocks ingest; the defaults apply.
		p.log.Warn("classification lookup failed, using defaults", "error", err)
		classifications = map[string]models.Classification{}
	}

	if len(rows) > 0 {
		inserted, err := p.store.InsertLoggedSets(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("inserting sets: %w", err)
		}
		result.SetsInserted = inserted
		result.SetsSkipped = int64(len(rows)) - inserted
	}

	improvements, err := p.detector.Detect(ctx, userID, rows, classifications, now)
	if err != nil {
		return nil, fmt.Errorf("detecting records: %w", err)
	}
	result.Records = improvements
	markRecordSets(rows, improvements)
	result.Sets = rows

	p.log.Info("batch ingested",
		"user_id", userID,
		"session_id", sessionID,
		"received", result.SetsReceived,
		"inserted", result.SetsInserted,
		"rejected", result.SetsRejected,
		"records", len(improvements),
	)
	return result, nil
}

// markRecordSets flags the sets that produced a record improvement, for the
// client's per-set celebration markers. Session-level volume records have no
// single contributing set and are skipped.
func markRecordSets(rows []models.LoggedSetRow, improvements []models.RecordImprovement) {
	for _, imp := range improvements {
		for i := range rows {
			if rows[i].IsWarmup || rows[i].Exercise.Key() != imp.Exercise.Key() {
				continue
			}
			if setProducedRecord(rows[i], imp) {
				rows[i].IsRecordSet = true
				break
			}
		}
	}
}

func setProducedRecord(s models.LoggedSetRow, imp models.RecordImprovement) bool {
	switch imp.RecordType {
	case models.RecordOneRM:
		return records.EstimatedOneRM(s.WeightKg, s.Reps) == imp.Value
	case models.RecordThreeRM, models.RecordFiveRM, models.RecordTenRM:
		return s.Reps >= models.RepMaxThresholds[imp.RecordType] && s.WeightKg == imp.Value
	case models.RecordMaxReps:
		return float64(s.Reps) == imp.Value
	default:
		return false
	}
}
