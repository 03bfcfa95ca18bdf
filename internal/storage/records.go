package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertIfGreater writes a personal record iff the candidate strictly beats
// the stored value, preserving the superseded one. A single conditional
// statement, never a read followed by a write: concurrent submissions of
// overlapping batches race harmlessly, the larger value survives, and a
// retried identical batch is a no-op because ties fail the guard.
func (db *DB) UpsertIfGreater(ctx context.Context, userID int, exercise models.ExerciseRef, recordType models.RecordType, value float64, achievedAt time.Time) (*models.RecordImprovement, error) {
	var name *string
	if exercise.Name != "" {
		name = &exercise.Name
	}

	imp := models.RecordImprovement{
		Exercise:   exercise,
		RecordType: recordType,
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO personal_records (user_id, exercise_id, exercise_name, record_type, value, achieved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, exercise_key, record_type) DO UPDATE
		     SET previous_value = personal_records.value,
		         value          = EXCLUDED.value,
		         achieved_at    = EXCLUDED.achieved_at
		     WHERE EXCLUDED.value > personal_records.value
		 RETURNING value, previous_value, achieved_at`,
		userID, exercise.ID, name, recordType, value, achievedAt,
	).Scan(&imp.Value, &imp.PreviousValue, &imp.AchievedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict row exists and the candidate did not beat it.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("upserting personal record: %w", err)
	}
	return &imp, nil
}

// QueryPersonalRecords returns a user's current records, optionally filtered
// to one exercise, most recently achieved first.
func (db *DB) QueryPersonalRecords(ctx context.Context, userID int, exercise *models.ExerciseRef) ([]models.PersonalRecord, error) {
	query := `SELECT id, user_id, exercise_id, exercise_name, record_type, value, previous_value, achieved_at
	          FROM personal_records WHERE user_id = $1`
	args := []any{userID}
	if exercise != nil {
		query += ` AND exercise_key = $2`
		args = append(args, exercise.Key())
	}
	query += ` ORDER BY achieved_at DESC, record_type ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		var name *string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Exercise.ID, &name,
			&r.RecordType, &r.Value, &r.PreviousValue, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		if name != nil {
			r.Exercise.Name = *name
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
