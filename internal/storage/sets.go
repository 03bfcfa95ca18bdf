package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// InsertLoggedSets batch-inserts logged training sets. Rows that collide with
// an already-stored identity (a client retry of the same session batch) are
// dropped by ON CONFLICT DO NOTHING. Returns count inserted.
func (db *DB) InsertLoggedSets(ctx context.Context, rows []models.LoggedSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO logged_sets (id, user_id, session_id, exercise_id, exercise_name,
		set_number, weight_kg, reps, rpe, is_warmup, target_reps, performed_at) VALUES `
	args := make([]any, 0, len(rows)*12)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 12
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12,
		))
		var name *string
		if r.Exercise.Name != "" {
			name = &r.Exercise.Name
		}
		args = append(args, r.ID, r.UserID, r.SessionID, r.Exercise.ID, name,
			r.SetNumber, r.WeightKg, r.Reps, r.RPE, r.IsWarmup, r.TargetReps, r.PerformedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting logged sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SessionSummaries aggregates one exercise's qualifying sets per session,
// most recent first. Warmups never count; sessions whose sets are all
// warmups do not appear.
func (db *DB) SessionSummaries(ctx context.Context, userID int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id,
		        MAX(performed_at) AS session_date,
		        MAX(weight_kg) AS best_weight_kg,
		        MAX(reps)::int AS best_reps,
		        COALESCE(SUM(weight_kg * reps), 0) AS total_volume_kg,
		        MAX(CASE WHEN reps <= 1 THEN weight_kg
		                 ELSE weight_kg * (1 + reps / 30.0) END) AS estimated_one_rm,
		        COUNT(*)::int AS sets_completed,
		        MAX(rpe) AS max_rpe,
		        BOOL_OR(target_reps IS NOT NULL) AS has_target_reps,
		        BOOL_AND(target_reps IS NULL OR reps >= target_reps) AS met_target_reps
		 FROM logged_sets
		 WHERE user_id = $1 AND exercise_key = $2 AND NOT is_warmup
		 GROUP BY session_id
		 ORDER BY MAX(performed_at) DESC
		 LIMIT $3`,
		userID, exercise.Key(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying session summaries: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Date, &s.BestWeightKg, &s.BestReps,
			&s.TotalVolumeKg, &s.EstimatedOneRM, &s.SetsCompleted, &s.MaxRPE,
			&s.HasTargetReps, &s.MetTargetReps); err != nil {
			return nil, fmt.Errorf("scanning session summary: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
