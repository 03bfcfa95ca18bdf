package storage

import (
	"context"
	"fmt"
	"time"
)

// ExerciseVolume holds one exercise's volume share within a period.
type ExerciseVolume struct {
	Exercise  string  `json:"exercise"`
	Sets      int     `json:"sets"`
	TonnageKg float64 `json:"tonnage_kg"`
}

// VolumeStats holds aggregated strength-training stats for a period.
type VolumeStats struct {
	WorkingSets       int              `json:"working_sets"`
	TotalReps         int              `json:"total_reps"`
	TonnageKg         float64          `json:"tonnage_kg"`
	Sessions          int              `json:"sessions"`
	AvgSetsPerSession float64          `json:"avg_sets_per_session"`
	TopExercises      []ExerciseVolume `json:"top_exercises,omitempty"`
}

// GetVolumeStats returns aggregate training volume for a user in a date
// range: totals plus the highest-volume exercises.
func (db *DB) GetVolumeStats(ctx context.Context, userID int, start, end time.Time) (*VolumeStats, error) {
	stats := &VolumeStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int,
		        COALESCE(SUM(reps), 0)::int,
		        COALESCE(SUM(weight_kg * reps), 0),
		        COUNT(DISTINCT session_id)::int
		 FROM logged_sets
		 WHERE user_id = $1 AND NOT is_warmup
		   AND performed_at >= $2 AND performed_at < $3`,
		userID, start, end,
	).Scan(&stats.WorkingSets, &stats.TotalReps, &stats.TonnageKg, &stats.Sessions)
	if err != nil {
		return nil, fmt.Errorf("querying volume totals: %w", err)
	}
	if stats.Sessions > 0 {
		stats.AvgSetsPerSession = float64(stats.WorkingSets) / float64(stats.Sessions)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT COALESCE(e.name, ls.exercise_name, ls.exercise_key) AS exercise,
		        COUNT(*)::int AS sets,
		        SUM(ls.weight_kg * ls.reps) AS tonnage
		 FROM logged_sets ls
		 LEFT JOIN exercises e ON e.id = ls.exercise_id
		 WHERE ls.user_id = $1 AND NOT ls.is_warmup
		   AND ls.performed_at >= $2 AND ls.performed_at < $3
		 GROUP BY exercise
		 ORDER BY tonnage DESC
		 LIMIT 10`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying per-exercise volume: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev ExerciseVolume
		if err := rows.Scan(&ev.Exercise, &ev.Sets, &ev.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning per-exercise volume: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, ev)
	}
	return stats, rows.Err()
}
