package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionSummary aggregates one exercise's qualifying (non-warmup) sets
// within a single session. Computed on demand from logged_sets, not
// separately persisted.
type SessionSummary struct {
	SessionID      uuid.UUID `json:"session_id"`
	Date           time.Time `json:"date"`
	BestWeightKg   float64   `json:"best_weight_kg"`
	BestReps       int       `json:"best_reps"`
	TotalVolumeKg  float64   `json:"total_volume_kg"`
	EstimatedOneRM float64   `json:"estimated_one_rm"`
	SetsCompleted  int       `json:"sets_completed"`
	MaxRPE         *float64  `json:"max_rpe,omitempty"`
	// HasTargetReps is true when at least one set carried a plan-recorded
	// rep target. MetTargetReps is false when any set fell short of its
	// target; sessions without recorded targets report true.
	HasTargetReps bool `json:"has_target_reps"`
	MetTargetReps bool `json:"met_target_reps"`
}
