package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoggedSetRow is a row ready for insertion into the logged_sets table.
// Rows are immutable once written; corrections are new rows.
type LoggedSetRow struct {
	ID           uuid.UUID  `json:"id"`
	UserID       int        `json:"user_id"`
	SessionID    uuid.UUID  `json:"session_id"`
	Exercise     ExerciseRef `json:"exercise"`
	SetNumber    int        `json:"set_number"`
	WeightKg     float64    `json:"weight_kg"`
	Reps         int        `json:"reps"`
	RPE          *float64   `json:"rpe,omitempty"`
	IsWarmup     bool       `json:"is_warmup"`
	TargetReps   *int       `json:"target_reps,omitempty"`
	PerformedAt  time.Time  `json:"performed_at"`
	IsRecordSet  bool       `json:"is_pr"`
}

// Volume is weight times reps.
func (s LoggedSetRow) Volume() float64 {
	return s.WeightKg * float64(s.Reps)
}

// SetEntry is one set as submitted by a client for ingest.
type SetEntry struct {
	ExerciseID   *uuid.UUID `json:"exercise_id,omitempty"`
	ExerciseName string     `json:"exercise_name,omitempty"`
	SetNumber    int        `json:"set_number"`
	WeightKg     float64    `json:"weight_kg"`
	Reps         int        `json:"reps"`
	RPE          *float64   `json:"rpe,omitempty"`
	IsWarmup     bool       `json:"is_warmup"`
	TargetReps   *int       `json:"target_reps,omitempty"`
	PerformedAt  *time.Time `json:"performed_at,omitempty"`
}

// Ref returns the exercise identity of this entry.
func (e SetEntry) Ref() ExerciseRef {
	return ExerciseRef{ID: e.ExerciseID, Name: e.ExerciseName}
}

// Validate rejects entries that must not reach storage. An invalid entry
// fails alone; the rest of its batch still processes.
func (e SetEntry) Validate() error {
	if err := e.Ref().Validate(); err != nil {
		return err
	}
	if e.SetNumber <= 0 {
		return fmt.Errorf("set_number must be positive, got %d", e.SetNumber)
	}
	if e.WeightKg < 0 {
		return fmt.Errorf("weight_kg must not be negative, got %g", e.WeightKg)
	}
	if e.Reps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", e.Reps)
	}
	if e.RPE != nil && (*e.RPE < 1 || *e.RPE > 10) {
		return fmt.Errorf("rpe must be within [1,10], got %g", *e.RPE)
	}
	if e.TargetReps != nil && *e.TargetReps <= 0 {
		return fmt.Errorf("target_reps must be positive, got %d", *e.TargetReps)
	}
	return nil
}

// SetBatch is the ingest request payload: all sets from one completed session.
type SetBatch struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Sets      []SetEntry `json:"sets"`
}
