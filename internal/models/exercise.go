package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BodyRegion is the coarse classification that drives progression increments.
type BodyRegion string

const (
	RegionUpper BodyRegion = "upper"
	RegionLower BodyRegion = "lower"
	RegionOther BodyRegion = "other"
)

// InputType says how sets of an exercise are measured.
type InputType string

const (
	InputWeightAndReps   InputType = "weight_and_reps"
	InputRepsOnly        InputType = "reps_only"
	InputTimeOnly        InputType = "time_only"
	InputDistanceAndTime InputType = "distance_and_time"
)

// Classification is the classifier's verdict for one exercise identity.
type Classification struct {
	BodyRegion BodyRegion `json:"body_region"`
	InputType  InputType  `json:"input_type"`
}

// DefaultClassification is used for exercises the library does not know
// and whose name matches no recognized pattern.
var DefaultClassification = Classification{
	BodyRegion: RegionOther,
	InputType:  InputWeightAndReps,
}

// Exercise is a library exercise row.
type Exercise struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	InputType  InputType `json:"input_type"`
	Equipment  *string   `json:"equipment,omitempty"`
	IsCompound bool      `json:"is_compound"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegionForCategory maps a library muscle-group category to a body region.
// Legs are lower; chest, back, shoulders and arms are upper; everything
// else (core, cardio, other) keeps the larger lower-body increment.
func RegionForCategory(category string) BodyRegion {
	switch strings.ToLower(category) {
	case "legs":
		return RegionLower
	case "chest", "back", "shoulders", "arms":
		return RegionUpper
	default:
		return RegionOther
	}
}

// ExerciseRef identifies an exercise by library ID or by free-text name.
// Exactly one of the two must be set.
type ExerciseRef struct {
	ID   *uuid.UUID `json:"exercise_id,omitempty"`
	Name string     `json:"exercise_name,omitempty"`
}

// RefByName returns an ExerciseRef for a free-text exercise name.
func RefByName(name string) ExerciseRef {
	return ExerciseRef{Name: name}
}

// RefByID returns an ExerciseRef for a library exercise.
func RefByID(id uuid.UUID) ExerciseRef {
	return ExerciseRef{ID: &id}
}

// Validate enforces the exactly-one-identity invariant.
func (r ExerciseRef) Validate() error {
	hasID := r.ID != nil
	hasName := strings.TrimSpace(r.Name) != ""
	if hasID == hasName {
		return fmt.Errorf("exercise reference needs exactly one of exercise_id or exercise_name")
	}
	return nil
}

// Key returns the canonical identity used for grouping and storage lookups.
// It matches the exercise_key generated column in the database.
func (r ExerciseRef) Key() string {
	if r.ID != nil {
		return r.ID.String()
	}
	return strings.ToLower(strings.TrimSpace(r.Name))
}

// Display returns something printable for logs and API payloads.
func (r ExerciseRef) Display() string {
	if r.Name != "" {
		return r.Name
	}
	if r.ID != nil {
		return r.ID.String()
	}
	return "(unknown exercise)"
}
