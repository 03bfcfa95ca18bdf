package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordType names one tracked personal-record dimension.
type RecordType string

const (
	RecordOneRM     RecordType = "1rm"
	RecordThreeRM   RecordType = "3rm"
	RecordFiveRM    RecordType = "5rm"
	RecordTenRM     RecordType = "10rm"
	RecordMaxReps   RecordType = "max_reps"
	RecordMaxVolume RecordType = "max_volume"
)

// RepMaxThresholds maps rep-max record types to the minimum rep count a set
// needs for its weight to qualify. A set with more reps still qualifies.
var RepMaxThresholds = map[RecordType]int{
	RecordThreeRM: 3,
	RecordFiveRM:  5,
	RecordTenRM:   10,
}

// PersonalRecord is the current best for one (user, exercise, type).
// The row is updated in place on improvement, keeping the superseded value.
type PersonalRecord struct {
	ID            uuid.UUID   `json:"id"`
	UserID        int         `json:"user_id"`
	Exercise      ExerciseRef `json:"exercise"`
	RecordType    RecordType  `json:"record_type"`
	Value         float64     `json:"value"`
	PreviousValue *float64    `json:"previous_value,omitempty"`
	AchievedAt    time.Time   `json:"achieved_at"`
}

// RecordImprovement reports one record that a batch improved, carrying both
// old and new value for the celebration UI.
type RecordImprovement struct {
	Exercise      ExerciseRef `json:"exercise"`
	RecordType    RecordType  `json:"record_type"`
	Value         float64     `json:"value"`
	PreviousValue *float64    `json:"previous_value,omitempty"`
	AchievedAt    time.Time   `json:"achieved_at"`
}
