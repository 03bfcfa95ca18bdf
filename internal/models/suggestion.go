package models

// Rationale tags why a weight suggestion came out the way it did.
type Rationale string

const (
	RationaleIncrease  Rationale = "increase"
	RationaleMaintain  Rationale = "maintain"
	RationaleDeload    Rationale = "deload"
	RationaleNoHistory Rationale = "no_history"
)

// Suggestion is the progression engine's answer for one exercise.
// SuggestedWeightKg is nil for no_history; the caller prompts manual entry.
type Suggestion struct {
	SuggestedWeightKg *float64  `json:"suggested_weight_kg,omitempty"`
	LastWeightKg      *float64  `json:"last_weight_kg,omitempty"`
	LastReps          *int      `json:"last_reps,omitempty"`
	LastRPE           *float64  `json:"last_rpe,omitempty"`
	Rationale         Rationale `json:"rationale"`
	Reason            string    `json:"reason"`
}
