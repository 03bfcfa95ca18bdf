// Package progression computes next-session weight suggestions from recent
// training history: a small deterministic state machine over a sliding
// window of session summaries, not a statistical model.
package progression

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// HistorySource provides session-aggregated training history, most recent
// first, qualifying (non-warmup) sets only. *storage.DB satisfies it.
type HistorySource interface {
	SessionSummaries(ctx context.Context, userID int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error)
}

// Config holds the progression tunables. Zero values take defaults.
type Config struct {
	// UpperIncrementKg is added on progression for upper-body exercises.
	UpperIncrementKg float64
	// LowerIncrementKg is added for lower-body and unclassified exercises.
	LowerIncrementKg float64
	// DeloadFactor scales the working weight on a detected plateau.
	DeloadFactor float64
	// HistoryWindow is how many trailing sessions the engine examines.
	HistoryWindow int
	// DefaultTargetReps is the expected rep count used when a session
	// carries no plan-recorded targets. Zero disables the check: such
	// sessions always count as having hit their targets.
	DefaultTargetReps int
}

const (
	defaultUpperIncrementKg = 2.5
	defaultLowerIncrementKg = 5.0
	defaultDeloadFactor     = 0.90
	defaultHistoryWindow    = 3

	// stagnationRPE is the effort floor for a session to count as stagnant.
	stagnationRPE = 9.0
	// assumedRPE stands in when a session has no RPE logged.
	assumedRPE = 7.0
	// plateKg is the smallest practical plate increment; all suggested
	// weights round to it.
	plateKg = 0.5
)

func (c Config) withDefaults() Config {
	if c.UpperIncrementKg == 0 {
		c.UpperIncrementKg = defaultUpperIncrementKg
	}
	if c.LowerIncrementKg == 0 {
		c.LowerIncrementKg = defaultLowerIncrementKg
	}
	if c.DeloadFactor == 0 {
		c.DeloadFactor = defaultDeloadFactor
	}
	if c.HistoryWindow < defaultHistoryWindow {
		c.HistoryWindow = defaultHistoryWindow
	}
	return c
}

// Engine produces weight suggestions. It is read-only over history and safe
// for concurrent use.
type Engine struct {
	history HistorySource
	cfg     Config
	log     *slog.Logger
}

// NewEngine creates an Engine over the given history source.
func NewEngine(history HistorySource, cfg Config, log *slog.Logger) *Engine {
	return &Engine{history: history, cfg: cfg.withDefaults(), log: log}
}

// Suggest computes the next working weight for one exercise. The caller
// supplies the classification so batch requests resolve it once.
func (e *Engine) Suggest(ctx context.Context, userID int, exercise models.ExerciseRef, cls models.Classification) (models.Suggestion, error) {
	sessions, err := e.history.SessionSummaries(ctx, userID, exercise, e.cfg.HistoryWindow)
	if err != nil {
		return models.Suggestion{}, fmt.Errorf("loading session history for %s: %w", exercise.Display(), err)
	}

	if len(sessions) == 0 {
		return models.Suggestion{
			Rationale: models.RationaleNoHistory,
			Reason:    "no previous sessions for this exercise",
		}, nil
	}

	latest := sessions[0]
	s := models.Suggestion{
		LastWeightKg: &latest.BestWeightKg,
		LastReps:     &latest.BestReps,
		LastRPE:      latest.MaxRPE,
	}

	// Plateau check first: three consecutive sessions stuck at the same
	// weight under near-maximal effort call for a deload.
	if len(sessions) >= 3 && stagnantPair(sessions[0], sessions[1]) && stagnantPair(sessions[1], sessions[2]) {
		weight := roundToPlate(latest.BestWeightKg * e.cfg.DeloadFactor)
		s.SuggestedWeightKg = &weight
		s.Rationale = models.RationaleDeload
		s.Reason = fmt.Sprintf("three stalled sessions at %.1fkg, deloading to %.1fkg", latest.BestWeightKg, weight)
		return s, nil
	}

	if effectiveRPE(latest) <= 8 && e.hitTargetReps(latest) {
		weight := roundToPlate(latest.BestWeightKg + e.increment(cls.BodyRegion))
		s.SuggestedWeightKg = &weight
		s.Rationale = models.RationaleIncrease
		s.Reason = fmt.Sprintf("+%.1fkg (%s body progression)", e.increment(cls.BodyRegion), regionLabel(cls.BodyRegion))
		return s, nil
	}

	weight := roundToPlate(latest.BestWeightKg)
	s.SuggestedWeightKg = &weight
	s.Rationale = models.RationaleMaintain
	if !e.hitTargetReps(latest) {
		s.Reason = "reps fell short of target, holding current weight"
	} else {
		s.Reason = "high RPE, holding current weight"
	}
	return s, nil
}

func (e *Engine) increment(region models.BodyRegion) float64 {
	if region == models.RegionUpper {
		return e.cfg.UpperIncrementKg
	}
	return e.cfg.LowerIncrementKg
}

// hitTargetReps decides whether a session counts as having hit its rep
// scheme. Plan-recorded targets win; otherwise the configurable expected
// rep count applies, and with none configured the session passes.
func (e *Engine) hitTargetReps(s models.SessionSummary) bool {
	if s.HasTargetReps {
		return s.MetTargetReps
	}
	if e.cfg.DefaultTargetReps > 0 {
		return s.BestReps >= e.cfg.DefaultTargetReps
	}
	return true
}

// stagnantPair reports whether two consecutive sessions sat at the same
// working weight (within the plate rounding grain) at RPE >= 9.
func stagnantPair(a, b models.SessionSummary) bool {
	if math.Abs(a.BestWeightKg-b.BestWeightKg) >= plateKg/2 {
		return false
	}
	return effectiveRPE(a) >= stagnationRPE && effectiveRPE(b) >= stagnationRPE
}

func effectiveRPE(s models.SessionSummary) float64 {
	if s.MaxRPE == nil {
		return assumedRPE
	}
	return *s.MaxRPE
}

func roundToPlate(weightKg float64) float64 {
	return math.Round(weightKg/plateKg) * plateKg
}

func regionLabel(region models.BodyRegion) string {
	if region == models.RegionUpper {
		return "upper"
	}
	return "lower"
}
