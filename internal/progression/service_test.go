package progression

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// flakyHistory fails lookups for one exercise key and serves the rest.
type flakyHistory struct {
	sessions map[string][]models.SessionSummary
	failKey  string
}

func (f *flakyHistory) SessionSummaries(_ context.Context, _ int, ex models.ExerciseRef, _ int) ([]models.SessionSummary, error) {
	if ex.Key() == f.failKey {
		return nil, errors.New("history lookup timed out")
	}
	return f.sessions[ex.Key()], nil
}

// countingResolver records how often classification resolution runs.
type countingResolver struct {
	classes map[string]models.Classification
	calls   int
}

func (c *countingResolver) ResolveAll(_ context.Context, refs []models.ExerciseRef) (map[string]models.Classification, error) {
	c.calls++
	out := make(map[string]models.Classification, len(refs))
	for _, ref := range refs {
		if cls, ok := c.classes[ref.Key()]; ok {
			out[ref.Key()] = cls
		}
	}
	return out, nil
}

func TestSuggestAllPartialFailure(t *testing.T) {
	history := &flakyHistory{
		sessions: map[string][]models.SessionSummary{
			"bench press": {session(100, 8, 7)},
			"back squat":  {session(140, 5, 9)},
		},
		failKey: "deadlift",
	}
	resolver := &countingResolver{classes: map[string]models.Classification{
		"bench press": upper,
		"back squat":  lower,
		"deadlift":    lower,
	}}
	svc := NewService(resolver, NewEngine(history, Config{}, slog.Default()), slog.Default())

	got := svc.SuggestAll(context.Background(), 1, []string{"Bench Press", "Deadlift", "Back Squat"})

	if _, ok := got["Deadlift"]; ok {
		t.Errorf("failed exercise present in results")
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2 despite one failure", len(got))
	}
	if got["Bench Press"].Rationale != models.RationaleIncrease {
		t.Errorf("bench rationale = %q, want increase", got["Bench Press"].Rationale)
	}
	if got["Back Squat"].Rationale != models.RationaleMaintain {
		t.Errorf("squat rationale = %q, want maintain", got["Back Squat"].Rationale)
	}
}

func TestSuggestAllResolvesClassificationsOnce(t *testing.T) {
	history := &flakyHistory{sessions: map[string][]models.SessionSummary{}}
	resolver := &countingResolver{}
	svc := NewService(resolver, NewEngine(history, Config{}, slog.Default()), slog.Default())

	got := svc.SuggestAll(context.Background(), 1, []string{"A", "B", "C", "D"})

	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1 (batched)", resolver.calls)
	}
	for name, s := range got {
		if s.Rationale != models.RationaleNoHistory {
			t.Errorf("%s rationale = %q, want no_history", name, s.Rationale)
		}
	}
}

func TestSuggestAllEmptyInput(t *testing.T) {
	resolver := &countingResolver{}
	svc := NewService(resolver, NewEngine(&flakyHistory{}, Config{}, slog.Default()), slog.Default())

	got := svc.SuggestAll(context.Background(), 1, nil)
	if len(got) != 0 {
		t.Errorf("results for empty input = %d, want 0", len(got))
	}
	if resolver.calls != 0 {
		t.Errorf("resolver ran for empty input")
	}
}
