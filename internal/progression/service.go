package progression

import (
	"context"
	"log/slog"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// ClassificationResolver batch-resolves exercise classifications.
// *exercises.Classifier satisfies it.
type ClassificationResolver interface {
	ResolveAll(ctx context.Context, refs []models.ExerciseRef) (map[string]models.Classification, error)
}

// Service is the batch suggestion façade used to pre-fill a workout before
// it starts: one suggestion per requested exercise name. Pure orchestration,
// no state of its own.
type Service struct {
	classifier ClassificationResolver
	engine     *Engine
	log        *slog.Logger
}

// NewService creates a Service over the given classifier and engine.
func NewService(classifier ClassificationResolver, engine *Engine, log *slog.Logger) *Service {
	return &Service{classifier: classifier, engine: engine, log: log}
}

// SuggestAll returns a suggestion per exercise name. Classification is
// resolved once for the whole batch. One exercise's history failure does not
// fail the batch: the failed entry is omitted and logged, the rest returned.
func (s *Service) SuggestAll(ctx context.Context, userID int, exerciseNames []string) map[string]models.Suggestion {
	if len(exerciseNames) == 0 {
		return map[string]models.Suggestion{}
	}

	refs := make([]models.ExerciseRef, 0, len(exerciseNames))
	for _, name := range exerciseNames {
		refs = append(refs, models.RefByName(name))
	}

	classifications, err := s.classifier.ResolveAll(ctx, refs)
	if err != nil {
		// Suggestions degrade rather than fail: unclassified exercises get
		// the default treatment.
		s.log.Warn("classification lookup failed, using defaults", "error", err)
		classifications = map[string]models.Classification{}
	}

	out := make(map[string]models.Suggestion, len(exerciseNames))
	for _, name := range exerciseNames {
		ref := models.RefByName(name)
		cls, ok := classifications[ref.Key()]
		if !ok {
			cls = models.DefaultClassification
		}

		suggestion, err := s.engine.Suggest(ctx, userID, ref, cls)
		if err != nil {
			s.log.Warn("suggestion failed", "exercise", name, "error", err)
			continue
		}
		out[name] = suggestion
	}
	return out
}
