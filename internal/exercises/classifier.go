// Package exercises maps exercise identities to the classifications the
// record detector and progression engine need: body region and input type.
package exercises

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/google/uuid"
)

// Library is the lookup side of the exercise library. *storage.DB satisfies it.
type Library interface {
	// LookupClassifications resolves library exercises by ID and by
	// case-insensitive name in a single round trip. The result is keyed
	// by models.ExerciseRef.Key.
	LookupClassifications(ctx context.Context, ids []uuid.UUID, names []string) (map[string]models.Classification, error)
}

// Classifier resolves exercise classifications. Lookups are batched: one
// library query per incoming request, never one per set.
type Classifier struct {
	lib Library
	log *slog.Logger
}

// New creates a Classifier backed by the given library.
func New(lib Library, log *slog.Logger) *Classifier {
	return &Classifier{lib: lib, log: log}
}

// ResolveAll classifies every distinct exercise referenced by refs. Exercises
// absent from the library fall back to name-pattern matching, then to the
// weight-and-reps default; an unknown exercise is never an error.
func (c *Classifier) ResolveAll(ctx context.Context, refs []models.ExerciseRef) (map[string]models.Classification, error) {
	var ids []uuid.UUID
	var names []string
	seen := make(map[string]models.ExerciseRef, len(refs))

	for _, ref := range refs {
		key := ref.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = ref
		if ref.ID != nil {
			ids = append(ids, *ref.ID)
		} else {
			names = append(names, key)
		}
	}

	resolved := make(map[string]models.Classification, len(seen))
	if len(ids) > 0 || len(names) > 0 {
		found, err := c.lib.LookupClassifications(ctx, ids, names)
		if err != nil {
			return nil, fmt.Errorf("looking up exercise library: %w", err)
		}
		for key, cls := range found {
			resolved[key] = cls
		}
	}

	for key, ref := range seen {
		if _, ok := resolved[key]; ok {
			continue
		}
		cls := classifyByName(ref.Name)
		c.log.Debug("exercise not in library", "exercise", ref.Display(),
			"body_region", cls.BodyRegion, "input_type", cls.InputType)
		resolved[key] = cls
	}

	return resolved, nil
}

// Resolve classifies a single exercise. Prefer ResolveAll when handling a batch.
func (c *Classifier) Resolve(ctx context.Context, ref models.ExerciseRef) (models.Classification, error) {
	all, err := c.ResolveAll(ctx, []models.ExerciseRef{ref})
	if err != nil {
		return models.DefaultClassification, err
	}
	return all[ref.Key()], nil
}

var (
	repsOnlyRe = regexp.MustCompile(`(?i)push[ -]?up|pull[ -]?up|chin[ -]?up|\bdips?\b|sit[ -]?up|crunch|burpee|leg raise|muscle[ -]?up`)
	timedRe    = regexp.MustCompile(`(?i)\bplank\b|\bhold\b|dead hang|wall sit`)
	cardioRe   = regexp.MustCompile(`(?i)\brun(ning)?\b|\bjog(ging)?\b|\browing\b|\bcycling\b|\bswim(ming)?\b|\bsprints?\b`)
	lowerRe    = regexp.MustCompile(`(?i)squat|deadlift|\blunge\b|leg |calf|\bhip\b|glute|hamstring|\bRDL\b`)
	upperRe    = regexp.MustCompile(`(?i)bench|\bpress\b|\brows?\b|curl|\bpulls?\b|pulldown|pullover|fly\b|raise|pushdown|shrug|pull[ -]?up|chin[ -]?up|push[ -]?up|\bdips?\b`)
)

// classifyByName is the fallback for free-text plan exercises. Recognized
// bodyweight and timed patterns override the weight-and-reps default.
func classifyByName(name string) models.Classification {
	if name == "" {
		return models.DefaultClassification
	}

	cls := models.DefaultClassification
	switch {
	case timedRe.MatchString(name):
		cls.InputType = models.InputTimeOnly
	case repsOnlyRe.MatchString(name):
		cls.InputType = models.InputRepsOnly
	case cardioRe.MatchString(name):
		cls.InputType = models.InputDistanceAndTime
	}

	switch {
	case lowerRe.MatchString(name):
		cls.BodyRegion = models.RegionLower
	case upperRe.MatchString(name):
		cls.BodyRegion = models.RegionUpper
	}

	return cls
}
