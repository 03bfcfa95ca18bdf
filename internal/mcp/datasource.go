package mcp

import (
	"context"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/builtbymaxim/pulselift/internal/progression"
	"github.com/builtbymaxim/pulselift/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both Local (direct
// database access) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	GetPersonalRecords(ctx context.Context, userID int, exercise *models.ExerciseRef) ([]models.PersonalRecord, error)
	GetSuggestions(ctx context.Context, userID int, exerciseNames []string) (map[string]models.Suggestion, error)
	GetExerciseSessions(ctx context.Context, userID int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error)
	GetVolumeStats(ctx context.Context, userID int, start, end time.Time) (*storage.VolumeStats, error)
	ListExercises(ctx context.Context, category, equipment, search string) ([]models.Exercise, error)
}

// Local serves MCP tools straight from the database and the progression
// service, for deployments where the MCP server runs next to the data.
type Local struct {
	db      *storage.DB
	suggest *progression.Service
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(db *storage.DB, suggest *progression.Service) *Local {
	return &Local{db: db, suggest: suggest}
}

func (l *Local) GetPersonalRecords(ctx context.Context, userID int, exercise *models.ExerciseRef) ([]models.PersonalRecord, error) {
	return l.db.QueryPersonalRecords(ctx, userID, exercise)
}

func (l *Local) GetSuggestions(ctx context.Context, userID int, exerciseNames []string) (map[string]models.Suggestion, error) {
	return l.suggest.SuggestAll(ctx, userID, exerciseNames), nil
}

func (l *Local) GetExerciseSessions(ctx context.Context, userID int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error) {
	return l.db.SessionSummaries(ctx, userID, exercise, limit)
}

func (l *Local) GetVolumeStats(ctx context.Context, userID int, start, end time.Time) (*storage.VolumeStats, error) {
	return l.db.GetVolumeStats(ctx, userID, start, end)
}

func (l *Local) ListExercises(ctx context.Context, category, equipment, search string) ([]models.Exercise, error) {
	return l.db.QueryExercises(ctx, category, equipment, search)
}
