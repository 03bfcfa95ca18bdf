package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/builtbymaxim/pulselift/internal/ingest"
	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/builtbymaxim/pulselift/internal/storage"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
	"tailscale.com/client/tailscale/apitype"
)

// Ingester accepts set batches. *ingest.Provider satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, userID int, batch *models.SetBatch) (*ingest.Result, error)
}

// Suggester serves batch weight suggestions. *progression.Service satisfies it.
type Suggester interface {
	SuggestAll(ctx context.Context, userID int, exerciseNames []string) map[string]models.Suggestion
}

// Datastore is the read side the handlers need. *storage.DB satisfies it.
type Datastore interface {
	QueryPersonalRecords(ctx context.Context, userID int, exercise *models.ExerciseRef) ([]models.PersonalRecord, error)
	QueryExercises(ctx context.Context, category, equipment, search string) ([]models.Exercise, error)
	SessionSummaries(ctx context.Context, userID int, exercise models.ExerciseRef, limit int) ([]models.SessionSummary, error)
	GetVolumeStats(ctx context.Context, userID int, start, end time.Time) (*storage.VolumeStats, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// whoisClient is the slice of the tsnet local client the identity
// middleware uses.
type whoisClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Datastore
	ingest  Ingester
	suggest Suggester
	log     *slog.Logger
	apiKey  string
	whois   whoisClient
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Datastore, ingester Ingester, suggester Suggester, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		ingest:  ingester,
		suggest: suggester,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution to tsnet whois lookups.
func (s *Server) SetTailscale(lc *local.Client) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoint (API key required on top of identity)
	s.router.Route("/api/v1/sets", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	s.router.Get("/api/v1/suggestions", s.handleSuggestions)
	s.router.Get("/api/v1/records", s.handleRecords)
	s.router.Get("/api/v1/exercises", s.handleExercises)
	s.router.Get("/api/v1/sessions", s.handleSessions)
	s.router.Get("/api/v1/training/volume", s.handleVolume)
	s.router.Get("/api/v1/me", s.handleMe)
}
