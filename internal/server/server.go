// Package server exposes workouts over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Catalog answers read-only queries across workouts.
type Catalog interface {
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error)
	ListExercises(ctx context.Context) ([]models.ExerciseRow, error)
	ExerciseWeightPB(ctx context.Context, exerciseID uuid.UUID) (float64, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Tracker  *tracker.Tracker
	Registry *tracker.Registry
	Pipeline *ingest.Pipeline
	Alpha    *alpha.Provider
	Catalog  Catalog
	Users    UserStore
	APIKey   string
	Log      *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	registry *tracker.Registry
	pipeline *ingest.Pipeline
	alpha    *alpha.Provider
	catalog  Catalog
	users    UserStore
	log      *slog.Logger
	apiKey   string
	router   chi.Router

	whois WhoIser
	mcp   http.Handler
}

// New creates a new Server with all routes configured.
func New(d Deps) *Server {
	s := &Server{
		tracker:  d.Tracker,
		registry: d.Registry,
		pipeline: d.Pipeline,
		alpha:    d.Alpha,
		catalog:  d.Catalog,
		users:    d.Users,
		log:      d.Log,
		apiKey:   d.APIKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity from the dev user to tailnet users.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

// SetMCP mounts an MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.users, s.log)(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/transcription", s.handleTranscriptionIngest)
		r.Post("/alpha", s.handleAlphaIngest)
	})

	s.router.Get("/api/v1/me", s.handleMe)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Post("/", s.handleCreateWorkout)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWorkout)
			r.Patch("/", s.handlePatchWorkout)
			r.Delete("/", s.handleDeleteWorkout)
			r.Post("/exercises", s.handleAddExercise)
			r.Route("/exercises/{ex}", func(r chi.Router) {
				r.Patch("/", s.handlePatchExercise)
				r.Delete("/", s.handleRemoveExercise)
				r.Post("/move", s.handleMoveExercise)
				r.Post("/sets", s.handleAddSet)
				r.Patch("/sets/{set}", s.handlePatchSet)
				r.Delete("/sets/{set}", s.handleRemoveSet)
			})
		})
	})

	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}/pb", s.handleExercisePB)

	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/stats/histogram", s.handleHistogram)
	s.router.Get("/api/v1/stats/summary", s.handleTrainingSummary)
	s.router.Get("/api/v1/stats/overview", s.handleDataOverview)
	s.router.Get("/api/v1/imports", s.handleImportLogs)

	s.router.Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.mcp == nil {
			http.NotFound(w, r)
			return
		}
		s.mcp.ServeHTTP(w, r)
	}))
}
