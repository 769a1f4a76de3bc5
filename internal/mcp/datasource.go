package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error)
	GetWorkoutDetail(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutDetail, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	ListExercises(ctx context.Context) ([]models.ExerciseRow, error)
}

// Catalog is the read-only query side of storage.
type Catalog interface {
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	ListExercises(ctx context.Context) ([]models.ExerciseRow, error)
}

// Compile-time check: *storage.DB satisfies Catalog.
var _ Catalog = (*storage.DB)(nil)

// Local serves queries from storage and workout details from the live
// registry shared with the HTTP API.
type Local struct {
	Catalog
	registry *tracker.Registry
}

// NewLocal creates an in-process data source.
func NewLocal(c Catalog, r *tracker.Registry) *Local {
	return &Local{Catalog: c, registry: r}
}

// GetWorkoutDetail renders a workout owned by userID.
func (l *Local) GetWorkoutDetail(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutDetail, error) {
	w, err := l.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID() != userID {
		return nil, fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	d := w.Detail()
	return &d, nil
}
