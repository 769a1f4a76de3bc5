package tracker

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the tracker writes through. Lookups that match
// no row return an error wrapping models.ErrNotFound.
type Store interface {
	GetSet(ctx context.Context, id uuid.UUID) (models.SetRow, error)
	InsertSet(ctx context.Context, row models.SetRow) (uuid.UUID, error)
	UpdateSet(ctx context.Context, row models.SetRow) error
	DeleteSet(ctx context.Context, id uuid.UUID) error
	DeleteSetsByWorkout(ctx context.Context, workoutID uuid.UUID) error

	FindExerciseByAlias(ctx context.Context, alias string) (models.ExerciseRow, error)
	InsertExercise(ctx context.Context, name string) (models.ExerciseRow, error)

	GetWorkout(ctx context.Context, id uuid.UUID) (models.WorkoutDocument, error)
	InsertWorkout(ctx context.Context, doc models.WorkoutDocument) error
	UpdateWorkout(ctx context.Context, doc models.WorkoutDocument) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
}
