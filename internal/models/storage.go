package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by storage lookups that match no row.
var ErrNotFound = errors.New("not found")

// SetRow is a row of the sets table. Weight is stored in kilograms.
type SetRow struct {
	ID         uuid.UUID
	WorkoutID  uuid.NullUUID
	ExerciseID uuid.NullUUID
	UserID     int
	Reps       int
	Weight     float64
	Notes      string
}

// ExerciseRow is a canonical exercise definition.
type ExerciseRow struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// WorkoutSummary is the listing view of a stored workout, without the
// per-exercise document.
type WorkoutSummary struct {
	WorkoutID uuid.UUID `json:"workout_id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Exercises []string  `json:"exercises"`
	Energy    *float64  `json:"energy"`
	HeartRate *float64  `json:"heart_rate"`
	Volume    float64   `json:"volume"`
	SetCount  int       `json:"set_count"`
}

// NullID converts a possibly-nil id into a nullable column value.
func NullID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
