// Package ingest turns externally produced workouts (transcriptions and
// CSV exports) into persisted workout aggregates.
package ingest

import "github.com/google/uuid"

// Result holds the outcome of an ingest operation.
type Result struct {
	WorkoutsReceived int         `json:"workouts_received"`
	WorkoutsInserted int         `json:"workouts_inserted"`
	SetsReceived     int         `json:"sets_received"`
	SetsInserted     int         `json:"sets_inserted"`
	WorkoutIDs       []uuid.UUID `json:"workout_ids,omitempty"`

	Message string `json:"message,omitempty"`
}
