package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutDocument is the persisted form of a workout. Its JSON field names
// are the wire contract shared with API clients and stored exercise data.
type WorkoutDocument struct {
	Title         string             `json:"title"`
	WorkoutID     uuid.UUID          `json:"workout_id"`
	UserID        int                `json:"user_id,omitempty"`
	StartTime     time.Time          `json:"start_time"`
	EndTime       time.Time          `json:"end_time"`
	CreatedAt     time.Time          `json:"created_at"`
	Exercises     []string           `json:"exercises"`
	ExercisesFull []ExerciseDocument `json:"exercises_full"`
	Notes         string             `json:"notes"`
	Energy        *float64           `json:"energy"`
	HeartRate     *float64           `json:"heart_rate"`
	Volume        float64            `json:"volume"`
	SetCount      int                `json:"set_count"`
	ExerciseIDs   []uuid.UUID        `json:"exercise_ids"`
	SetIDs        []uuid.UUID        `json:"set_ids"`
}

// ExerciseDocument is one entry of exercises_full.
type ExerciseDocument struct {
	Exercise string        `json:"exercise"`
	Notes    string        `json:"notes"`
	ID       *uuid.UUID    `json:"id"`
	Sets     []SetDocument `json:"sets"`
}

// SetDocument describes a set. Once a set has a row only the id is kept;
// the values live in the sets table.
type SetDocument struct {
	ID        *uuid.UUID `json:"id"`
	WorkoutID *uuid.UUID `json:"workout_id,omitempty"`
	Reps      int        `json:"reps,omitempty"`
	Weight    float64    `json:"weight,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}
