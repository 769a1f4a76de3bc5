package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutDetail is a workout rendered with every set's values, as served to
// clients.
type WorkoutDetail struct {
	ID             uuid.UUID        `json:"workout_id"`
	Title          string           `json:"title"`
	Notes          string           `json:"notes,omitempty"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	CreatedAt      time.Time        `json:"created_at"`
	Duration       string           `json:"duration"`
	Energy         *float64         `json:"energy"`
	HeartRate      *float64         `json:"heart_rate"`
	Volume         float64          `json:"volume"`
	SetCount       int              `json:"set_count"`
	Exercises      []ExerciseDetail `json:"exercises"`
	UnsavedChanges int              `json:"unsaved_changes"`
	Saving         bool             `json:"saving"`
}

type ExerciseDetail struct {
	ID     *uuid.UUID  `json:"id"`
	Name   string      `json:"name"`
	Notes  string      `json:"notes,omitempty"`
	Volume float64     `json:"volume"`
	Sets   []SetDetail `json:"sets"`
}

type SetDetail struct {
	ID     *uuid.UUID `json:"id"`
	Reps   int        `json:"reps"`
	Weight float64    `json:"weight"`
	Unit   string     `json:"unit"`
	Notes  string     `json:"notes,omitempty"`
	Volume float64    `json:"volume"`
}
