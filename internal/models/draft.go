package models

import "time"

// WorkoutDraft is an ingestion-ready workout whose dates are already
// resolved. Set weights are expressed in Unit and converted on build.
type WorkoutDraft struct {
	Title     string
	Notes     string
	StartTime time.Time
	EndTime   time.Time
	Energy    *float64
	HeartRate *float64
	Exercises []DraftExercise
}

// DraftExercise is a named exercise with its sets, in performance order.
type DraftExercise struct {
	Name  string
	Notes string
	Sets  []DraftSet
}

// DraftSet is a set before unit conversion.
type DraftSet struct {
	Reps   int
	Weight float64
	Unit   string
	Notes  string
}

// PartialDate holds the date components a transcription could read. Any
// component may be missing or out of range.
type PartialDate struct {
	Day    *float64 `json:"day"`
	Month  *float64 `json:"month"`
	Year   *float64 `json:"year"`
	Hour   *float64 `json:"hour"`
	Minute *float64 `json:"minute"`
}

// TranscribedWorkout is the structured JSON produced by transcribing a
// workout log.
type TranscribedWorkout struct {
	Title         string                `json:"title"`
	Notes         string                `json:"notes"`
	ExercisesFull []TranscribedExercise `json:"exercises_full"`
	StartTime     PartialDate           `json:"startTime"`
	EndTime       PartialDate           `json:"endTime"`
}

// TranscribedExercise is one exercise of a transcription.
type TranscribedExercise struct {
	Exercise string           `json:"exercise"`
	Sets     []TranscribedSet `json:"sets"`
}

// TranscribedSet is one set of a transcription. Rest is informational.
type TranscribedSet struct {
	Reps   int      `json:"reps"`
	Weight float64  `json:"weight"`
	Unit   string   `json:"unit"`
	Rest   *float64 `json:"rest,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}
