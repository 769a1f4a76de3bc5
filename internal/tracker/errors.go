package tracker

import (
	"errors"

	"github.com/claude/liftlog/internal/models"
)

var (
	// ErrNotFound is returned when a workout, exercise or set row is missing.
	ErrNotFound = models.ErrNotFound

	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownMetric   = errors.New("unknown metric")
	ErrUnsupportedUnit = errors.New("unsupported weight unit")
	ErrInvalidSet      = errors.New("reps and weight must not be negative")
	ErrEmptyName       = errors.New("exercise name is empty")

	// ErrDetached is returned when a set without an owning exercise is asked
	// to persist itself.
	ErrDetached = errors.New("set is not attached to an exercise")

	// ErrNotInWorkout is returned by operations that need the exercise to be
	// listed in its owning workout.
	ErrNotInWorkout = errors.New("exercise is not part of a workout")

	ErrAlreadyOwned = errors.New("set already belongs to an exercise")

	// ErrClosed is reported for background work requested after Close.
	ErrClosed = errors.New("tracker is closed")
)
