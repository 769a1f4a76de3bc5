package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Set is one performed unit of an exercise. Weight is held in kilograms.
// A zero ID means the set has no row yet.
type Set struct {
	t *Tracker

	// create serializes row creation so a set is inserted at most once.
	create sync.Mutex

	mu        sync.Mutex
	id        uuid.UUID
	workoutID uuid.UUID
	reps      int
	weight    float64
	notes     string
	exercise  *Exercise
}

type setState struct {
	id     uuid.UUID
	reps   int
	weight float64
	notes  string
}

// NewSet builds a set from data without touching the store. The weight is
// converted to kilograms from data.Unit. owner may be nil.
func (t *Tracker) NewSet(data models.SetDocument, owner *Exercise) (*Set, error) {
	weight, err := ToKilograms(data.Weight, data.Unit)
	if err != nil {
		return nil, err
	}
	if data.Reps < 0 || weight < 0 {
		return nil, ErrInvalidSet
	}

	s := &Set{
		t:        t,
		reps:     data.Reps,
		weight:   weight,
		notes:    data.Notes,
		exercise: owner,
	}
	if data.ID != nil {
		s.id = *data.ID
	}
	switch {
	case data.WorkoutID != nil:
		s.workoutID = *data.WorkoutID
	case owner != nil:
		s.workoutID = owner.workoutID()
	}
	return s, nil
}

// LoadSet builds a set, reading its values from the store when data carries
// an id. A missing row yields an unsaved set built from data so that it is
// recreated on the next persist.
func (t *Tracker) LoadSet(ctx context.Context, data models.SetDocument, owner *Exercise) (*Set, error) {
	if data.ID == nil || *data.ID == uuid.Nil {
		data.ID = nil
		return t.NewSet(data, owner)
	}

	row, err := t.store.GetSet(ctx, *data.ID)
	if errors.Is(err, models.ErrNotFound) {
		t.log.Warn("set row missing, will recreate", "set_id", *data.ID)
		data.ID = nil
		return t.NewSet(data, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("loading set %s: %w", *data.ID, err)
	}

	s := &Set{
		t:        t,
		id:       row.ID,
		reps:     row.Reps,
		weight:   row.Weight,
		notes:    row.Notes,
		exercise: owner,
	}
	switch {
	case row.WorkoutID.Valid:
		s.workoutID = row.WorkoutID.UUID
	case data.WorkoutID != nil:
		s.workoutID = *data.WorkoutID
	case owner != nil:
		s.workoutID = owner.workoutID()
	}
	return s, nil
}

func (s *Set) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Set) WorkoutID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workoutID
}

func (s *Set) Reps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reps
}

// Weight returns the weight in kilograms.
func (s *Set) Weight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weight
}

func (s *Set) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

// Exercise returns the owning exercise, or nil for a detached set.
func (s *Set) Exercise() *Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise
}

// Volume is reps times kilograms.
func (s *Set) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.reps) * s.weight
}

// SetReps changes the in-memory value only; UpdateDB writes it.
func (s *Set) SetReps(reps int) {
	s.mu.Lock()
	s.reps = reps
	s.mu.Unlock()
}

// SetWeight sets the weight in kilograms.
func (s *Set) SetWeight(kg float64) {
	s.mu.Lock()
	s.weight = kg
	s.mu.Unlock()
}

func (s *Set) SetNotes(notes string) {
	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
}

func (s *Set) snapshot() setState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setState{id: s.id, reps: s.reps, weight: s.weight, notes: s.notes}
}

// attach moves the set under e and adopts the workout id if the set has none.
func (s *Set) attach(e *Exercise) {
	wid := e.workoutID()
	s.mu.Lock()
	s.exercise = e
	if s.workoutID == uuid.Nil {
		s.workoutID = wid
	}
	s.mu.Unlock()
}

func (s *Set) adoptWorkoutID(id uuid.UUID) {
	s.mu.Lock()
	if s.workoutID == uuid.Nil {
		s.workoutID = id
	}
	s.mu.Unlock()
}

// row builds the storage row for the set under the given exercise id.
func (s *Set) row(exerciseID uuid.UUID, userID int) models.SetRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SetRow{
		ID:         s.id,
		WorkoutID:  models.NullID(s.workoutID),
		ExerciseID: models.NullID(exerciseID),
		UserID:     userID,
		Reps:       s.reps,
		Weight:     s.weight,
		Notes:      s.notes,
	}
}

// CreateNewID inserts a row for the set, resolving the owning exercise's
// definition first. If the set already has a row its id is returned.
func (s *Set) CreateNewID(ctx context.Context) (uuid.UUID, error) {
	s.create.Lock()
	defer s.create.Unlock()

	if id := s.ID(); id != uuid.Nil {
		return id, nil
	}
	ex := s.Exercise()
	if ex == nil {
		return uuid.Nil, ErrDetached
	}
	exerciseID, err := ex.ResolveID(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	s.adoptWorkoutID(ex.workoutID())
	id, err := s.t.store.InsertSet(ctx, s.row(exerciseID, ex.userID()))
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting set: %w", err)
	}

	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return id, nil
}

// UpdateDB writes the set's current values, inserting a row if it has none,
// and marks the owning workout dirty.
func (s *Set) UpdateDB(ctx context.Context) error {
	ex := s.Exercise()
	if s.ID() == uuid.Nil {
		if _, err := s.CreateNewID(ctx); err != nil {
			return err
		}
	} else {
		var exerciseID uuid.UUID
		userID := 0
		if ex != nil {
			var err error
			if exerciseID, err = ex.ResolveID(ctx); err != nil {
				return err
			}
			userID = ex.userID()
		}
		row := s.row(exerciseID, userID)
		if err := s.t.store.UpdateSet(ctx, row); err != nil {
			return fmt.Errorf("updating set %s: %w", row.ID, err)
		}
	}

	if ex != nil {
		ex.notify()
	}
	return nil
}

// DeleteFromDB removes the set's row if it has one.
func (s *Set) DeleteFromDB(ctx context.Context) error {
	id := s.ID()
	if id == uuid.Nil {
		return nil
	}
	if err := s.t.store.DeleteSet(ctx, id); err != nil {
		return fmt.Errorf("deleting set %s: %w", id, err)
	}
	return nil
}
