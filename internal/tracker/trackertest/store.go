// Package trackertest provides an in-memory tracker.Store for tests.
package trackertest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store keeps rows in maps and records how often each operation ran.
// The zero value is not usable; call NewStore.
type Store struct {
	mu        sync.Mutex
	sets      map[uuid.UUID]models.SetRow
	exercises map[uuid.UUID]models.ExerciseRow
	aliases   map[string]uuid.UUID
	workouts  map[uuid.UUID]models.WorkoutDocument
	calls     map[string]int
	saved     []models.WorkoutDocument

	// UpdateErr, when set, is returned by UpdateWorkout.
	UpdateErr error
	// FailUpdates makes that many UpdateWorkout calls fail before the store
	// recovers.
	FailUpdates int
	// Gate, when set, blocks UpdateWorkout until a value is received.
	Gate chan struct{}
	// SetErr, when set, is returned by GetSet for any id.
	SetErr error
}

func NewStore() *Store {
	return &Store{
		sets:      make(map[uuid.UUID]models.SetRow),
		exercises: make(map[uuid.UUID]models.ExerciseRow),
		aliases:   make(map[string]uuid.UUID),
		workouts:  make(map[uuid.UUID]models.WorkoutDocument),
		calls:     make(map[string]int),
	}
}

func (s *Store) count(op string) {
	s.calls[op]++
}

// Calls returns how many times op ran, e.g. "UpdateWorkout".
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Saved returns the documents passed to UpdateWorkout, in order.
func (s *Store) Saved() []models.WorkoutDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// Set returns the stored row for id.
func (s *Store) Set(id uuid.UUID) (models.SetRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.sets[id]
	return row, ok
}

// SetCount is the number of stored set rows.
func (s *Store) SetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

// ExerciseCount is the number of exercise definitions.
func (s *Store) ExerciseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exercises)
}

// Workout returns the stored document for id.
func (s *Store) Workout(id uuid.UUID) (models.WorkoutDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.workouts[id]
	return doc, ok
}

// PutSet stores row as is.
func (s *Store) PutSet(row models.SetRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[row.ID] = row
}

// PutWorkout stores doc as is.
func (s *Store) PutWorkout(doc models.WorkoutDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts[doc.WorkoutID] = doc
}

func (s *Store) GetSet(ctx context.Context, id uuid.UUID) (models.SetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("GetSet")
	if s.SetErr != nil {
		return models.SetRow{}, s.SetErr
	}
	row, ok := s.sets[id]
	if !ok {
		return models.SetRow{}, models.ErrNotFound
	}
	return row, nil
}

func (s *Store) InsertSet(ctx context.Context, row models.SetRow) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertSet")
	row.ID = uuid.New()
	s.sets[row.ID] = row
	return row.ID, nil
}

func (s *Store) UpdateSet(ctx context.Context, row models.SetRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdateSet")
	if _, ok := s.sets[row.ID]; !ok {
		return models.ErrNotFound
	}
	s.sets[row.ID] = row
	return nil
}

func (s *Store) DeleteSet(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteSet")
	delete(s.sets, id)
	return nil
}

func (s *Store) DeleteSetsByWorkout(ctx context.Context, workoutID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteSetsByWorkout")
	for id, row := range s.sets {
		if row.WorkoutID.Valid && row.WorkoutID.UUID == workoutID {
			delete(s.sets, id)
		}
	}
	return nil
}

func (s *Store) FindExerciseByAlias(ctx context.Context, alias string) (models.ExerciseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("FindExerciseByAlias")
	id, ok := s.aliases[alias]
	if !ok {
		return models.ExerciseRow{}, models.ErrNotFound
	}
	return s.exercises[id], nil
}

func (s *Store) InsertExercise(ctx context.Context, name string) (models.ExerciseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertExercise")
	alias := strings.ToLower(name)
	if id, ok := s.aliases[alias]; ok {
		return s.exercises[id], nil
	}
	row := models.ExerciseRow{ID: uuid.New(), Name: name}
	s.exercises[row.ID] = row
	s.aliases[alias] = row.ID
	return row, nil
}

func (s *Store) GetWorkout(ctx context.Context, id uuid.UUID) (models.WorkoutDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("GetWorkout")
	doc, ok := s.workouts[id]
	if !ok {
		return models.WorkoutDocument{}, models.ErrNotFound
	}
	return doc, nil
}

func (s *Store) InsertWorkout(ctx context.Context, doc models.WorkoutDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertWorkout")
	s.workouts[doc.WorkoutID] = doc
	return nil
}

func (s *Store) UpdateWorkout(ctx context.Context, doc models.WorkoutDocument) error {
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdateWorkout")
	s.saved = append(s.saved, doc)
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if s.FailUpdates > 0 {
		s.FailUpdates--
		return errors.New("transient store failure")
	}
	if _, ok := s.workouts[doc.WorkoutID]; !ok {
		return models.ErrNotFound
	}
	s.workouts[doc.WorkoutID] = doc
	return nil
}

func (s *Store) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteWorkout")
	delete(s.workouts, id)
	return nil
}

// ListWorkouts returns summaries of the user's workouts starting within
// [start, end), newest first.
func (s *Store) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WorkoutSummary
	for _, doc := range s.workouts {
		if doc.UserID != userID || doc.StartTime.Before(start) || !doc.StartTime.Before(end) {
			continue
		}
		out = append(out, models.WorkoutSummary{
			WorkoutID: doc.WorkoutID,
			UserID:    doc.UserID,
			Title:     doc.Title,
			StartTime: doc.StartTime,
			EndTime:   doc.EndTime,
			Exercises: doc.Exercises,
			Energy:    doc.Energy,
			HeartRate: doc.HeartRate,
			Volume:    doc.Volume,
			SetCount:  doc.SetCount,
		})
	}
	slices.SortFunc(out, func(a, b models.WorkoutSummary) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return out, nil
}

// ExerciseWeightPB returns the heaviest weight recorded for the exercise.
func (s *Store) ExerciseWeightPB(ctx context.Context, exerciseID uuid.UUID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best, found := 0.0, false
	for _, row := range s.sets {
		if row.ExerciseID.Valid && row.ExerciseID.UUID == exerciseID {
			best, found = max(best, row.Weight), true
		}
	}
	if !found {
		return 0, models.ErrNotFound
	}
	return best, nil
}
