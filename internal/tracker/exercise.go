package tracker

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NewExerciseName is the placeholder name of an exercise added empty.
const NewExerciseName = "New Exercise"

// Exercise is a named group of sets within a workout. Its id refers to the
// canonical exercise definition and is resolved lazily from the name.
type Exercise struct {
	t *Tracker

	mu      sync.Mutex
	name    string
	notes   string
	id      uuid.UUID
	sets    []*Set
	workout *Workout
}

type exerciseState struct {
	name  string
	notes string
	id    uuid.UUID
	sets  []setState
}

// NewExercise builds an exercise and its sets. Sets that carry an id are
// read from the store concurrently. When owner is non-nil, sets without a
// row are inserted before returning; the exercise is not added to owner's
// list.
func (t *Tracker) NewExercise(ctx context.Context, data models.ExerciseDocument, owner *Workout) (*Exercise, error) {
	e, err := t.buildExercise(ctx, data)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return e, nil
	}
	e.setWorkout(owner)
	if _, err := e.persistPending(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (t *Tracker) buildExercise(ctx context.Context, data models.ExerciseDocument) (*Exercise, error) {
	sets := make([]*Set, len(data.Sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.SetConcurrency)
	for i, sd := range data.Sets {
		g.Go(func() error {
			s, err := t.LoadSet(gctx, sd, nil)
			if err != nil {
				return err
			}
			sets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building exercise %q: %w", data.Exercise, err)
	}

	e := &Exercise{t: t, name: data.Exercise, notes: data.Notes, sets: sets}
	if data.ID != nil {
		e.id = *data.ID
	}
	for _, s := range sets {
		s.attach(e)
	}
	return e, nil
}

func (e *Exercise) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

func (e *Exercise) Notes() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notes
}

// ID returns the resolved definition id, or uuid.Nil if not resolved yet.
func (e *Exercise) ID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

func (e *Exercise) Workout() *Workout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workout
}

// Sets returns the sets in order. The slice is a copy.
func (e *Exercise) Sets() []*Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.sets)
}

func (e *Exercise) CountSets() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sets)
}

// Volume is the sum of set volumes in kilograms.
func (e *Exercise) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total float64
	for _, s := range e.sets {
		total += s.Volume()
	}
	return total
}

func (e *Exercise) workoutID() uuid.UUID {
	if w := e.Workout(); w != nil {
		return w.ID()
	}
	return uuid.Nil
}

func (e *Exercise) userID() int {
	if w := e.Workout(); w != nil {
		return w.UserID()
	}
	return 0
}

func (e *Exercise) notify() {
	if w := e.Workout(); w != nil {
		w.ChangeMade()
	}
}

func (e *Exercise) setWorkout(w *Workout) {
	e.mu.Lock()
	e.workout = w
	sets := slices.Clone(e.sets)
	e.mu.Unlock()

	if w == nil {
		return
	}
	for _, s := range sets {
		s.adoptWorkoutID(w.ID())
	}
}

func (e *Exercise) snapshot() exerciseState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := exerciseState{name: e.name, notes: e.notes, id: e.id, sets: make([]setState, len(e.sets))}
	for i, s := range e.sets {
		st.sets[i] = s.snapshot()
	}
	return st
}

// ResolveID returns the exercise definition id, resolving the name through
// the tracker's Resolver on first use and adopting the canonical name.
func (e *Exercise) ResolveID(ctx context.Context) (uuid.UUID, error) {
	e.mu.Lock()
	id, name := e.id, e.name
	e.mu.Unlock()
	if id != uuid.Nil {
		return id, nil
	}

	def, err := e.t.resolver.Resolve(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}

	e.mu.Lock()
	// A rename while resolving wins; resolve the new name instead.
	if e.name != name {
		e.mu.Unlock()
		return e.ResolveID(ctx)
	}
	e.id = def.ID
	e.name = def.Name
	e.mu.Unlock()
	return def.ID, nil
}

// persistPending inserts rows for every set without one and reports how
// many were created.
func (e *Exercise) persistPending(ctx context.Context) (int, error) {
	var pending []*Set
	for _, s := range e.Sets() {
		if s.ID() == uuid.Nil {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if _, err := e.ResolveID(ctx); err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.t.opts.SetConcurrency)
	for _, s := range pending {
		g.Go(func() error {
			_, err := s.CreateNewID(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("persisting sets of %q: %w", e.Name(), err)
	}
	return len(pending), nil
}

// AddNewSet appends a set copying the reps, weight and notes of the last set
// (zero values if there is none). The new set's row is inserted before it
// is appended.
func (e *Exercise) AddNewSet(ctx context.Context) (*Set, error) {
	e.mu.Lock()
	var data models.SetDocument
	if n := len(e.sets); n > 0 {
		last := e.sets[n-1].snapshot()
		data = models.SetDocument{Reps: last.reps, Weight: last.weight, Notes: last.notes}
	}
	e.mu.Unlock()

	s, err := e.t.NewSet(data, e)
	if err != nil {
		return nil, err
	}
	if _, err := s.CreateNewID(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.sets = append(e.sets, s)
	e.mu.Unlock()
	e.notify()
	return s, nil
}

// AttachSet takes ownership of a detached set, writes its association to
// the store and appends it. Attaching a set e already lists is a no-op.
func (e *Exercise) AttachSet(ctx context.Context, s *Set) error {
	if owner := s.Exercise(); owner != nil && owner != e {
		return ErrAlreadyOwned
	}
	if e.hasSet(s) {
		return nil
	}
	s.attach(e)
	e.mu.Lock()
	if slices.Contains(e.sets, s) {
		e.mu.Unlock()
		return nil
	}
	e.sets = append(e.sets, s)
	e.mu.Unlock()
	return s.UpdateDB(ctx)
}

func (e *Exercise) hasSet(s *Set) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Contains(e.sets, s)
}

// RemoveSet removes the set at index i. Its row is deleted in the
// background; a failed delete is logged.
func (e *Exercise) RemoveSet(ctx context.Context, i int) error {
	e.mu.Lock()
	if i < 0 || i >= len(e.sets) {
		n := len(e.sets)
		e.mu.Unlock()
		return fmt.Errorf("removing set %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	s := e.sets[i]
	e.sets = slices.Delete(e.sets, i, i+1)
	e.mu.Unlock()

	if id := s.ID(); id != uuid.Nil {
		e.t.goCleanup(ctx, "deleting removed set failed", s.DeleteFromDB, "set_id", id)
	}
	e.notify()
	return nil
}

// RemoveAllSets removes sets from the front until none remain.
func (e *Exercise) RemoveAllSets(ctx context.Context) {
	for e.CountSets() > 0 {
		if err := e.RemoveSet(ctx, 0); err != nil {
			return
		}
	}
}

// SetUpdate lists the set fields to change. Nil fields are left alone.
// Weight is interpreted in Unit.
type SetUpdate struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
	Unit   string   `json:"unit"`
	Notes  *string  `json:"notes"`
}

// UpdateSet applies u to the set at index i and writes it through. Invalid
// input leaves the set unchanged.
func (e *Exercise) UpdateSet(ctx context.Context, i int, u SetUpdate) error {
	var kg float64
	if u.Weight != nil {
		var err error
		if kg, err = ToKilograms(*u.Weight, u.Unit); err != nil {
			return err
		}
		if kg < 0 {
			return ErrInvalidSet
		}
	}
	if u.Reps != nil && *u.Reps < 0 {
		return ErrInvalidSet
	}

	e.mu.Lock()
	if i < 0 || i >= len(e.sets) {
		n := len(e.sets)
		e.mu.Unlock()
		return fmt.Errorf("updating set %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	s := e.sets[i]
	e.mu.Unlock()

	if u.Reps != nil {
		s.SetReps(*u.Reps)
	}
	if u.Weight != nil {
		s.SetWeight(kg)
	}
	if u.Notes != nil {
		s.SetNotes(*u.Notes)
	}
	return s.UpdateDB(ctx)
}

// SetName renames the exercise, resolves the new definition and rewrites
// every set's association.
func (e *Exercise) SetName(ctx context.Context, name string) error {
	e.mu.Lock()
	e.name = name
	e.id = uuid.Nil
	e.mu.Unlock()

	if _, err := e.ResolveID(ctx); err != nil {
		return err
	}
	for _, s := range e.Sets() {
		if err := s.UpdateDB(ctx); err != nil {
			return err
		}
	}
	e.notify()
	return nil
}

func (e *Exercise) SetNotes(notes string) {
	e.mu.Lock()
	e.notes = notes
	e.mu.Unlock()
	e.notify()
}

// ReorderUp swaps the exercise with its predecessor. At the top it does
// nothing.
func (e *Exercise) ReorderUp() error {
	return e.move(-1)
}

// ReorderDown swaps the exercise with its successor. At the bottom it does
// nothing.
func (e *Exercise) ReorderDown() error {
	return e.move(1)
}

func (e *Exercise) move(delta int) error {
	w := e.Workout()
	if w == nil {
		return ErrNotInWorkout
	}
	return w.move(e, delta)
}

// RemoveFromWorkout removes the exercise from its owning workout.
func (e *Exercise) RemoveFromWorkout(ctx context.Context) error {
	w := e.Workout()
	if w == nil {
		return ErrNotInWorkout
	}
	return w.removeExercise(ctx, e)
}
