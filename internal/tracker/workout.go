package tracker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Workout is the root of the aggregate. Lock order is workout, then
// exercise, then set; ChangeMade is never called with any of them held.
type Workout struct {
	t      *Tracker
	id     uuid.UUID
	userID int

	mu        sync.Mutex
	title     string
	start     time.Time
	end       time.Time
	createdAt time.Time
	notes     string
	energy    *float64
	heartRate *float64
	exercises []*Exercise

	saver saver
}

// NewWorkout builds a workout from a stored or freshly created document.
// Exercises are built concurrently and nothing is written; call
// PersistPending to insert rows for new sets.
func (t *Tracker) NewWorkout(ctx context.Context, doc models.WorkoutDocument) (*Workout, error) {
	exercises := make([]*Exercise, len(doc.ExercisesFull))
	g, gctx := errgroup.WithContext(ctx)
	for i, ed := range doc.ExercisesFull {
		g.Go(func() error {
			e, err := t.buildExercise(gctx, ed)
			if err != nil {
				return err
			}
			exercises[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w := &Workout{
		t:         t,
		id:        doc.WorkoutID,
		userID:    doc.UserID,
		title:     doc.Title,
		start:     doc.StartTime,
		end:       doc.EndTime,
		createdAt: doc.CreatedAt,
		notes:     doc.Notes,
		energy:    copyFloat(doc.Energy),
		heartRate: copyFloat(doc.HeartRate),
		exercises: exercises,
	}
	if w.id == uuid.Nil {
		w.id = uuid.New()
	}
	if w.createdAt.IsZero() {
		w.createdAt = time.Now()
	}
	for _, e := range exercises {
		e.setWorkout(w)
	}
	return w, nil
}

// Create builds a workout, inserts its row and then rows for all of its
// sets. It returns once the document carrying the set ids has been saved.
func (t *Tracker) Create(ctx context.Context, doc models.WorkoutDocument) (*Workout, error) {
	w, err := t.NewWorkout(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := t.store.InsertWorkout(ctx, w.Serialize()); err != nil {
		return nil, fmt.Errorf("inserting workout %s: %w", w.id, err)
	}
	if _, err := w.PersistPending(ctx); err != nil {
		return nil, err
	}
	if err := w.Wait(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Load reads a workout document and rebuilds the aggregate. Sets missing
// from the store are recreated and the document is saved with their ids.
func (t *Tracker) Load(ctx context.Context, id uuid.UUID) (*Workout, error) {
	doc, err := t.store.GetWorkout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", id, err)
	}
	w, err := t.NewWorkout(ctx, doc)
	if err != nil {
		return nil, err
	}
	if _, err := w.PersistPending(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (w *Workout) ID() uuid.UUID { return w.id }

func (w *Workout) UserID() int { return w.userID }

func (w *Workout) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *Workout) Notes() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notes
}

func (w *Workout) StartTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.start
}

func (w *Workout) EndTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.end
}

func (w *Workout) CreatedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.createdAt
}

// Energy returns active energy in kilojoules, or nil if unknown.
func (w *Workout) Energy() *float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyFloat(w.energy)
}

// HeartRate returns the average heart rate in bpm, or nil if unknown.
func (w *Workout) HeartRate() *float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyFloat(w.heartRate)
}

// Exercises returns the exercises in order. The slice is a copy.
func (w *Workout) Exercises() []*Exercise {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.exercises)
}

// Exercise returns the exercise at index i.
func (w *Workout) Exercise(i int) (*Exercise, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.exercises) {
		return nil, fmt.Errorf("exercise %d of %d: %w", i, len(w.exercises), ErrIndexOutOfRange)
	}
	return w.exercises[i], nil
}

// Duration is end minus start; it is negative if end precedes start.
func (w *Workout) Duration() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.end.Sub(w.start)
}

func (w *Workout) DurationString() string {
	return FormatDuration(w.Duration())
}

// Volume is the total kilograms lifted across all sets.
func (w *Workout) Volume() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total float64
	for _, e := range w.exercises {
		total += e.Volume()
	}
	return total
}

func (w *Workout) CountExercises() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.exercises)
}

func (w *Workout) CountSets() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, e := range w.exercises {
		n += e.CountSets()
	}
	return n
}

// Item reports metric m for this workout in the same units as SummaryItem.
func (w *Workout) Item(m Metric) float64 {
	switch m {
	case MetricWorkouts:
		return 1
	case MetricDuration:
		return w.Duration().Seconds()
	case MetricEnergy:
		if e := w.Energy(); e != nil {
			return *e
		}
		return 0
	case MetricVolume:
		return w.Volume()
	}
	return 0
}

func (w *Workout) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	w.ChangeMade()
}

func (w *Workout) SetNotes(notes string) {
	w.mu.Lock()
	w.notes = notes
	w.mu.Unlock()
	w.ChangeMade()
}

func (w *Workout) SetStartTime(t time.Time) {
	w.mu.Lock()
	w.start = t
	w.mu.Unlock()
	w.ChangeMade()
}

func (w *Workout) SetEndTime(t time.Time) {
	w.mu.Lock()
	w.end = t
	w.mu.Unlock()
	w.ChangeMade()
}

func (w *Workout) SetEnergy(kj *float64) {
	w.mu.Lock()
	w.energy = copyFloat(kj)
	w.mu.Unlock()
	w.ChangeMade()
}

func (w *Workout) SetHeartRate(bpm *float64) {
	w.mu.Lock()
	w.heartRate = copyFloat(bpm)
	w.mu.Unlock()
	w.ChangeMade()
}

// SetExercises replaces the exercise list and takes ownership of each entry.
func (w *Workout) SetExercises(list []*Exercise) {
	list = slices.Clone(list)
	w.mu.Lock()
	w.exercises = list
	w.mu.Unlock()
	for _, e := range list {
		e.setWorkout(w)
	}
	w.ChangeMade()
}

// AddEmptyExercise appends an exercise named NewExerciseName with no sets.
func (w *Workout) AddEmptyExercise() *Exercise {
	e := &Exercise{t: w.t, name: NewExerciseName, workout: w}
	w.mu.Lock()
	w.exercises = append(w.exercises, e)
	w.mu.Unlock()
	w.ChangeMade()
	return e
}

// RemoveExercise removes the exercise at index i and all of its sets.
func (w *Workout) RemoveExercise(ctx context.Context, i int) error {
	w.mu.Lock()
	if i < 0 || i >= len(w.exercises) {
		n := len(w.exercises)
		w.mu.Unlock()
		return fmt.Errorf("removing exercise %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	e := w.exercises[i]
	w.exercises = slices.Delete(w.exercises, i, i+1)
	w.mu.Unlock()

	w.detach(ctx, e)
	return nil
}

func (w *Workout) removeExercise(ctx context.Context, e *Exercise) error {
	w.mu.Lock()
	i := slices.Index(w.exercises, e)
	if i < 0 {
		w.mu.Unlock()
		return ErrNotInWorkout
	}
	w.exercises = slices.Delete(w.exercises, i, i+1)
	w.mu.Unlock()

	w.detach(ctx, e)
	return nil
}

func (w *Workout) detach(ctx context.Context, e *Exercise) {
	e.RemoveAllSets(ctx)
	e.setWorkout(nil)
	w.ChangeMade()
}

// move swaps e with the neighbour delta positions away. Moving past either
// end is a no-op and does not mark the workout dirty.
func (w *Workout) move(e *Exercise, delta int) error {
	w.mu.Lock()
	i := slices.Index(w.exercises, e)
	if i < 0 {
		w.mu.Unlock()
		return ErrNotInWorkout
	}
	j := i + delta
	if j < 0 || j >= len(w.exercises) {
		w.mu.Unlock()
		return nil
	}
	reordered := slices.Clone(w.exercises)
	reordered[i], reordered[j] = reordered[j], reordered[i]
	w.exercises = reordered
	w.mu.Unlock()

	w.ChangeMade()
	return nil
}

// PersistPending inserts rows for every set that has none. If any were
// created the workout is marked dirty so the document picks up their ids.
func (w *Workout) PersistPending(ctx context.Context) (int, error) {
	exercises := w.Exercises()
	counts := make([]int, len(exercises))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range exercises {
		g.Go(func() error {
			n, err := e.persistPending(gctx)
			counts[i] = n
			return err
		})
	}
	err := g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		w.ChangeMade()
	}
	if err != nil {
		return total, fmt.Errorf("persisting workout %s: %w", w.id, err)
	}
	return total, nil
}

// Delete removes the workout row and then every set. Further changes to the
// workout are not saved. Set deletions are best-effort.
func (w *Workout) Delete(ctx context.Context) error {
	w.saver.markDeleted()

	err := w.t.store.DeleteWorkout(ctx, w.id)
	if err != nil {
		w.t.log.Error("deleting workout row", "workout_id", w.id, "error", err)
	}
	for _, e := range w.Exercises() {
		e.RemoveAllSets(ctx)
	}
	w.t.goCleanup(ctx, "deleting workout sets failed", func(ctx context.Context) error {
		return w.t.store.DeleteSetsByWorkout(ctx, w.id)
	}, "workout_id", w.id)

	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", w.id, err)
	}
	return nil
}

// Serialize captures the workout as a document. Sets with a row are reduced
// to their id; the rest carry their values in kilograms.
func (w *Workout) Serialize() models.WorkoutDocument {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc := models.WorkoutDocument{
		Title:         w.title,
		WorkoutID:     w.id,
		UserID:        w.userID,
		StartTime:     w.start.UTC(),
		EndTime:       w.end.UTC(),
		CreatedAt:     w.createdAt.UTC(),
		Exercises:     make([]string, 0, len(w.exercises)),
		ExercisesFull: make([]models.ExerciseDocument, 0, len(w.exercises)),
		Notes:         w.notes,
		Energy:        copyFloat(w.energy),
		HeartRate:     copyFloat(w.heartRate),
		ExerciseIDs:   []uuid.UUID{},
		SetIDs:        []uuid.UUID{},
	}

	seen := make(map[uuid.UUID]bool)
	seenSets := make(map[uuid.UUID]bool)
	for _, e := range w.exercises {
		st := e.snapshot()
		doc.Exercises = append(doc.Exercises, st.name)

		ed := models.ExerciseDocument{
			Exercise: st.name,
			Notes:    st.notes,
			Sets:     make([]models.SetDocument, 0, len(st.sets)),
		}
		if st.id != uuid.Nil {
			id := st.id
			ed.ID = &id
			if !seen[id] {
				seen[id] = true
				doc.ExerciseIDs = append(doc.ExerciseIDs, id)
			}
		}

		for _, ss := range st.sets {
			doc.Volume += float64(ss.reps) * ss.weight
			doc.SetCount++
			if ss.id == uuid.Nil {
				ed.Sets = append(ed.Sets, models.SetDocument{
					Reps:   ss.reps,
					Weight: ss.weight,
					Unit:   UnitKilograms,
					Notes:  ss.notes,
				})
				continue
			}
			id := ss.id
			ed.Sets = append(ed.Sets, models.SetDocument{ID: &id})
			if !seenSets[id] {
				seenSets[id] = true
				doc.SetIDs = append(doc.SetIDs, id)
			}
		}
		doc.ExercisesFull = append(doc.ExercisesFull, ed)
	}
	return doc
}
