package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/claude/liftlog/internal/models"
)

// saver coalesces change notifications into document writes. At most one
// write per workout is in flight; changes that arrive during a write are
// folded into the next one.
type saver struct {
	mu      sync.Mutex
	unsaved int
	saving  bool
	deleted bool
	idle    chan struct{}
}

func (s *saver) markDeleted() {
	s.mu.Lock()
	s.deleted = true
	s.mu.Unlock()
}

// ChangeMade records one unsaved change. If no write is in flight it
// snapshots the workout and starts one; otherwise the change is picked up
// by the running write loop.
func (w *Workout) ChangeMade() {
	w.saver.mu.Lock()
	if w.saver.deleted {
		w.saver.mu.Unlock()
		return
	}
	w.saver.unsaved++
	if w.saver.saving {
		w.saver.mu.Unlock()
		return
	}
	w.saver.saving = true
	w.saver.idle = make(chan struct{})
	n := w.saver.unsaved
	w.saver.mu.Unlock()

	doc := w.Serialize()
	if w.t.goBackground(func() { w.saveLoop(doc, n) }) {
		return
	}

	w.saver.mu.Lock()
	w.saver.saving = false
	close(w.saver.idle)
	w.saver.mu.Unlock()
	w.t.log.Warn("workout changes not saved", "workout_id", w.id, "unsaved", n, "error", ErrClosed)
}

func (w *Workout) saveLoop(doc models.WorkoutDocument, n int) {
	for {
		w.write(doc)

		w.saver.mu.Lock()
		w.saver.unsaved -= n
		if w.saver.unsaved == 0 {
			w.saver.saving = false
			close(w.saver.idle)
			w.saver.mu.Unlock()
			return
		}
		n = w.saver.unsaved
		w.saver.mu.Unlock()

		doc = w.Serialize()
	}
}

// write stores doc, retrying with exponential backoff. A write that still
// fails is logged and its changes are considered handled.
func (w *Workout) write(doc models.WorkoutDocument) {
	opts := w.t.opts
	attempt := 0
	op := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), opts.SaveTimeout)
		defer cancel()
		return w.t.store.UpdateWorkout(ctx, doc)
	}
	notify := func(err error, next time.Duration) {
		w.t.log.Warn("saving workout failed", "workout_id", w.id, "attempt", attempt, "retry_in", next, "error", err)
	}
	if err := backoff.RetryNotify(op, w.t.retryPolicy(), notify); err != nil {
		w.t.log.Error("workout changes dropped", "workout_id", w.id, "attempts", attempt, "error", err)
	}
}

// retryPolicy doubles RetryBackoff per attempt, gives up after SaveRetries
// retries and stops sleeping once the tracker abandons pending work.
func (t *Tracker) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.opts.RetryBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(t.opts.SaveRetries)), t.stop)
}

// Saving reports whether a document write is in flight.
func (w *Workout) Saving() bool {
	w.saver.mu.Lock()
	defer w.saver.mu.Unlock()
	return w.saver.saving
}

// UnsavedChanges is the number of changes not yet covered by a finished
// write.
func (w *Workout) UnsavedChanges() int {
	w.saver.mu.Lock()
	defer w.saver.mu.Unlock()
	return w.saver.unsaved
}

// Wait blocks until no write is in flight.
func (w *Workout) Wait(ctx context.Context) error {
	w.saver.mu.Lock()
	if !w.saver.saving {
		w.saver.mu.Unlock()
		return nil
	}
	idle := w.saver.idle
	w.saver.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
