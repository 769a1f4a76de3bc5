package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Registry keeps one live Workout per id so that concurrent requests
// mutate the same aggregate.
type Registry struct {
	t *Tracker

	mu    sync.Mutex
	live  map[uuid.UUID]*Workout
	loads singleflight.Group
}

// NewRegistry creates an empty Registry loading through t.
func NewRegistry(t *Tracker) *Registry {
	return &Registry{t: t, live: make(map[uuid.UUID]*Workout)}
}

// Get returns the live workout, loading it from the store on first use.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Workout, error) {
	r.mu.Lock()
	w, ok := r.live[id]
	r.mu.Unlock()
	if ok {
		return w, nil
	}

	v, err, _ := r.loads.Do(id.String(), func() (any, error) {
		w, err := r.t.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.live[id]; ok {
			return existing, nil
		}
		r.live[id] = w
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workout), nil
}

// Put registers a workout created elsewhere.
func (r *Registry) Put(w *Workout) {
	r.mu.Lock()
	r.live[w.ID()] = w
	r.mu.Unlock()
}

// Forget drops the workout from the registry.
func (r *Registry) Forget(id uuid.UUID) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}

// Len is the number of live workouts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Close waits for every live workout's pending writes, then closes the
// tracker so no further background work starts.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	live := make([]*Workout, 0, len(r.live))
	for _, w := range r.live {
		live = append(live, w)
	}
	r.mu.Unlock()

	var errs []error
	for _, w := range live {
		if err := w.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.t.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
