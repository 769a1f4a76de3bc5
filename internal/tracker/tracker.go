// Package tracker holds the live workout aggregate: workouts own exercises,
// exercises own sets, and every mutation is written through to the Store.
// Set rows are written immediately; the workout document is saved by a
// coalescing background writer.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Options tunes persistence behaviour.
type Options struct {
	// SaveTimeout bounds a single store call made in the background.
	SaveTimeout time.Duration
	// SaveRetries is how many times a failed document write is retried.
	SaveRetries int
	// RetryBackoff is the delay before the first retry; it doubles per attempt.
	// Pending retries are abandoned when Close gives up waiting.
	RetryBackoff time.Duration
	// SetConcurrency caps concurrent set loads and inserts per exercise.
	SetConcurrency int
}

func (o Options) withDefaults() Options {
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = 10 * time.Second
	}
	if o.SaveRetries < 0 {
		o.SaveRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
	if o.SetConcurrency <= 0 {
		o.SetConcurrency = 8
	}
	return o
}

// Tracker builds workouts and carries the dependencies they share.
type Tracker struct {
	store    Store
	resolver *Resolver
	log      *slog.Logger
	opts     Options

	// stop cancels retry backoff once Close stops waiting.
	stop    context.Context
	abandon context.CancelFunc

	bgMu   sync.Mutex
	active int
	idle   chan struct{}
	closed bool
}

// New creates a Tracker writing through store.
func New(store Store, logger *slog.Logger, opts Options) *Tracker {
	opts = opts.withDefaults()
	stop, abandon := context.WithCancel(context.Background())
	return &Tracker{
		store:    store,
		resolver: NewResolver(store, logger, opts.SaveTimeout),
		log:      logger,
		opts:     opts,
		stop:     stop,
		abandon:  abandon,
	}
}

// Resolver returns the exercise name resolver shared by this tracker.
func (t *Tracker) Resolver() *Resolver {
	return t.resolver
}

// Drain waits until no background save or deletion is running.
func (t *Tracker) Drain(ctx context.Context) error {
	t.bgMu.Lock()
	if t.active == 0 {
		t.bgMu.Unlock()
		return nil
	}
	idle := t.idle
	t.bgMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close refuses new background work and drains what is running. If ctx
// ends first, pending retries are abandoned.
func (t *Tracker) Close(ctx context.Context) error {
	t.bgMu.Lock()
	t.closed = true
	t.bgMu.Unlock()

	if err := t.Drain(ctx); err != nil {
		t.abandon()
		return err
	}
	t.abandon()
	return nil
}

// goBackground runs fn on its own goroutine and tracks it for Drain. It
// reports false, without running fn, once the tracker is closed.
func (t *Tracker) goBackground(fn func()) bool {
	t.bgMu.Lock()
	if t.closed {
		t.bgMu.Unlock()
		return false
	}
	if t.active == 0 {
		t.idle = make(chan struct{})
	}
	t.active++
	t.bgMu.Unlock()

	go func() {
		defer t.backgroundDone()
		fn()
	}()
	return true
}

func (t *Tracker) backgroundDone() {
	t.bgMu.Lock()
	defer t.bgMu.Unlock()
	t.active--
	if t.active == 0 {
		close(t.idle)
	}
}

// goCleanup runs fn in the background with a bounded context detached from
// the caller's cancellation. Failures are logged, not returned.
func (t *Tracker) goCleanup(ctx context.Context, msg string, fn func(context.Context) error, attrs ...any) {
	started := t.goBackground(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.opts.SaveTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			t.log.Warn(msg, append(attrs, "error", err)...)
		}
	})
	if !started {
		t.log.Warn(msg, append(attrs, "error", ErrClosed)...)
	}
}
