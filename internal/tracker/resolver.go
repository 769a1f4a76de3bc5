package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"golang.org/x/sync/singleflight"
)

// Resolver maps free-form exercise names to canonical exercise definitions,
// creating a definition the first time a name is seen. Concurrent lookups
// of the same name share one store round trip.
type Resolver struct {
	store   Store
	log     *slog.Logger
	timeout time.Duration
	group   singleflight.Group
}

// NewResolver creates a Resolver backed by store. A shared lookup is
// bounded by timeout rather than by any one caller's context.
func NewResolver(store Store, logger *slog.Logger, timeout time.Duration) *Resolver {
	return &Resolver{store: store, log: logger, timeout: timeout}
}

// NormalizeName returns the alias key for an exercise name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the definition for name, matching case-insensitively.
func (r *Resolver) Resolve(ctx context.Context, name string) (models.ExerciseRow, error) {
	alias := NormalizeName(name)
	if alias == "" {
		return models.ExerciseRow{}, ErrEmptyName
	}

	ch := r.group.DoChan(alias, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		row, err := r.store.FindExerciseByAlias(ctx, alias)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("looking up exercise %q: %w", alias, err)
		}

		row, err = r.store.InsertExercise(ctx, strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("creating exercise %q: %w", alias, err)
		}
		r.log.Info("created exercise definition", "name", row.Name, "exercise_id", row.ID)
		return row, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return models.ExerciseRow{}, res.Err
		}
		return res.Val.(models.ExerciseRow), nil
	case <-ctx.Done():
		return models.ExerciseRow{}, ctx.Err()
	}
}
