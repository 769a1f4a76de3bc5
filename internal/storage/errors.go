package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound aliases the shared sentinel so callers need not import models.
	ErrNotFound = models.ErrNotFound

	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRow    = errors.New("row violates a constraint")
)

// mapError wraps err with the operation and row it concerns and translates
// pgx errors into package sentinels.
func mapError(err error, op, kind string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s %v: %w", op, kind, id, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s %v: %w", op, kind, id, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s %v: %w", op, kind, id, ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s %v: %w", op, kind, id, ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s %v: %w", op, kind, id, ErrInvalidRow)
		}
	}
	return fmt.Errorf("%s %s %v: %w", op, kind, id, err)
}
