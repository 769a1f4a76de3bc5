package storage

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

var setColumns = []string{"id", "workout_id", "exercise_id", "user_id", "reps", "weight", "notes"}

// GetSet returns the set row with the given id.
func (db *DB) GetSet(ctx context.Context, id uuid.UUID) (models.SetRow, error) {
	query, args, err := psql.Select(setColumns...).
		From("sets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.SetRow{}, mapError(err, "building", "set", id)
	}

	var row models.SetRow
	var workoutID, exerciseID *uuid.UUID
	err = db.Pool.QueryRow(ctx, query, args...).Scan(
		&row.ID, &workoutID, &exerciseID, &row.UserID, &row.Reps, &row.Weight, &row.Notes)
	if err != nil {
		return models.SetRow{}, mapError(err, "getting", "set", id)
	}
	row.WorkoutID = nullFromPtr(workoutID)
	row.ExerciseID = nullFromPtr(exerciseID)
	return row, nil
}

// InsertSet inserts a set row and returns the generated id.
func (db *DB) InsertSet(ctx context.Context, row models.SetRow) (uuid.UUID, error) {
	query, args, err := psql.Insert("sets").
		Columns("workout_id", "exercise_id", "user_id", "reps", "weight", "notes").
		Values(ptrFromNull(row.WorkoutID), ptrFromNull(row.ExerciseID), row.UserID, row.Reps, row.Weight, row.Notes).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, mapError(err, "building", "set", "new")
	}

	var id uuid.UUID
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, mapError(err, "inserting", "set", "new")
	}
	return id, nil
}

// UpdateSet overwrites the values and associations of an existing set.
func (db *DB) UpdateSet(ctx context.Context, row models.SetRow) error {
	query, args, err := psql.Update("sets").
		Set("workout_id", ptrFromNull(row.WorkoutID)).
		Set("exercise_id", ptrFromNull(row.ExerciseID)).
		Set("user_id", row.UserID).
		Set("reps", row.Reps).
		Set("weight", row.Weight).
		Set("notes", row.Notes).
		Where(squirrel.Eq{"id": row.ID}).
		ToSql()
	if err != nil {
		return mapError(err, "building", "set", row.ID)
	}

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "updating", "set", row.ID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(ErrNotFound, "updating", "set", row.ID)
	}
	return nil
}

// DeleteSet deletes a set row. Deleting a missing row is not an error.
func (db *DB) DeleteSet(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("sets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return mapError(err, "building", "set", id)
	}
	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "deleting", "set", id)
	}
	return nil
}

// DeleteSetsByWorkout deletes every set row that belongs to a workout.
func (db *DB) DeleteSetsByWorkout(ctx context.Context, workoutID uuid.UUID) error {
	query, args, err := psql.Delete("sets").Where(squirrel.Eq{"workout_id": workoutID}).ToSql()
	if err != nil {
		return mapError(err, "building", "sets of workout", workoutID)
	}
	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "deleting", "sets of workout", workoutID)
	}
	return nil
}

// ExerciseWeightPB returns the heaviest weight in kilograms ever recorded
// for an exercise definition.
func (db *DB) ExerciseWeightPB(ctx context.Context, exerciseID uuid.UUID) (float64, error) {
	query, args, err := psql.Select("weight").
		From("sets").
		Where(squirrel.Eq{"exercise_id": exerciseID}).
		OrderBy("weight DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, mapError(err, "building", "exercise", exerciseID)
	}

	var weight float64
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&weight); err != nil {
		return 0, mapError(err, "getting weight PB of", "exercise", exerciseID)
	}
	return weight, nil
}

func nullFromPtr(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func ptrFromNull(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	return &id.UUID
}
