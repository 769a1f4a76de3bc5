package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// workoutValues maps a document to its column values.
func workoutValues(doc models.WorkoutDocument) (map[string]any, error) {
	full, err := json.Marshal(nonNil(doc.ExercisesFull))
	if err != nil {
		return nil, fmt.Errorf("encoding exercises of workout %s: %w", doc.WorkoutID, err)
	}
	return map[string]any{
		"title":          doc.Title,
		"start_time":     doc.StartTime,
		"end_time":       doc.EndTime,
		"notes":          doc.Notes,
		"energy":         doc.Energy,
		"heart_rate":     doc.HeartRate,
		"volume":         doc.Volume,
		"set_count":      doc.SetCount,
		"exercises":      nonNil(doc.Exercises),
		"exercises_full": full,
		"exercise_ids":   nonNil(doc.ExerciseIDs),
		"set_ids":        nonNil(doc.SetIDs),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// InsertWorkout inserts a new workout row from its document.
func (db *DB) InsertWorkout(ctx context.Context, doc models.WorkoutDocument) error {
	values, err := workoutValues(doc)
	if err != nil {
		return err
	}
	values["workout_id"] = doc.WorkoutID
	values["user_id"] = doc.UserID
	values["created_at"] = doc.CreatedAt

	query, args, err := psql.Insert("workouts").SetMap(values).ToSql()
	if err != nil {
		return mapError(err, "building", "workout", doc.WorkoutID)
	}
	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "inserting", "workout", doc.WorkoutID)
	}
	return nil
}

// UpdateWorkout overwrites the mutable columns of a workout row.
func (db *DB) UpdateWorkout(ctx context.Context, doc models.WorkoutDocument) error {
	values, err := workoutValues(doc)
	if err != nil {
		return err
	}

	query, args, err := psql.Update("workouts").
		SetMap(values).
		Where(squirrel.Eq{"workout_id": doc.WorkoutID}).
		ToSql()
	if err != nil {
		return mapError(err, "building", "workout", doc.WorkoutID)
	}

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "updating", "workout", doc.WorkoutID)
	}
	if tag.RowsAffected() == 0 {
		return mapError(ErrNotFound, "updating", "workout", doc.WorkoutID)
	}
	return nil
}

// GetWorkout returns the stored document of a workout.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (models.WorkoutDocument, error) {
	query, args, err := psql.Select(
		"workout_id", "user_id", "title", "start_time", "end_time", "created_at", "notes",
		"energy", "heart_rate", "volume", "set_count", "exercises", "exercises_full").
		From("workouts").
		Where(squirrel.Eq{"workout_id": id}).
		ToSql()
	if err != nil {
		return models.WorkoutDocument{}, mapError(err, "building", "workout", id)
	}

	var doc models.WorkoutDocument
	var full []byte
	err = db.Pool.QueryRow(ctx, query, args...).Scan(
		&doc.WorkoutID, &doc.UserID, &doc.Title, &doc.StartTime, &doc.EndTime, &doc.CreatedAt,
		&doc.Notes, &doc.Energy, &doc.HeartRate, &doc.Volume, &doc.SetCount, &doc.Exercises, &full)
	if err != nil {
		return models.WorkoutDocument{}, mapError(err, "getting", "workout", id)
	}
	if len(full) > 0 {
		if err := json.Unmarshal(full, &doc.ExercisesFull); err != nil {
			return models.WorkoutDocument{}, fmt.Errorf("decoding exercises of workout %s: %w", id, err)
		}
	}
	return doc, nil
}

// DeleteWorkout deletes a workout row. Its sets are removed separately.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("workouts").Where(squirrel.Eq{"workout_id": id}).ToSql()
	if err != nil {
		return mapError(err, "building", "workout", id)
	}
	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "deleting", "workout", id)
	}
	return nil
}

// ListWorkouts returns summaries of a user's workouts that start within
// [start, end), newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error) {
	query, args, err := psql.Select(
		"workout_id", "user_id", "title", "start_time", "end_time", "exercises",
		"energy", "heart_rate", "volume", "set_count").
		From("workouts").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"start_time": start}).
		Where(squirrel.Lt{"start_time": end}).
		OrderBy("start_time DESC").
		ToSql()
	if err != nil {
		return nil, mapError(err, "building", "workouts of user", userID)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "listing", "workouts of user", userID)
	}
	defer rows.Close()

	var result []models.WorkoutSummary
	for rows.Next() {
		var w models.WorkoutSummary
		if err := rows.Scan(&w.WorkoutID, &w.UserID, &w.Title, &w.StartTime, &w.EndTime, &w.Exercises,
			&w.Energy, &w.HeartRate, &w.Volume, &w.SetCount); err != nil {
			return nil, fmt.Errorf("scanning workout summary: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
