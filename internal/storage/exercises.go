package storage

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/claude/liftlog/internal/models"
)

// FindExerciseByAlias returns the definition registered under a lower-cased
// alias.
func (db *DB) FindExerciseByAlias(ctx context.Context, alias string) (models.ExerciseRow, error) {
	query, args, err := psql.Select("e.id", "e.name").
		From("exercise_aliases a").
		Join("exercises e ON e.id = a.exercise_id").
		Where(squirrel.Eq{"a.alias": alias}).
		ToSql()
	if err != nil {
		return models.ExerciseRow{}, mapError(err, "building", "exercise alias", alias)
	}

	var row models.ExerciseRow
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&row.ID, &row.Name); err != nil {
		return models.ExerciseRow{}, mapError(err, "finding", "exercise alias", alias)
	}
	return row, nil
}

// InsertExercise creates a definition named name and registers its
// lower-cased alias. If a definition with the same name in any case exists
// it is returned instead.
func (db *DB) InsertExercise(ctx context.Context, name string) (models.ExerciseRow, error) {
	var row models.ExerciseRow
	err := db.Pool.QueryRow(ctx, `
		WITH def AS (
			INSERT INTO exercises (name) VALUES ($1)
			ON CONFLICT ((lower(name))) DO UPDATE SET name = exercises.name
			RETURNING id, name
		), alias AS (
			INSERT INTO exercise_aliases (alias, exercise_id)
			SELECT lower($1), id FROM def
			ON CONFLICT (alias) DO NOTHING
		)
		SELECT id, name FROM def
	`, name).Scan(&row.ID, &row.Name)
	if err != nil {
		return models.ExerciseRow{}, mapError(err, "inserting", "exercise", name)
	}
	return row, nil
}

// ListExercises returns every definition ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.ExerciseRow, error) {
	query, args, err := psql.Select("id", "name").From("exercises").OrderBy("name").ToSql()
	if err != nil {
		return nil, mapError(err, "building", "exercises", "all")
	}
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "listing", "exercises", "all")
	}
	defer rows.Close()

	var result []models.ExerciseRow
	for rows.Next() {
		var row models.ExerciseRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, mapError(err, "scanning", "exercise", "row")
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
