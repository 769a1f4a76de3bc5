package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored training data.
type DataStats struct {
	TotalWorkouts int64          `json:"total_workouts"`
	TotalSets     int64          `json:"total_sets"`
	TotalVolumeKg float64        `json:"total_volume_kg"`
	EarliestData  *time.Time     `json:"earliest_data"`
	LatestData    *time.Time     `json:"latest_data"`
	TopExercises  []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise definition.
type ExerciseStat struct {
	Name      string  `json:"name"`
	Sets      int64   `json:"sets"`
	VolumeKg  float64 `json:"volume_kg"`
	MaxWeight float64 `json:"max_weight_kg"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(volume), 0), MIN(start_time), MAX(start_time)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalVolumeKg, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("summarizing workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sets WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, COUNT(*), COALESCE(SUM(s.reps * s.weight), 0), COALESCE(MAX(s.weight), 0)
		 FROM sets s
		 JOIN exercises e ON e.id = s.exercise_id
		 WHERE s.user_id = $1
		 GROUP BY e.name
		 ORDER BY COUNT(*) DESC
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Sets, &s.VolumeKg, &s.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
