package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingSummaryPeriod holds aggregated training for one time period.
type TrainingSummaryPeriod struct {
	Period       string   `json:"period"`
	Workouts     int      `json:"workouts"`
	DurationSec  float64  `json:"duration_sec"`
	EnergyKJ     float64  `json:"energy_kj"`
	VolumeKg     float64  `json:"volume_kg"`
	Sets         int      `json:"sets"`
	AvgHeartRate *float64 `json:"avg_heart_rate,omitempty"`
}

// GetTrainingSummary returns per-period totals of a user's workouts, newest
// period first.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, start_time)::date AS period,
		        COUNT(*)::int,
		        COALESCE(SUM(GREATEST(EXTRACT(EPOCH FROM end_time - start_time), 0)), 0)::float8,
		        COALESCE(SUM(energy), 0),
		        COALESCE(SUM(volume), 0),
		        COALESCE(SUM(set_count), 0)::int,
		        AVG(heart_rate)
		 FROM workouts
		 WHERE start_time >= $2 AND start_time < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	var result []TrainingSummaryPeriod
	for rows.Next() {
		var periodTime time.Time
		var p TrainingSummaryPeriod
		if err := rows.Scan(&periodTime, &p.Workouts, &p.DurationSec, &p.EnergyKJ, &p.VolumeKg, &p.Sets, &p.AvgHeartRate); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		result = append(result, p)
	}
	return result, rows.Err()
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	case "1 year", "year":
		return "year"
	default:
		return "month"
	}
}
