// Package report aggregates workouts by metric and formats the results for
// display.
package report

import (
	"math"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/dustin/go-humanize"
)

// Measurable is anything that reports a value per metric. *tracker.Workout
// implements it, as does Summary.
type Measurable interface {
	Item(m tracker.Metric) float64
}

// Summary adapts a stored workout summary to Measurable.
type Summary models.WorkoutSummary

// Item reports metric m for the summary.
func (s Summary) Item(m tracker.Metric) float64 {
	return tracker.SummaryItem(models.WorkoutSummary(s), m)
}

// Summaries wraps stored summaries for aggregation.
func Summaries(list []models.WorkoutSummary) []Measurable {
	out := make([]Measurable, len(list))
	for i, s := range list {
		out[i] = Summary(s)
	}
	return out
}

// Total sums metric m over items.
func Total[T Measurable](items []T, m tracker.Metric) float64 {
	var total float64
	for _, it := range items {
		total += it.Item(m)
	}
	return total
}

// Totals reports every metric over items, keyed by metric name.
func Totals[T Measurable](items []T) map[string]float64 {
	out := make(map[string]float64, len(tracker.Metrics))
	for _, m := range tracker.Metrics {
		out[m.String()] = Total(items, m)
	}
	return out
}

// FormatValue renders a metric value with its unit: "3 workouts",
// "1h 5m", "1,250 kj" or "12,400.5 kg".
func FormatValue(v float64, m tracker.Metric) string {
	switch m {
	case tracker.MetricWorkouts:
		n := strconv.FormatFloat(v, 'f', -1, 64)
		if v == 1 {
			return n + " workout"
		}
		return n + " workouts"
	case tracker.MetricDuration:
		if v <= 0 {
			return "0s"
		}
		return tracker.FormatDuration(time.Duration(v * float64(time.Second)))
	case tracker.MetricEnergy:
		return CommaNumber(v) + " kj"
	case tracker.MetricVolume:
		return CommaNumber(v) + " kg"
	}
	return CommaNumber(v)
}

// CommaNumber groups the integer part of v in thousands and keeps at most
// two decimals: 1234567.891 renders as "1,234,567.89".
func CommaNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return humanize.Commaf(math.Round(v*100) / 100)
}
