package tracker

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Metric selects the per-workout quantity that reports aggregate.
type Metric int

const (
	MetricWorkouts Metric = iota
	MetricDuration
	MetricEnergy
	MetricVolume
)

// Metrics lists every metric in display order.
var Metrics = []Metric{MetricWorkouts, MetricDuration, MetricEnergy, MetricVolume}

var metricNames = map[Metric]string{
	MetricWorkouts: "workouts",
	MetricDuration: "time",
	MetricEnergy:   "energy",
	MetricVolume:   "volume",
}

var metricLabels = map[Metric]string{
	MetricWorkouts: "Workouts",
	MetricDuration: "Total Duration",
	MetricEnergy:   "Active Energy",
	MetricVolume:   "Volume Lifted",
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Label is the human readable name of the metric.
func (m Metric) Label() string {
	return metricLabels[m]
}

// ParseMetric maps a metric name to its Metric. "duration" is accepted as
// an alias of "time".
func ParseMetric(s string) (Metric, error) {
	if s == "duration" {
		return MetricDuration, nil
	}
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("metric %q: %w", s, ErrUnknownMetric)
}

// SummaryItem reports metric m for a stored workout summary. Duration is in
// seconds, energy in kilojoules and volume in kilograms.
func SummaryItem(s models.WorkoutSummary, m Metric) float64 {
	switch m {
	case MetricWorkouts:
		return 1
	case MetricDuration:
		return s.EndTime.Sub(s.StartTime).Seconds()
	case MetricEnergy:
		if s.Energy == nil {
			return 0
		}
		return *s.Energy
	case MetricVolume:
		return s.Volume
	}
	return 0
}
