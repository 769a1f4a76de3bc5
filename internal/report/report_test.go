package report

import (
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
)

func ptr[T any](v T) *T { return &v }

var start = time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)

func summaries() []models.WorkoutSummary {
	return []models.WorkoutSummary{
		{Title: "Push", StartTime: start, EndTime: start.Add(65 * time.Minute), Energy: ptr(800.0), Volume: 5000},
		{Title: "Pull", StartTime: start.AddDate(0, 0, 2), EndTime: start.AddDate(0, 0, 2).Add(40 * time.Minute), Volume: 3250.5},
	}
}

// TestTotals verifies aggregation of every metric over stored summaries.
func TestTotals(t *testing.T) {
	items := Summaries(summaries())

	tests := []struct {
		metric tracker.Metric
		want   float64
	}{
		{tracker.MetricWorkouts, 2},
		{tracker.MetricDuration, 105 * 60},
		{tracker.MetricEnergy, 800},
		{tracker.MetricVolume, 8250.5},
	}
	for _, tt := range tests {
		if got := Total(items, tt.metric); got != tt.want {
			t.Errorf("Total(%s) = %v, want %v", tt.metric, got, tt.want)
		}
	}

	totals := Totals(items)
	if totals["volume"] != 8250.5 || totals["workouts"] != 2 {
		t.Errorf("Totals = %v", totals)
	}
}

// TestFormatValue verifies unit suffixes and pluralization.
func TestFormatValue(t *testing.T) {
	tests := []struct {
		v      float64
		metric tracker.Metric
		want   string
	}{
		{1, tracker.MetricWorkouts, "1 workout"},
		{3, tracker.MetricWorkouts, "3 workouts"},
		{0, tracker.MetricWorkouts, "0 workouts"},
		{3900, tracker.MetricDuration, "1h 5m"},
		{0, tracker.MetricDuration, "0s"},
		{1250, tracker.MetricEnergy, "1,250 kj"},
		{12400.5, tracker.MetricVolume, "12,400.5 kg"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v, tt.metric); got != tt.want {
			t.Errorf("FormatValue(%v, %s) = %q, want %q", tt.v, tt.metric, got, tt.want)
		}
	}
}

// TestCommaNumber verifies thousands grouping.
func TestCommaNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567.891, "1,234,567.89"},
		{-45000, "-45,000"},
		{100.25, "100.25"},
		{3499.999, "3,500"},
		{-1234.5, "-1,234.5"},
	}
	for _, tt := range tests {
		if got := CommaNumber(tt.v); got != tt.want {
			t.Errorf("CommaNumber(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// TestTimeframeRange verifies window starts, with weeks beginning on Monday.
func TestTimeframeRange(t *testing.T) {
	sunday := time.Date(2024, 6, 16, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		tf   Timeframe
		now  time.Time
		want time.Time
	}{
		{TimeframeWeek, sunday, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{TimeframeWeek, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{TimeframeMonth, sunday, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{TimeframeYear, sunday, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{TimeframeAll, sunday, time.Time{}},
	}
	for _, tt := range tests {
		start, end := tt.tf.Range(tt.now)
		if !start.Equal(tt.want) {
			t.Errorf("%s start = %v, want %v", tt.tf, start, tt.want)
		}
		if !end.Equal(tt.now) {
			t.Errorf("%s end = %v, want %v", tt.tf, end, tt.now)
		}
	}
}

// TestParseTimeframe verifies accepted names.
func TestParseTimeframe(t *testing.T) {
	if tf, err := ParseTimeframe(""); err != nil || tf != TimeframeAll {
		t.Errorf("ParseTimeframe(\"\") = %q, %v", tf, err)
	}
	if _, err := ParseTimeframe("decade"); err == nil {
		t.Error("expected error for decade")
	}
}
