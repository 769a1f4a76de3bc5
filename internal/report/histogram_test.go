package report

import (
	"testing"
	"time"
)

// TestHistogramWeekly verifies weekly buckets and week labels.
func TestHistogramWeekly(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 18, 0, 0, 0, time.UTC) }
	points := []Point{
		{At: day(11), Value: 100},
		{At: day(3), Value: 50},
		{At: day(16), Value: 25},
		{At: day(20), Value: 10},
	}

	bins := Histogram(points, BinWeek, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), day(20))
	if len(bins) != 4 {
		t.Fatalf("bins = %d, want 4", len(bins))
	}
	want := []float64{0, 50, 125, 10}
	for i, b := range bins {
		if b.Value != want[i] {
			t.Errorf("bin %d (%s) = %v, want %v", i, b.Label, b.Value, want[i])
		}
	}
	if bins[2].Label != "Jun 10 - Jun 16" {
		t.Errorf("label = %q", bins[2].Label)
	}
}

// TestHistogramDefaultsToDataRange verifies that zero bounds use the data.
func TestHistogramDefaultsToDataRange(t *testing.T) {
	points := []Point{
		{At: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Value: 1},
		{At: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Value: 1},
		{At: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 1},
	}
	bins := Histogram(points, BinMonth, time.Time{}, time.Time{})
	if len(bins) != 3 {
		t.Fatalf("bins = %d, want 3", len(bins))
	}
	if bins[0].Value != 2 || bins[1].Value != 0 || bins[2].Value != 1 {
		t.Errorf("values = %v %v %v", bins[0].Value, bins[1].Value, bins[2].Value)
	}
	if bins[0].Label != "Jan 24" {
		t.Errorf("label = %q", bins[0].Label)
	}
}

// TestHistogramEmpty verifies that no data and no bounds yields no bins.
func TestHistogramEmpty(t *testing.T) {
	if bins := Histogram(nil, BinDay, time.Time{}, time.Time{}); bins != nil {
		t.Errorf("bins = %v, want nil", bins)
	}
}
