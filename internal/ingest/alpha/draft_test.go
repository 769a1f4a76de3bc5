package alpha

import (
	"strings"
	"testing"
	"time"
)

// TestParseSessionDuration verifies both duration formats of the export.
func TestParseSessionDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"1:02 hr", time.Hour + 2*time.Minute},
		{"0:45 hr", 45 * time.Minute},
		{"45 min", 45 * time.Minute},
		{"", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseSessionDuration(tt.in); got != tt.want {
			t.Errorf("parseSessionDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestToDraft verifies that a parsed session maps onto a workout draft.
func TestToDraft(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	d := ToDraft(sessions[0])

	if d.Title != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("Title = %q", d.Title)
	}
	wantStart := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC)
	if !d.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", d.StartTime, wantStart)
	}
	if got := d.EndTime.Sub(d.StartTime); got != 62*time.Minute {
		t.Errorf("duration = %v, want 1h2m", got)
	}
	if len(d.Exercises) != 6 {
		t.Fatalf("exercises = %d, want 6", len(d.Exercises))
	}

	hack := d.Exercises[0]
	if hack.Name != "Hack Squats" || hack.Notes != "Machine" {
		t.Errorf("exercise = %q (%q)", hack.Name, hack.Notes)
	}
	if len(hack.Sets) != 5 {
		t.Fatalf("sets = %d, want 5", len(hack.Sets))
	}
	if hack.Sets[0].Notes != "warmup" || hack.Sets[0].Weight != 37.5 {
		t.Errorf("warmup set = %+v", hack.Sets[0])
	}
	if hack.Sets[2].Notes != "RIR 1" || hack.Sets[2].Unit != "kg" {
		t.Errorf("working set = %+v", hack.Sets[2])
	}

	hyper := d.Exercises[2]
	if hyper.Sets[1].Notes != "bodyweight+, RIR 0" || hyper.Sets[1].Weight != 35 {
		t.Errorf("bodyweight set = %+v", hyper.Sets[1])
	}
}

// TestDrafts verifies that every session becomes a draft.
func TestDrafts(t *testing.T) {
	drafts, err := ParseDrafts(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
	if got := drafts[1].EndTime.Sub(drafts[1].StartTime); got != 72*time.Minute {
		t.Errorf("duration = %v, want 1h12m", got)
	}
}
