package ingest

import (
	"math"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ResolvePartialDate builds a time from the readable components of p. Each
// component that is missing or out of range is taken from now instead. A
// day past the end of the month is clamped to the month's last day. Seconds
// are always zero and the result is in now's location.
func ResolvePartialDate(p models.PartialDate, now time.Time) time.Time {
	year := now.Year()
	if v, ok := component(p.Year); ok && v >= 1900 && v <= 2100 {
		year = v
	}
	month := now.Month()
	if v, ok := component(p.Month); ok && v >= 1 && v <= 12 {
		month = time.Month(v)
	}
	hour := now.Hour()
	if v, ok := component(p.Hour); ok && v >= 0 && v <= 23 {
		hour = v
	}
	minute := now.Minute()
	if v, ok := component(p.Minute); ok && v >= 0 && v <= 59 {
		minute = v
	}

	last := daysIn(year, month)
	day := now.Day()
	if v, ok := component(p.Day); ok && v >= 1 {
		day = v
	}
	day = min(day, last)

	t := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return now
	}
	return t
}

func component(v *float64) (int, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return int(math.Floor(*v)), true
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FromTranscription converts a transcription into a draft, resolving its
// partial dates against now. Sets without a unit are taken as kilograms.
func FromTranscription(tw models.TranscribedWorkout, now time.Time) models.WorkoutDraft {
	draft := models.WorkoutDraft{
		Title:     tw.Title,
		Notes:     tw.Notes,
		StartTime: ResolvePartialDate(tw.StartTime, now),
		EndTime:   ResolvePartialDate(tw.EndTime, now),
		Exercises: make([]models.DraftExercise, 0, len(tw.ExercisesFull)),
	}
	for _, ex := range tw.ExercisesFull {
		de := models.DraftExercise{Name: ex.Exercise, Sets: make([]models.DraftSet, 0, len(ex.Sets))}
		for _, s := range ex.Sets {
			unit := s.Unit
			if unit == "" {
				unit = "kg"
			}
			de.Sets = append(de.Sets, models.DraftSet{Reps: s.Reps, Weight: s.Weight, Unit: unit, Notes: s.Notes})
		}
		draft.Exercises = append(draft.Exercises, de)
	}
	return draft
}
