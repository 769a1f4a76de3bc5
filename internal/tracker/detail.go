package tracker

import (
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// Detail renders the live aggregate, including the set values that the
// stored document only references by id. Weights are in kilograms.
func (w *Workout) Detail() models.WorkoutDetail {
	d := models.WorkoutDetail{
		ID:             w.ID(),
		Title:          w.Title(),
		Notes:          w.Notes(),
		StartTime:      w.StartTime(),
		EndTime:        w.EndTime(),
		CreatedAt:      w.CreatedAt(),
		Duration:       w.DurationString(),
		Energy:         w.Energy(),
		HeartRate:      w.HeartRate(),
		Volume:         w.Volume(),
		SetCount:       w.CountSets(),
		Exercises:      []models.ExerciseDetail{},
		UnsavedChanges: w.UnsavedChanges(),
		Saving:         w.Saving(),
	}
	for _, e := range w.Exercises() {
		ed := models.ExerciseDetail{
			ID:     optionalID(e.ID()),
			Name:   e.Name(),
			Notes:  e.Notes(),
			Volume: e.Volume(),
			Sets:   []models.SetDetail{},
		}
		for _, s := range e.Sets() {
			ed.Sets = append(ed.Sets, models.SetDetail{
				ID:     optionalID(s.ID()),
				Reps:   s.Reps(),
				Weight: s.Weight(),
				Unit:   UnitKilograms,
				Notes:  s.Notes(),
				Volume: s.Volume(),
			})
		}
		d.Exercises = append(d.Exercises, ed)
	}
	return d
}
