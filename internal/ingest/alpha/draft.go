package alpha

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// sessionDurationRe matches "1:02 hr" and "45 min".
var sessionDurationRe = regexp.MustCompile(`^(?:(\d+):(\d{2})\s*hr|(\d+)\s*min)$`)

// parseSessionDuration converts the export's duration column. Unknown
// formats yield zero.
func parseSessionDuration(s string) time.Duration {
	m := sessionDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	if m[3] != "" {
		mins, _ := strconv.Atoi(m[3])
		return time.Duration(mins) * time.Minute
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
}

// ToDraft converts a session into a workout draft. Warmup, RIR and
// bodyweight-plus details are kept in set notes; equipment goes into the
// exercise notes.
func ToDraft(s models.AlphaSession) models.WorkoutDraft {
	d := models.WorkoutDraft{
		Title:     s.Name,
		StartTime: s.Date,
		EndTime:   s.Date.Add(parseSessionDuration(s.Duration)),
		Exercises: make([]models.DraftExercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		de := models.DraftExercise{Name: ex.Name, Sets: make([]models.DraftSet, 0, len(ex.Sets))}
		if ex.Equipment != "" {
			de.Notes = ex.Equipment
		}
		for _, set := range ex.Sets {
			de.Sets = append(de.Sets, models.DraftSet{
				Reps:   set.Reps,
				Weight: set.WeightKg,
				Unit:   "kg",
				Notes:  setNotes(set),
			})
		}
		d.Exercises = append(d.Exercises, de)
	}
	return d
}

func setNotes(s models.AlphaSet) string {
	var parts []string
	if s.IsWarmup {
		parts = append(parts, "warmup")
	}
	if s.IsBodyweightPlus {
		parts = append(parts, "bodyweight+")
	}
	if !s.IsWarmup {
		parts = append(parts, "RIR "+strconv.FormatFloat(s.RIR, 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// Drafts converts every session.
func Drafts(sessions []models.AlphaSession) []models.WorkoutDraft {
	drafts := make([]models.WorkoutDraft, len(sessions))
	for i, s := range sessions {
		drafts[i] = ToDraft(s)
	}
	return drafts
}

// ParseDrafts reads an export straight into drafts.
func ParseDrafts(r io.Reader) ([]models.WorkoutDraft, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return Drafts(sessions), nil
}
