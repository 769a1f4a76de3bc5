package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline stores drafts as new workouts.
type Pipeline struct {
	tracker *tracker.Tracker
	log     *slog.Logger
}

// NewPipeline creates a Pipeline writing through t.
func NewPipeline(t *tracker.Tracker, log *slog.Logger) *Pipeline {
	return &Pipeline{tracker: t, log: log}
}

// Ingest stores one draft for a user. Exercise names are resolved
// concurrently, then the workout row is inserted, then every set, and the
// document is saved again with the set ids. Exercises without a name are
// dropped.
func (p *Pipeline) Ingest(ctx context.Context, userID int, draft models.WorkoutDraft) (*tracker.Workout, error) {
	doc := models.WorkoutDocument{
		WorkoutID: uuid.New(),
		UserID:    userID,
		Title:     draft.Title,
		Notes:     draft.Notes,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		Energy:    draft.Energy,
		HeartRate: draft.HeartRate,
	}
	for _, ex := range draft.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			p.log.Warn("dropping unnamed exercise", "workout_id", doc.WorkoutID, "sets", len(ex.Sets))
			continue
		}
		ed := models.ExerciseDocument{Exercise: ex.Name, Notes: ex.Notes}
		for _, s := range ex.Sets {
			ed.Sets = append(ed.Sets, models.SetDocument{Reps: s.Reps, Weight: s.Weight, Unit: s.Unit, Notes: s.Notes})
		}
		doc.ExercisesFull = append(doc.ExercisesFull, ed)
	}

	resolver := p.tracker.Resolver()
	g, gctx := errgroup.WithContext(ctx)
	for i := range doc.ExercisesFull {
		ed := &doc.ExercisesFull[i]
		g.Go(func() error {
			def, err := resolver.Resolve(gctx, ed.Exercise)
			if err != nil {
				return err
			}
			ed.ID = &def.ID
			ed.Exercise = def.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolving exercises: %w", err)
	}

	w, err := p.tracker.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	p.log.Info("ingested workout", "workout_id", w.ID(), "user_id", userID,
		"exercises", w.CountExercises(), "sets", w.CountSets())
	return w, nil
}

// IngestAll stores drafts one after another and stops at the first failure.
// The returned result covers the drafts stored before it.
func (p *Pipeline) IngestAll(ctx context.Context, userID int, drafts []models.WorkoutDraft) (*Result, error) {
	result := &Result{WorkoutsReceived: len(drafts)}
	for _, d := range drafts {
		for _, ex := range d.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
	}

	for _, d := range drafts {
		w, err := p.Ingest(ctx, userID, d)
		if err != nil {
			return result, fmt.Errorf("ingesting %q: %w", d.Title, err)
		}
		result.WorkoutsInserted++
		result.SetsInserted += w.CountSets()
		result.WorkoutIDs = append(result.WorkoutIDs, w.ID())
	}
	return result, nil
}
