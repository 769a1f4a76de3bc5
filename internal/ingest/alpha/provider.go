package alpha

import (
	"context"
	"io"
	"log/slog"

	"github.com/claude/liftlog/internal/ingest"
)

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	pipeline *ingest.Pipeline
	log      *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(pipeline *ingest.Pipeline, log *slog.Logger) *Provider {
	return &Provider{pipeline: pipeline, log: log}
}

// Ingest parses a CSV export and stores every session as a workout.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	drafts, err := ParseDrafts(r)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return &ingest.Result{Message: "no sessions found"}, nil
	}

	result, err := p.pipeline.IngestAll(ctx, userID, drafts)
	if err != nil {
		return result, err
	}
	p.log.Info("alpha import complete", "user_id", userID,
		"workouts", result.WorkoutsInserted, "sets", result.SetsInserted)
	return result, nil
}
