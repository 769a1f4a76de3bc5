package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/report"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// timeRange resolves a tool's window: a timeframe (week, month, year, all)
// wins over start/end, which default to the last defaultDays days.
func timeRange(req mcp.CallToolRequest, defaultDays int) (time.Time, time.Time, error) {
	if tf := req.GetString("timeframe", ""); tf != "" {
		frame, err := report.ParseTimeframe(tf)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start, end := frame.Range(time.Now())
		return start, end.Add(time.Second), nil
	}

	var start, end time.Time
	var err error
	if endStr := req.GetString("end", ""); endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr := req.GetString("start", ""); startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -defaultDays)
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

var timeframeOption = mcp.WithString("timeframe",
	mcp.Description("Window ending now. Overrides start and end."),
	mcp.Enum("week", "month", "year", "all"))

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workout summaries newest first: title, times, exercises, energy (kJ), average heart rate, volume (kg) and set count."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	timeframeOption,
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with every exercise and set (reps, weight in kg, notes)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID) from list_workouts")),
)

var toolWorkoutTotals = mcp.NewTool("workout_totals",
	mcp.WithDescription("Total a metric across workouts in a window. Omit metric to get all of them."),
	mcp.WithString("metric", mcp.Description("Metric to total"), mcp.Enum("workouts", "time", "energy", "volume")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	timeframeOption,
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Weekly or monthly training totals: workouts, duration, energy, volume, sets and average heart rate per period."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to 'month'."), mcp.Enum("week", "month")),
)

var toolDataOverview = mcp.NewTool("data_overview",
	mcp.WithDescription("Overall data coverage: workout and set counts, total volume, first and last workout and the most trained exercises."),
)

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req, 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.WorkoutSummary{}
	}
	return jsonResult(workouts)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	detail, err := h.ds.GetWorkoutDetail(ctx, id, UserIDFromContext(ctx))
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("workout not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "workout_id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(detail)
}

type totalResult struct {
	Metric  string  `json:"metric"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

func (h *handlers) workoutTotals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics := tracker.Metrics
	if name := req.GetString("metric", ""); name != "" {
		m, err := tracker.ParseMetric(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		metrics = []tracker.Metric{m}
	}
	start, end, err := timeRange(req, 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp workout_totals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	items := report.Summaries(workouts)

	totals := make([]totalResult, 0, len(metrics))
	for _, m := range metrics {
		v := report.Total(items, m)
		totals = append(totals, totalResult{Metric: m.String(), Label: m.Label(), Value: v, Display: report.FormatValue(v, m)})
	}
	return jsonResult(totals)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req, 182)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	bucket := req.GetString("bucket", "month")
	summary, err := h.ds.GetTrainingSummary(ctx, start, end, bucket, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func (h *handlers) dataOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp data_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}
