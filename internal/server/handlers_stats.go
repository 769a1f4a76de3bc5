package server

import (
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/report"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type metricTotal struct {
	Metric  string  `json:"metric"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

func newMetricTotal(m tracker.Metric, v float64) metricTotal {
	return metricTotal{Metric: m.String(), Label: m.Label(), Value: v, Display: report.FormatValue(v, m)}
}

// handleStats totals one metric, or every metric when none is named, over
// the workouts in the requested window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics := tracker.Metrics
	if name := r.URL.Query().Get("metric"); name != "" {
		m, err := tracker.ParseMetric(name)
		if err != nil {
			s.writeError(w, err, "failed to load")
			return
		}
		metrics = []tracker.Metric{m}
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	uid := userIDFromContext(r)
	list, err := s.catalog.ListWorkouts(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err, "failed to load", "user_id", uid)
		return
	}
	items := report.Summaries(list)

	totals := make([]metricTotal, 0, len(metrics))
	for _, m := range metrics {
		totals = append(totals, newMetricTotal(m, report.Total(items, m)))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start":  start,
		"end":    end,
		"totals": totals,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := tracker.ParseMetric(q.Get("metric"))
	if err != nil {
		s.writeError(w, err, "failed to load")
		return
	}
	bin := report.BinWeek
	if b := q.Get("bin"); b != "" {
		if bin, err = report.ParseBinSize(b); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	uid := userIDFromContext(r)
	list, err := s.catalog.ListWorkouts(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err, "failed to load", "user_id", uid)
		return
	}
	points := make([]report.Point, len(list))
	for i, ws := range list {
		points[i] = report.Point{At: ws.StartTime, Value: report.Summary(ws).Item(m)}
	}
	bins := report.Histogram(points, bin, start, end)
	if bins == nil {
		bins = []report.Bin{}
	}
	writeJSON(w, http.StatusOK, bins)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = "week"
	}
	uid := userIDFromContext(r)
	periods, err := s.catalog.GetTrainingSummary(r.Context(), start, end, bucket, uid)
	if err != nil {
		s.writeError(w, err, "failed to load", "user_id", uid)
		return
	}
	if periods == nil {
		periods = []storage.TrainingSummaryPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleDataOverview(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	stats, err := s.catalog.GetDataStats(r.Context(), uid)
	if err != nil {
		s.writeError(w, err, "failed to load", "user_id", uid)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.catalog.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		s.writeError(w, err, "failed to load", "user_id", uid)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListExercises(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to load")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExercisePB(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid exercise ID")
		return
	}
	pb, err := s.catalog.ExerciseWeightPB(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load", "exercise_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercise_id": id, "weight": pb, "unit": tracker.UnitKilograms})
}
