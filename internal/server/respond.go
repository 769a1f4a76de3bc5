package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/report"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain errors to responses. Validation errors carry their
// message; anything else is logged and reported as fallback.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback string, attrs ...any) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, tracker.ErrIndexOutOfRange),
		errors.Is(err, tracker.ErrNotInWorkout):
		writeBadRequest(w, "index out of range")
	case errors.Is(err, tracker.ErrUnknownMetric),
		errors.Is(err, tracker.ErrUnsupportedUnit),
		errors.Is(err, tracker.ErrInvalidSet),
		errors.Is(err, tracker.ErrEmptyName):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.log.Error(fallback, append(attrs, "error", err)...)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}

func parseTime(s string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", s)
	return t, true, err
}

// parseTimeRange reads start/end query parameters. A timeframe parameter
// (week, month, year, all) takes precedence. Without either, the window is
// the last 7 days.
func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	if tf := q.Get("timeframe"); tf != "" {
		frame, err := report.ParseTimeframe(tf)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start, end = frame.Range(time.Now())
		// ListWorkouts' end bound is exclusive.
		return start, end.Add(time.Second), nil
	}

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" {
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return start, end, nil
	}

	start, _, err = parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endStr == "" {
		return start, time.Now(), nil
	}
	end, dateOnly, err := parseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dateOnly {
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}

func pathIndex(r *http.Request, key string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, key))
}
