package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListWorkoutsHTTP verifies the window is sent as RFC 3339 params and
// the summaries are decoded.
func TestListWorkoutsHTTP(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q", got)
			}
			if got := r.URL.Query().Get("end"); got != "2026-01-07T00:00:00Z" {
				t.Errorf("end=%q", got)
			}
			writeTestJSON(t, w, []models.WorkoutSummary{
				{WorkoutID: id, Title: "Push", StartTime: start, Volume: 4200, SetCount: 12},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL + "/")
	workouts, err := client.ListWorkouts(context.Background(), 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	if workouts[0].WorkoutID != id || workouts[0].Volume != 4200 {
		t.Errorf("workout = %+v", workouts[0])
	}
}

// TestGetWorkoutDetailHTTP decodes the nested exercise and set view.
func TestGetWorkoutDetailHTTP(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String(): func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, models.WorkoutDetail{
				ID:    id,
				Title: "Legs",
				Exercises: []models.ExerciseDetail{
					{Name: "Squat", Sets: []models.SetDetail{{Reps: 5, Weight: 140, Unit: "kg"}}},
				},
			})
		},
	})
	defer ts.Close()

	detail, err := NewHTTPClient(ts.URL).GetWorkoutDetail(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Legs" || len(detail.Exercises) != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	if got := detail.Exercises[0].Sets[0].Weight; got != 140 {
		t.Errorf("weight=%v, want 140", got)
	}
}

// TestGetWorkoutDetailNotFound maps a 404 to models.ErrNotFound.
func TestGetWorkoutDetailNotFound(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String(): func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).GetWorkoutDetail(context.Background(), id, 1)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestHTTPClientServerError surfaces non-200 responses as errors.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).ListExercises(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, models.ErrNotFound) {
		t.Error("500 must not map to ErrNotFound")
	}
}

// TestGetTrainingSummaryHTTP verifies the bucket param is forwarded.
func TestGetTrainingSummaryHTTP(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats/summary": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("bucket"); got != "week" {
				t.Errorf("bucket=%q, want week", got)
			}
			writeTestJSON(t, w, []storage.TrainingSummaryPeriod{
				{Period: "2026-01-05", Workouts: 3, VolumeKg: 9000},
			})
		},
	})
	defer ts.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	periods, err := NewHTTPClient(ts.URL).GetTrainingSummary(context.Background(), start, end, "week", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 || periods[0].Workouts != 3 {
		t.Errorf("periods = %+v", periods)
	}
}

// TestGetDataStatsHTTP decodes the overview payload.
func TestGetDataStatsHTTP(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats/overview": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, storage.DataStats{TotalWorkouts: 42, TotalSets: 900})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL).GetDataStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 42 || stats.TotalSets != 900 {
		t.Errorf("stats = %+v", stats)
	}
}
