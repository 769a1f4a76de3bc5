package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/claude/liftlog/internal/tracker/trackertest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves listings from the in-memory store and records import
// logs.
type fakeCatalog struct {
	*trackertest.Store

	mu      sync.Mutex
	imports []storage.ImportLog
	listErr error
}

func (c *fakeCatalog) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSummary, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.Store.ListWorkouts(ctx, userID, start, end)
}

func (c *fakeCatalog) ListExercises(context.Context) ([]models.ExerciseRow, error) {
	return []models.ExerciseRow{}, nil
}

func (c *fakeCatalog) GetDataStats(_ context.Context, _ int) (*storage.DataStats, error) {
	return &storage.DataStats{}, nil
}

func (c *fakeCatalog) GetTrainingSummary(context.Context, time.Time, time.Time, string, int) ([]storage.TrainingSummaryPeriod, error) {
	return nil, nil
}

func (c *fakeCatalog) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imports = append(c.imports, log)
	return int64(len(c.imports)), nil
}

func (c *fakeCatalog) QueryImportLogs(_ context.Context, _, _ int) ([]storage.ImportLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.ImportLog(nil), c.imports...), nil
}

type testServer struct {
	*Server
	store   *trackertest.Store
	catalog *fakeCatalog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := trackertest.NewStore()
	tr := tracker.New(store, discardLog, tracker.Options{SaveTimeout: time.Second})
	reg := tracker.NewRegistry(tr)
	pipeline := ingest.NewPipeline(tr, discardLog)
	catalog := &fakeCatalog{Store: store}

	s := New(Deps{
		Tracker:  tr,
		Registry: reg,
		Pipeline: pipeline,
		Alpha:    alpha.NewProvider(pipeline, discardLog),
		Catalog:  catalog,
		Users:    &fakeUsers{ids: map[string]int{}},
		APIKey:   "secret",
		Log:      discardLog,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, reg.Close(ctx))
	})
	return &testServer{Server: s, store: store, catalog: catalog}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) models.WorkoutDetail {
	t.Helper()
	var v models.WorkoutDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// newWorkout creates a workout with one exercise and one set over HTTP.
func (s *testServer) newWorkout(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/workouts", map[string]any{
		"title":      "Legs",
		"start_time": "2024-06-10T18:00:00Z",
		"end_time":   "2024-06-10T19:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/api/v1/workouts/" + decodeView(t, rec).ID.String()

	rec = s.do(t, http.MethodPost, base+"/exercises", map[string]any{"name": "Squat"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, base+"/exercises/0/sets", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return base
}

// TestHandleMe verifies the dev identity is reported without Tailscale.
func TestHandleMe(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/me", nil)

	var info UserInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "local", info.Login)
	assert.Equal(t, "Local Dev User", info.DisplayName)
}

// TestWorkoutLifecycle edits a workout over HTTP and checks that the
// debounced save reaches the store.
func TestWorkoutLifecycle(t *testing.T) {
	s := newTestServer(t)
	base := s.newWorkout(t)

	rec := s.do(t, http.MethodPatch, base+"/exercises/0/sets/0", map[string]any{
		"reps": 5, "weight": 100, "unit": "lbs",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decodeView(t, rec)
	require.Len(t, v.Exercises, 1)
	require.Len(t, v.Exercises[0].Sets, 1)
	assert.Equal(t, "Squat", v.Exercises[0].Name)
	assert.NotNil(t, v.Exercises[0].ID)
	assert.InDelta(t, 45.3592, v.Exercises[0].Sets[0].Weight, 1e-9)
	assert.InDelta(t, 5*45.3592, v.Volume, 1e-9)
	assert.Equal(t, "1h", v.Duration)

	rec = s.do(t, http.MethodPatch, base, map[string]any{"title": "Leg Day", "energy": 1200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.tracker.Drain(ctx))

	doc, ok := s.store.Workout(v.ID)
	require.True(t, ok)
	assert.Equal(t, "Leg Day", doc.Title)
	assert.Equal(t, 1, doc.SetCount)
	require.NotNil(t, doc.Energy)
	assert.Equal(t, 1200.0, *doc.Energy)

	rec = s.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestExerciseMoveAndRemove reorders and removes exercises by index.
func TestExerciseMoveAndRemove(t *testing.T) {
	s := newTestServer(t)
	base := s.newWorkout(t)

	rec := s.do(t, http.MethodPost, base+"/exercises", map[string]any{"name": "Lunge"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/exercises/1/move?dir=up", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, "Lunge", v.Exercises[0].Name)
	assert.Equal(t, "Squat", v.Exercises[1].Name)

	rec = s.do(t, http.MethodDelete, base+"/exercises/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	require.Len(t, v.Exercises, 1)
	assert.Equal(t, 0, v.SetCount)
}

// TestValidationErrors verifies the status codes of rejected edits.
func TestValidationErrors(t *testing.T) {
	s := newTestServer(t)
	base := s.newWorkout(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unsupported unit", http.MethodPatch, base + "/exercises/0/sets/0", map[string]any{"weight": 5, "unit": "stone"}, http.StatusUnprocessableEntity},
		{"negative reps", http.MethodPatch, base + "/exercises/0/sets/0", map[string]any{"reps": -1}, http.StatusUnprocessableEntity},
		{"set out of range", http.MethodPatch, base + "/exercises/0/sets/3", map[string]any{"reps": 1}, http.StatusBadRequest},
		{"exercise out of range", http.MethodPatch, base + "/exercises/7", map[string]any{"notes": "x"}, http.StatusBadRequest},
		{"bad move", http.MethodPost, base + "/exercises/0/move?dir=sideways", nil, http.StatusBadRequest},
		{"empty name", http.MethodPatch, base + "/exercises/0", map[string]any{"name": " "}, http.StatusUnprocessableEntity},
		{"bad id", http.MethodGet, "/api/v1/workouts/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown metric", http.MethodGet, "/api/v1/stats?metric=steps", nil, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

// TestAddExercise_RejectedName drops the placeholder when the name is
// rejected.
func TestAddExercise_RejectedName(t *testing.T) {
	s := newTestServer(t)
	base := s.newWorkout(t)

	rec := s.do(t, http.MethodPost, base+"/exercises", map[string]any{"name": "   "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	require.Len(t, v.Exercises, 1)
	assert.Equal(t, "Squat", v.Exercises[0].Name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.tracker.Drain(ctx))
	doc, ok := s.store.Workout(v.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"Squat"}, doc.Exercises)
}

// TestWorkoutOfOtherUser verifies that workouts of other users are hidden.
func TestWorkoutOfOtherUser(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()
	s.store.PutWorkout(models.WorkoutDocument{WorkoutID: id, UserID: 2, Title: "Theirs"})

	rec := s.do(t, http.MethodGet, "/api/v1/workouts/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestStats totals a metric over stored workouts.
func TestStats(t *testing.T) {
	s := newTestServer(t)
	start := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	s.store.PutWorkout(models.WorkoutDocument{WorkoutID: uuid.New(), UserID: 1, StartTime: start, EndTime: start.Add(time.Hour), Volume: 1000})
	s.store.PutWorkout(models.WorkoutDocument{WorkoutID: uuid.New(), UserID: 1, StartTime: start.AddDate(0, 0, 1), EndTime: start.AddDate(0, 0, 1), Volume: 500})
	s.store.PutWorkout(models.WorkoutDocument{WorkoutID: uuid.New(), UserID: 2, StartTime: start, EndTime: start, Volume: 9000})

	rec := s.do(t, http.MethodGet, "/api/v1/stats?metric=volume&start=2024-06-01&end=2024-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Totals []metricTotal `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Totals, 1)
	assert.Equal(t, 1500.0, body.Totals[0].Value)
	assert.Equal(t, "1,500 kg", body.Totals[0].Display)
	assert.Equal(t, "Volume Lifted", body.Totals[0].Label)

	rec = s.do(t, http.MethodGet, "/api/v1/stats?start=2024-06-01&end=2024-06-30", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Totals, len(tracker.Metrics))
}

// TestListWorkoutsStorageError verifies that storage failures are reported
// generically.
func TestListWorkoutsStorageError(t *testing.T) {
	s := newTestServer(t)
	s.catalog.listErr = errors.New("connection reset")

	rec := s.do(t, http.MethodGet, "/api/v1/workouts", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to load"}`, rec.Body.String())
}

// TestTranscriptionIngest stores a transcribed workout and logs the import.
func TestTranscriptionIngest(t *testing.T) {
	s := newTestServer(t)
	body := `{
		"title": "Upper",
		"startTime": {"day": 10, "month": 6, "year": 2024, "hour": 18, "minute": 0},
		"endTime": {"day": 10, "month": 6, "year": 2024, "hour": 19, "minute": 0},
		"exercises_full": [
			{"exercise": "Bench Press", "sets": [{"reps": 5, "weight": 225, "unit": "lbs"}]}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/transcription", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/ingest/transcription", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	v := decodeView(t, rec)
	assert.Equal(t, "Upper", v.Title)
	assert.Equal(t, time.Hour, v.EndTime.Sub(v.StartTime))
	assert.Equal(t, 1, s.store.SetCount())

	logs, err := s.catalog.QueryImportLogs(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "transcription", logs[0].Source)
	assert.Equal(t, "success", logs[0].Status)
	assert.Equal(t, 1, logs[0].SetsInserted)
}

// TestAlphaIngest imports a CSV export body.
func TestAlphaIngest(t *testing.T) {
	s := newTestServer(t)
	csv := `"Push";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;1
`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader(csv))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ingest.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 1, result.WorkoutsInserted)
	assert.Equal(t, 2, result.SetsInserted)
	assert.Equal(t, 2, s.store.SetCount())
}

// TestHistogram bins volume by week across the requested window.
func TestHistogram(t *testing.T) {
	s := newTestServer(t)
	mon := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	for _, w := range []struct {
		at     time.Time
		volume float64
	}{
		{mon, 1000},
		{mon.AddDate(0, 0, 2), 500},
		{mon.AddDate(0, 0, 8), 700},
	} {
		s.store.PutWorkout(models.WorkoutDocument{WorkoutID: uuid.New(), UserID: 1, StartTime: w.at, EndTime: w.at, Volume: w.volume})
	}

	rec := s.do(t, http.MethodGet, "/api/v1/stats/histogram?metric=volume&bin=week&start=2024-06-10&end=2024-06-23", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var bins []struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bins))
	require.GreaterOrEqual(t, len(bins), 2)
	assert.Equal(t, "Jun 10 - Jun 16", bins[0].Label)
	assert.Equal(t, 1500.0, bins[0].Value)
	assert.Equal(t, 700.0, bins[1].Value)

	rec = s.do(t, http.MethodGet, "/api/v1/stats/histogram?metric=volume&bin=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/stats/histogram", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestExercisePB reports the heaviest recorded set for an exercise.
func TestExercisePB(t *testing.T) {
	s := newTestServer(t)
	base := s.newWorkout(t)

	rec := s.do(t, http.MethodPatch, base+"/exercises/0/sets/0", map[string]any{"reps": 3, "weight": 140, "unit": "kg"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v := decodeView(t, rec)
	require.NotNil(t, v.Exercises[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/exercises/"+v.Exercises[0].ID.String()+"/pb", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pb struct {
		Weight float64 `json:"weight"`
		Unit   string  `json:"unit"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pb))
	assert.Equal(t, 140.0, pb.Weight)
	assert.Equal(t, "kg", pb.Unit)

	rec = s.do(t, http.MethodGet, "/api/v1/exercises/"+uuid.NewString()+"/pb", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/exercises/nope/pb", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestImportLogsAndOverview lists import history and passes catalog
// overviews through.
func TestImportLogsAndOverview(t *testing.T) {
	s := newTestServer(t)
	csv := `"Pull";"2026-02-18 6:00 h";"50 min"
"1. Row · Cable · 10 reps"
#;KG;REPS;RIR
1;60;10;2
`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/alpha", strings.NewReader(csv))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/imports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []storage.ImportLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "alpha", logs[0].Source)
	assert.Equal(t, 1, logs[0].WorkoutsInserted)

	rec = s.do(t, http.MethodGet, "/api/v1/stats/overview", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/stats/summary?bucket=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
