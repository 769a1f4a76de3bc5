package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
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
	if list == nil {
		list = []models.WorkoutSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

type createWorkoutRequest struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	now := time.Now()
	doc := models.WorkoutDocument{
		UserID:    userIDFromContext(r),
		Title:     req.Title,
		Notes:     req.Notes,
		StartTime: now,
		EndTime:   now,
	}
	if req.StartTime != nil {
		doc.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		doc.EndTime = *req.EndTime
	}

	wo, err := s.tracker.Create(r.Context(), doc)
	if err != nil {
		s.writeError(w, err, "failed to save", "user_id", doc.UserID)
		return
	}
	s.registry.Put(wo)
	writeJSON(w, http.StatusCreated, wo.Detail())
}

// workout loads the live workout named in the path. It writes the error
// response itself and returns nil when the workout is missing or belongs to
// another user.
func (s *Server) workout(w http.ResponseWriter, r *http.Request) *tracker.Workout {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid workout ID")
		return nil
	}
	wo, err := s.registry.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load", "workout_id", id)
		return nil
	}
	if wo.UserID() != userIDFromContext(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return nil
	}
	return wo
}

// exercise resolves the {ex} index within the path's workout.
func (s *Server) exercise(w http.ResponseWriter, r *http.Request) (*tracker.Workout, *tracker.Exercise) {
	wo := s.workout(w, r)
	if wo == nil {
		return nil, nil
	}
	i, err := pathIndex(r, "ex")
	if err != nil {
		writeBadRequest(w, "invalid exercise index")
		return nil, nil
	}
	e, err := wo.Exercise(i)
	if err != nil {
		s.writeError(w, err, "failed to load")
		return nil, nil
	}
	return wo, e
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	if wo := s.workout(w, r); wo != nil {
		writeJSON(w, http.StatusOK, wo.Detail())
	}
}

type patchWorkoutRequest struct {
	Title     *string    `json:"title"`
	Notes     *string    `json:"notes"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Energy    *float64   `json:"energy"`
	HeartRate *float64   `json:"heart_rate"`
}

func (s *Server) handlePatchWorkout(w http.ResponseWriter, r *http.Request) {
	wo := s.workout(w, r)
	if wo == nil {
		return
	}
	var req patchWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	if req.Title != nil {
		wo.SetTitle(*req.Title)
	}
	if req.Notes != nil {
		wo.SetNotes(*req.Notes)
	}
	if req.StartTime != nil {
		wo.SetStartTime(*req.StartTime)
	}
	if req.EndTime != nil {
		wo.SetEndTime(*req.EndTime)
	}
	if req.Energy != nil {
		wo.SetEnergy(req.Energy)
	}
	if req.HeartRate != nil {
		wo.SetHeartRate(req.HeartRate)
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	wo := s.workout(w, r)
	if wo == nil {
		return
	}
	s.registry.Forget(wo.ID())
	if err := wo.Delete(r.Context()); err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exerciseRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

func (s *Server) applyExercise(w http.ResponseWriter, r *http.Request, e *tracker.Exercise, req exerciseRequest) bool {
	if req.Name != nil {
		if err := e.SetName(r.Context(), *req.Name); err != nil {
			s.writeError(w, err, "failed to save", "exercise", *req.Name)
			return false
		}
	}
	if req.Notes != nil {
		e.SetNotes(*req.Notes)
	}
	return true
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	wo := s.workout(w, r)
	if wo == nil {
		return
	}
	var req exerciseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}
	e := wo.AddEmptyExercise()
	if !s.applyExercise(w, r, e, req) {
		if err := e.RemoveFromWorkout(context.WithoutCancel(r.Context())); err != nil {
			s.log.Warn("removing placeholder exercise", "workout_id", wo.ID(), "error", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, wo.Detail())
}

func (s *Server) handlePatchExercise(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if !s.applyExercise(w, r, e, req) {
		return
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	if err := e.RemoveFromWorkout(r.Context()); err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}

func (s *Server) handleMoveExercise(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	var err error
	switch r.URL.Query().Get("dir") {
	case "up":
		err = e.ReorderUp()
	case "down":
		err = e.ReorderDown()
	default:
		writeBadRequest(w, "dir must be up or down")
		return
	}
	if err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	if _, err := e.AddNewSet(r.Context()); err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	writeJSON(w, http.StatusCreated, wo.Detail())
}

func (s *Server) handlePatchSet(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	i, err := pathIndex(r, "set")
	if err != nil {
		writeBadRequest(w, "invalid set index")
		return
	}
	var u tracker.SetUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := e.UpdateSet(r.Context(), i, u); err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	wo, e := s.exercise(w, r)
	if e == nil {
		return
	}
	i, err := pathIndex(r, "set")
	if err != nil {
		writeBadRequest(w, "invalid set index")
		return
	}
	if err := e.RemoveSet(r.Context(), i); err != nil {
		s.writeError(w, err, "failed to save", "workout_id", wo.ID())
		return
	}
	writeJSON(w, http.StatusOK, wo.Detail())
}
