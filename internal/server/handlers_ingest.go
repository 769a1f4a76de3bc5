package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

func (s *Server) handleTranscriptionIngest(w http.ResponseWriter, r *http.Request) {
	var tw models.TranscribedWorkout
	if err := json.NewDecoder(r.Body).Decode(&tw); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	uid := userIDFromContext(r)
	began := time.Now()

	draft := ingest.FromTranscription(tw, began)
	wo, err := s.pipeline.Ingest(r.Context(), uid, draft)

	result := &ingest.Result{WorkoutsReceived: 1}
	for _, ex := range draft.Exercises {
		result.SetsReceived += len(ex.Sets)
	}
	if err == nil {
		result.WorkoutsInserted = 1
		result.SetsInserted = wo.CountSets()
		result.WorkoutIDs = append(result.WorkoutIDs, wo.ID())
	}
	s.logImport(uid, "transcription", result, err, time.Since(began))

	if err != nil {
		s.writeError(w, err, "failed to save", "user_id", uid)
		return
	}
	s.registry.Put(wo)
	writeJSON(w, http.StatusCreated, wo.Detail())
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	began := time.Now()

	result, err := s.alpha.Ingest(r.Context(), r.Body, uid)
	if result == nil {
		result = &ingest.Result{}
	}
	s.logImport(uid, "alpha", result, err, time.Since(began))
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, took time.Duration) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}
	durationMs := int(took.Milliseconds())

	entry := storage.ImportLog{
		UserID:           uid,
		Source:           source,
		Status:           status,
		WorkoutsReceived: result.WorkoutsReceived,
		WorkoutsInserted: result.WorkoutsInserted,
		SetsReceived:     result.SetsReceived,
		SetsInserted:     result.SetsInserted,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.catalog.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}
