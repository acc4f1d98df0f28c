package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/practice"
	"github.com/google/uuid"
)

// AttemptRecorder appends practice attempts to the attempt log.
type AttemptRecorder interface {
	Record(ctx context.Context, sub practice.Submission) (*domain.PracticeAttempt, error)
}

// AttemptHandler accepts practice submissions.
type AttemptHandler struct {
	recorder AttemptRecorder
	logger   *slog.Logger
}

// NewAttemptHandler creates an AttemptHandler.
func NewAttemptHandler(recorder AttemptRecorder, logger *slog.Logger) *AttemptHandler {
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for AttemptHandler")
	}
	return &AttemptHandler{
		recorder: recorder,
		logger:   logger.With(slog.String("component", "attempt_handler")),
	}
}

// RecordAttempt handles POST /api/attempts.
func (h *AttemptHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	attempt, err := h.recorder.Record(r.Context(), practice.Submission{
		UserID:      userID,
		ProblemID:   uuid.MustParse(req.ProblemID),
		Correct:     *req.Correct,
		TimeSpentMs: req.TimeSpentMs,
		Source:      domain.AttemptSource(req.Source),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record attempt")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, attempt)
}
