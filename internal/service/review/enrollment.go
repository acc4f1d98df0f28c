package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/events"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
)

// Enroller is the part of Scheduler the enrollment handler needs.
type Enroller interface {
	Enroll(ctx context.Context, userID, problemID uuid.UUID) (*domain.ReviewPlan, error)
}

// EnrollmentHandler enrolls a problem for review whenever the user answers it
// incorrectly in the main practice flow. Daily and review attempts are ignored.
type EnrollmentHandler struct {
	enroller Enroller
	logger   *slog.Logger
}

// NewEnrollmentHandler creates an EnrollmentHandler.
func NewEnrollmentHandler(enroller Enroller, logger *slog.Logger) *EnrollmentHandler {
	if enroller == nil {
		panic("enroller cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentHandler{
		enroller: enroller,
		logger:   logger.With(slog.String("component", "review_enrollment")),
	}
}

var _ events.EventHandler = (*EnrollmentHandler)(nil)

// HandleEvent implements events.EventHandler.
func (h *EnrollmentHandler) HandleEvent(ctx context.Context, event *events.AttemptRecordedEvent) error {
	attempt := event.Attempt
	if attempt.IsCorrect || attempt.Source != domain.AttemptSourcePractice {
		return nil
	}

	if _, err := h.enroller.Enroll(ctx, attempt.UserID, attempt.ProblemID); err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Error("failed to enroll problem after incorrect attempt",
			slog.String("attempt_id", attempt.ID.String()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
