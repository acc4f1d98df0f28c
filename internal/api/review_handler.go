package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/review"
	"github.com/google/uuid"
)

// ReviewService is the review scheduler used by ReviewHandler.
type ReviewService interface {
	Submit(ctx context.Context, userID, problemID uuid.UUID, answer review.Answer) (*domain.ReviewPlan, error)
	Due(ctx context.Context, userID uuid.UUID) ([]domain.DueReview, error)
	Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)
}

// ReviewHandler serves the review schedule of the authenticated user.
type ReviewHandler struct {
	reviews ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		panic("review service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// ListDue handles GET /api/reviews/due.
func (h *ReviewHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	due, err := h.reviews.Due(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due reviews")
		return
	}
	if due == nil {
		due = []domain.DueReview{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueReviewsResponse{Reviews: due, Count: len(due)})
}

// GetStats handles GET /api/reviews/stats.
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.reviews.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// SubmitReview handles POST /api/reviews/{problemID}/submit.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	problemID, err := getPathUUID(r, "problemID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	plan, err := h.reviews.Submit(r.Context(), userID, problemID, review.Answer{
		Correct:     *req.Correct,
		TimeSpentMs: req.TimeSpentMs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, plan)
}
