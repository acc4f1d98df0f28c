package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
)

// DailySelector is the daily challenge service used by DailyHandler.
type DailySelector interface {
	Today() time.Time
	SelectOrGetDaily(ctx context.Context, date time.Time) (*domain.ProblemSummary, error)
}

// DailyHandler serves the daily challenge.
type DailyHandler struct {
	selector DailySelector
	logger   *slog.Logger
}

// NewDailyHandler creates a DailyHandler.
func NewDailyHandler(selector DailySelector, logger *slog.Logger) *DailyHandler {
	if selector == nil {
		panic("selector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for DailyHandler")
	}
	return &DailyHandler{
		selector: selector,
		logger:   logger.With(slog.String("component", "daily_handler")),
	}
}

// GetDailyChallenge handles GET /api/daily-challenge. The optional date query
// parameter selects a calendar date (YYYY-MM-DD); it defaults to today.
func (h *DailyHandler) GetDailyChallenge(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	date := h.selector.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		date = parsed
	}

	problem, err := h.selector.SelectOrGetDaily(r.Context(), date)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get daily challenge")
		return
	}

	log.Debug("daily challenge served",
		slog.String("date", date.Format(domain.DateLayout)),
		slog.String("problem_id", problem.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, DailyChallengeResponse{
		Date:    date.Format(domain.DateLayout),
		Problem: problem,
	})
}
