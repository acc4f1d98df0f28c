package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain/period"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/logger"
)

// LeaderboardReader serves ranked snapshot rows.
type LeaderboardReader interface {
	Query(ctx context.Context, periodType, periodKey string, limit int) ([]domain.RankedEntry, error)
}

// LeaderboardHandler serves leaderboard reads.
type LeaderboardHandler struct {
	reader LeaderboardReader
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(reader LeaderboardReader, logger *slog.Logger) *LeaderboardHandler {
	if reader == nil {
		panic("leaderboard reader cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil for LeaderboardHandler")
	}
	return &LeaderboardHandler{
		reader: reader,
		logger: logger.With(slog.String("component", "leaderboard_handler")),
	}
}

// GetLeaderboard handles GET /api/leaderboard?period=&key=&limit=. period
// defaults to the all-time window and an empty key selects the current
// period of the requested type.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	q := r.URL.Query()
	periodType := q.Get("period")
	if periodType == "" {
		periodType = string(period.AllTime)
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.reader.Query(r.Context(), periodType, q.Get("key"), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.RankedEntry{}
	}

	log.Debug("leaderboard served",
		slog.String("period_type", periodType),
		slog.Int("entries", len(entries)))
	shared.RespondWithJSON(w, r, http.StatusOK, LeaderboardResponse{
		PeriodType: periodType,
		PeriodKey:  q.Get("key"),
		Limit:      limit,
		Entries:    entries,
	})
}
