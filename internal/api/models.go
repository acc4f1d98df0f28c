package api

import (
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// RecordAttemptRequest is the payload of POST /api/attempts.
type RecordAttemptRequest struct {
	ProblemID   string `json:"problem_id"    validate:"required,uuid"`
	Correct     *bool  `json:"correct"       validate:"required"`
	TimeSpentMs int64  `json:"time_spent_ms" validate:"gte=0"`
	Source      string `json:"source"        validate:"omitempty,oneof=practice daily"`
}

// SubmitReviewRequest is the payload of POST /api/reviews/{problemID}/submit.
type SubmitReviewRequest struct {
	Correct     *bool `json:"correct"       validate:"required"`
	TimeSpentMs int64 `json:"time_spent_ms" validate:"gte=0"`
}

// DailyChallengeResponse is the body of GET /api/daily-challenge.
type DailyChallengeResponse struct {
	Date    string                 `json:"date"`
	Problem *domain.ProblemSummary `json:"problem"`
}

// DueReviewsResponse is the body of GET /api/reviews/due.
type DueReviewsResponse struct {
	Reviews []domain.DueReview `json:"reviews"`
	Count   int                `json:"count"`
}

// LeaderboardResponse is the body of GET /api/leaderboard.
type LeaderboardResponse struct {
	PeriodType string               `json:"period_type"`
	PeriodKey  string               `json:"period_key,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
	Entries    []domain.RankedEntry `json:"entries"`
}
