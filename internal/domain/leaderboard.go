package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardSnapshot is one user's row in one period's ranking, as produced
// by the latest aggregation cycle.
type LeaderboardSnapshot struct {
	UserID       uuid.UUID `json:"user_id"`
	PeriodType   string    `json:"period_type"`
	PeriodKey    string    `json:"period_key"`
	Score        int       `json:"score"`
	CorrectCount int       `json:"correct_count"`
	AttemptCount int       `json:"attempt_count"`
	AccuracyRate float64   `json:"accuracy_rate"`
	Rank         int       `json:"rank"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RankedEntry is a snapshot row joined with the user's public profile.
type RankedEntry struct {
	Rank         int         `json:"rank"`
	User         UserProfile `json:"user"`
	Score        int         `json:"score"`
	CorrectCount int         `json:"correct_count"`
	AttemptCount int         `json:"attempt_count"`
	AccuracyRate float64     `json:"accuracy_rate"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
