package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stage bounds of a review plan while it is still being scheduled.
const (
	MinReviewStage = 1
	MaxReviewStage = 6
)

// Review plan validation errors
var (
	ErrPlanUserIDEmpty    = errors.New("review plan user ID cannot be empty")
	ErrPlanProblemIDEmpty = errors.New("review plan problem ID cannot be empty")
	ErrPlanStageRange     = errors.New("review plan stage must be between 1 and 6")
)

// ReviewPlan is the spaced-repetition state of one (user, problem) pair.
// Stage runs 1..6; once a correct review would move past stage 6 the plan is
// completed and no longer scheduled.
type ReviewPlan struct {
	UserID         uuid.UUID  `json:"user_id"`
	ProblemID      uuid.UUID  `json:"problem_id"`
	Stage          int        `json:"stage"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	IsCompleted    bool       `json:"is_completed"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks that the plan has valid data.
func (p *ReviewPlan) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrPlanUserIDEmpty
	}
	if p.ProblemID == uuid.Nil {
		return ErrPlanProblemIDEmpty
	}
	if p.Stage < MinReviewStage || p.Stage > MaxReviewStage {
		return ErrPlanStageRange
	}
	return nil
}

// IsDue reports whether the plan should be reviewed at now.
func (p *ReviewPlan) IsDue(now time.Time) bool {
	return !p.IsCompleted && !p.NextReviewAt.After(now)
}

// DueReview is a due plan joined with the problem it schedules.
type DueReview struct {
	Plan    ReviewPlan     `json:"plan"`
	Problem ProblemSummary `json:"problem"`
}

// ReviewStats summarises a user's review plans.
type ReviewStats struct {
	Total     int         `json:"total"`
	Active    int         `json:"active"`
	Completed int         `json:"completed"`
	DueNow    int         `json:"due_now"`
	ByStage   map[int]int `json:"by_stage"`
}
