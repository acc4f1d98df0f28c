package ebbinghaus

import (
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// enrolledPlan returns the plan reset to the first stage.
//
// Enrollment always restarts the cycle, including for plans that already
// completed, so a problem answered wrong again after graduating is reopened.
func enrolledPlan(plan *domain.ReviewPlan, now time.Time, params *Params) *domain.ReviewPlan {
	next := *plan
	next.Stage = domain.MinReviewStage
	next.NextReviewAt = now.Add(params.IntervalForStage(domain.MinReviewStage))
	next.IsCompleted = false
	next.UpdatedAt = now
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	return &next
}

// advancedPlan applies one review outcome to a plan.
//
//   - correct: the stage advances; moving past MaxStage completes the plan and
//     leaves stage and next_review_at as they were
//   - incorrect: the stage resets to 1 whatever it was before
//
// last_reviewed_at is set to now in both branches.
func advancedPlan(plan *domain.ReviewPlan, correct bool, now time.Time, params *Params) *domain.ReviewPlan {
	next := *plan
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.UpdatedAt = now

	if !correct {
		next.Stage = domain.MinReviewStage
		next.NextReviewAt = now.Add(params.IntervalForStage(domain.MinReviewStage))
		next.IsCompleted = false
		return &next
	}

	stage := plan.Stage + 1
	if stage > params.MaxStage {
		next.IsCompleted = true
		return &next
	}

	next.Stage = stage
	next.NextReviewAt = now.Add(params.IntervalForStage(stage))
	return &next
}
